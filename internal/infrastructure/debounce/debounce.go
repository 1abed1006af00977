// Package debounce collapses bursts of input into the last value of each burst.
package debounce

import (
	"context"
	"time"
)

// DefaultDelay is how long input must stay quiet before it is emitted.
const DefaultDelay = 300 * time.Millisecond

// Debouncer emits the latest pushed value once no new value has arrived for
// the configured delay. Every Push restarts the wait.
type Debouncer struct {
	delay  time.Duration
	in     chan string
	out    chan string
	done   chan struct{}
	cancel context.CancelFunc
}

func New(ctx context.Context, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Debouncer{
		delay:  delay,
		in:     make(chan string),
		out:    make(chan string, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go d.run(ctx)
	return d
}

// Push records a new value. It is a no-op after Close.
func (d *Debouncer) Push(v string) {
	select {
	case d.in <- v:
	case <-d.done:
	}
}

// Out yields settled values. It is closed when the debouncer stops.
func (d *Debouncer) Out() <-chan string { return d.out }

// Close stops the debouncer and drops any value still waiting.
func (d *Debouncer) Close() {
	d.cancel()
	<-d.done
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.done)
	defer close(d.out)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case v := <-d.in:
			pending = v
			stop()
			timer = time.NewTimer(d.delay)
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case d.out <- pending:
			case <-ctx.Done():
				return
			}
		}
	}
}
