package usecase

import (
	"context"
	"strings"
	"sync"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/pkg/errors"
)

type Searcher interface {
	Search(ctx context.Context, term string) ([]*entity.DigitalAsset, error)
}

type SearchResult struct {
	Seq    uint64                 `json:"seq"`
	Query  string                 `json:"query"`
	Assets []*entity.DigitalAsset `json:"assets"`
}

// SearchSession runs searches for one client. Each submitted query gets the
// next sequence number and only the result of the latest query is delivered;
// slower responses to earlier queries are dropped.
type SearchSession struct {
	ctx      context.Context
	searcher Searcher
	reporter errors.Reporter
	results  chan SearchResult

	mu     sync.Mutex
	latest uint64
	closed bool
	wg     sync.WaitGroup

	deliverMu sync.Mutex
}

func NewSearchSession(ctx context.Context, searcher Searcher, reporter errors.Reporter) *SearchSession {
	return &SearchSession{
		ctx:      ctx,
		searcher: searcher,
		reporter: reporter,
		results:  make(chan SearchResult, 1),
	}
}

func (s *SearchSession) Results() <-chan SearchResult { return s.results }

// Run submits every value received on in until it is closed or the session
// context ends.
func (s *SearchSession) Run(in <-chan string) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case term, ok := <-in:
			if !ok {
				return
			}
			s.Submit(term)
		}
	}
}

// Submit starts a search and returns its sequence number. Blank queries
// resolve to an empty result at once without touching the backend.
func (s *SearchSession) Submit(term string) uint64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.latest++
	seq := s.latest
	s.wg.Add(1)
	s.mu.Unlock()

	if strings.TrimSpace(term) == "" {
		defer s.wg.Done()
		s.deliver(SearchResult{Seq: seq, Query: term, Assets: []*entity.DigitalAsset{}})
		return seq
	}

	go func() {
		defer s.wg.Done()
		assets, err := s.searcher.Search(s.ctx, term)
		if err != nil {
			s.reporter.Report("search", err)
			return
		}
		s.deliver(SearchResult{Seq: seq, Query: term, Assets: assets})
	}()
	return seq
}

func (s *SearchSession) isLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.latest
}

func (s *SearchSession) deliver(r SearchResult) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if !s.isLatest(r.Seq) || s.ctx.Err() != nil {
		return
	}
	// Replace an undelivered older result instead of queueing behind it.
	select {
	case s.results <- r:
		return
	default:
	}
	select {
	case old := <-s.results:
		if old.Seq > r.Seq {
			r = old
		}
	default:
	}
	s.results <- r
}

// Close waits for in-flight searches and closes Results.
func (s *SearchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.results)
}
