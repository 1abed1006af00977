package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/repository"
	"assetbazaar/internal/infrastructure/debounce"
	"assetbazaar/internal/infrastructure/realtime"
	"assetbazaar/internal/usecase"
	"assetbazaar/pkg/errors"
	"assetbazaar/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 64
)

// Chat is the part of the chat usecase a socket needs.
type Chat interface {
	LoadMessages(ctx context.Context, identity *entity.Identity, conversationID string) ([]*entity.Message, error)
	SendMessage(ctx context.Context, identity *entity.Identity, conversationID, content string) (*entity.Message, error)
	Subscribe(ctx context.Context, identity *entity.Identity, conversationID string) (repository.MessageStream, error)
}

// Client is one socket. It owns a debouncer, a search session and a
// conversation feed, all released when the socket closes.
type Client struct {
	Identity *entity.Identity
	Conn     *websocket.Conn
	Send     chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	debouncer *debounce.Debouncer
	search    *usecase.SearchSession
	feed      *realtime.Feed
	wg        sync.WaitGroup
}

// Manager tracks open sockets and builds their per-connection state.
type Manager struct {
	chat          Chat
	searcher      usecase.Searcher
	reporter      errors.Reporter
	debounceDelay time.Duration

	mutex   sync.RWMutex
	clients map[*Client]struct{}
}

func NewManager(chat Chat, searcher usecase.Searcher, reporter errors.Reporter, debounceDelay time.Duration) *Manager {
	return &Manager{
		chat:          chat,
		searcher:      searcher,
		reporter:      reporter,
		debounceDelay: debounceDelay,
		clients:       make(map[*Client]struct{}),
	}
}

// Serve runs the socket until the peer goes away or ctx ends. identity may
// be nil; search still works for signed-out visitors.
func (m *Manager) Serve(ctx context.Context, conn *websocket.Conn, identity *entity.Identity) {
	client := m.newClient(ctx, conn, identity)

	m.mutex.Lock()
	m.clients[client] = struct{}{}
	m.mutex.Unlock()
	logger.Debug("WebSocket: client connected (%d open)", m.Count())

	go client.WritePump()
	client.ReadPump(m)

	m.mutex.Lock()
	delete(m.clients, client)
	m.mutex.Unlock()
	client.close()
	logger.Debug("WebSocket: client disconnected (%d open)", m.Count())
}

func (m *Manager) newClient(ctx context.Context, conn *websocket.Conn, identity *entity.Identity) *Client {
	ctx, cancel := context.WithCancel(ctx)
	c := &Client{
		Identity: identity,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.debouncer = debounce.New(ctx, m.debounceDelay)
	c.search = usecase.NewSearchSession(ctx, m.searcher, m.reporter)
	c.feed = realtime.NewFeed(realtime.SubscriberFunc(func(ctx context.Context, conversationID string) (repository.MessageStream, error) {
		return m.chat.Subscribe(ctx, identity, conversationID)
	}), m.reporter)

	c.wg.Add(3)
	go func() {
		defer c.wg.Done()
		c.search.Run(c.debouncer.Out())
	}()
	go func() {
		defer c.wg.Done()
		for r := range c.search.Results() {
			c.push(MessageTypeSearchResults, "", r)
		}
	}()
	go func() {
		defer c.wg.Done()
		for msg := range c.feed.Updates() {
			c.push(MessageTypeMessage, msg.ConversationID, msg)
		}
	}()
	return c
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Shutdown asks every open socket to close.
func (m *Manager) Shutdown() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for c := range m.clients {
		c.cancel()
		c.Conn.Close()
	}
}

// ReadPump reads frames until the connection fails.
func (c *Client) ReadPump(m *Manager) {
	defer c.cancel()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket: read error: %v", err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump owns every write to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error: %v", err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// close tears the per-connection state down in dependency order: input
// first, then the producers, then the outbound queue.
func (c *Client) close() {
	c.cancel()
	c.debouncer.Close()
	c.search.Close()
	c.feed.Close()
	c.wg.Wait()
	close(c.Send)
	c.Conn.Close()
}
