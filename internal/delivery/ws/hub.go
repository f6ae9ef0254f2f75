package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
	"github.com/mmuslimabdulj/goat-board/internal/history"
	"go.uber.org/zap"
)

// ErrHubClosed is returned by Publish once the hub has stopped.
var ErrHubClosed = errors.New("ws: hub closed")

// Event types sent to live feed clients
const (
	EventHistory = "history"
	EventMessage = "message"
)

// Event is the JSON frame pushed to clients. A history event carries the
// whole snapshot in Messages, a message event carries one Message.
type Event struct {
	Type     string           `json:"type"`
	Message  *domain.Message  `json:"message,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
}

// ClientObserver is notified when live feed clients come and go
type ClientObserver interface {
	ClientConnected()
	ClientDisconnected()
}

type publishRequest struct {
	msg  domain.Message
	done chan error
}

// Hub is the only writer of the message history. It appends published
// messages to the log and fans them out to connected clients, so history
// snapshots and live messages are ordered on a single goroutine.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	log      *history.Log
	logger   *zap.Logger
	observer ClientObserver

	publish    chan publishRequest
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new Hub writing to log
func NewHub(log *history.Log, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		log:        log,
		logger:     logger,
		publish:    make(chan publishRequest),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetObserver sets the client observer, typically metrics
func (h *Hub) SetObserver(o ClientObserver) {
	h.observer = o
}

// Run starts the hub's main event loop. It returns when ctx is done,
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
				h.disconnected()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			if h.observer != nil {
				h.observer.ClientConnected()
			}

			// Send message history to new client FIRST
			h.sendHistory(client)
			h.logger.Debug("ws: client registered", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			// Check if client exists - prevent double unregister
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				h.disconnected()
			}
			h.mu.Unlock()

		case req := <-h.publish:
			if err := h.log.AppendString(req.msg.Record()); err != nil {
				req.done <- err
				continue
			}
			data, err := json.Marshal(Event{Type: EventMessage, Message: &req.msg})
			if err == nil {
				h.fanOut(data)
			}
			req.done <- nil
		}
	}
}

// sendHistory queues the current history for a freshly registered client
// as a single event. Stored bytes that are not valid UTF-8 are substituted.
// A client that cannot take the snapshot is dropped rather than served a
// partial history.
func (h *Hub) sendHistory(client *Client) {
	var messages []domain.Message
	h.log.Each(func(_ int, record []byte) bool {
		messages = append(messages, domain.ParseRecord(string(bytes.ToValidUTF8(record, []byte("\uFFFD")))))
		return true
	})
	if len(messages) == 0 {
		return
	}

	data, err := json.Marshal(Event{Type: EventHistory, Messages: messages})
	if err == nil && client.Send(data) {
		return
	}

	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
		h.disconnected()
	}
	h.mu.Unlock()
	h.logger.Warn("ws: dropped client, history snapshot not delivered",
		zap.String("client_id", client.ID), zap.Int("records", len(messages)), zap.Error(err))
}

// fanOut sends data to every client. Clients whose buffer is full are
// dropped.
func (h *Hub) fanOut(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, id)
			h.disconnected()
			h.logger.Info("ws: dropped slow client", zap.String("client_id", id))
		}
	}
}

// disconnected must be called with h.mu held.
func (h *Hub) disconnected() {
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
}
