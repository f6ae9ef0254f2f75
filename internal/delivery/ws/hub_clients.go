package ws

import (
	"context"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
)

// Register adds a client to the hub. It returns ErrHubClosed once the hub
// stopped, in which case the client was not added.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish appends msg to the history and broadcasts it to all clients.
// It returns the append error, if any, once the hub has processed it.
func (h *Hub) Publish(ctx context.Context, msg domain.Message) error {
	req := publishRequest{msg: msg, done: make(chan error, 1)}

	select {
	case h.publish <- req:
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Done is closed when Run returns
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
