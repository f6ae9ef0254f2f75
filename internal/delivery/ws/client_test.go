package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/goat-board/internal/domain"
)

// === CLIENT TESTS ===

func TestNewClient(t *testing.T) {
	hub := NewHub(nil, nil)

	client := NewClient(hub, nil)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.ID == "" {
		t.Error("Expected client ID to be generated")
	}
	if other := NewClient(hub, nil); other.ID == client.ID {
		t.Error("Expected unique client IDs")
	}
	if client.hub != hub {
		t.Error("Expected client.hub to be the same as input hub")
	}
	if cap(client.send) != sendBufferSize {
		t.Errorf("Expected send buffer %d, got %d", sendBufferSize, cap(client.send))
	}
}

func TestClient_Send(t *testing.T) {
	client := NewClient(NewHub(nil, nil), nil)

	if !client.Send([]byte("test message")) {
		t.Fatal("Expected send to succeed")
	}

	select {
	case received := <-client.send:
		if string(received) != "test message" {
			t.Errorf("Expected 'test message', got %s", string(received))
		}
	default:
		t.Error("Expected message to be in send channel")
	}
}

func TestClient_SendBufferFull(t *testing.T) {
	client := newMockClient(NewHub(nil, nil), 2)

	client.Send([]byte("msg1"))
	client.Send([]byte("msg2"))

	// This should not block (buffer full handling)
	if client.Send([]byte("msg3")) {
		t.Error("Expected third send to report a drop")
	}

	<-client.send
	<-client.send

	select {
	case <-client.send:
		t.Error("Expected no more messages (third should be dropped)")
	default:
	}
}

// === LIVE FEED OVER A REAL CONNECTION ===

func serveFeed(t *testing.T, hub *Hub) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		if err := hub.Register(client); err != nil {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// readEvents reads frames until n events arrived; queued events share a
// frame separated by newlines.
func readEvents(t *testing.T, conn *websocket.Conn, n int) []Event {
	t.Helper()
	var events []Event
	for len(events) < n {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var ev Event
			if err := json.Unmarshal(line, &ev); err != nil {
				t.Fatalf("invalid frame %q: %v", line, err)
			}
			events = append(events, ev)
		}
	}
	return events
}

func TestClient_LiveFeed(t *testing.T) {
	hub, _ := newTestHub(t, 256)
	ctx := context.Background()
	if err := hub.Publish(ctx, domain.Message{From: "alice", Body: "before"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(serveFeed(t, hub), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	history := readEvents(t, conn, 1)
	if history[0].Type != EventHistory || len(history[0].Messages) != 1 || history[0].Messages[0].Body != "before" {
		t.Fatalf("Expected history event, got %+v", history[0])
	}

	if err := hub.Publish(ctx, domain.Message{From: "bob", Body: "after"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	live := readEvents(t, conn, 1)
	if live[0].Type != EventMessage || live[0].Message == nil || live[0].Message.From != "bob" {
		t.Errorf("Expected live event from bob, got %+v", live[0])
	}
}

func TestClient_WritePumpStopsOnBrokenConnection(t *testing.T) {
	hub := NewHub(nil, nil)
	accepted := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer peer.Close()

	conn := <-accepted
	conn.Close()

	client := NewClient(hub, conn)
	client.Send([]byte("lost"))

	done := make(chan struct{})
	go func() {
		client.WritePump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected WritePump to return after a failed write")
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub, _ := newTestHub(t, 256)

	conn, _, err := websocket.DefaultDialer.Dial(serveFeed(t, hub), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}
