package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
	"github.com/mmuslimabdulj/goat-board/internal/history"
)

// logPublisher appends straight to the log, standing in for the hub
type logPublisher struct {
	log       *history.Log
	published []domain.Message
	err       error
}

func (p *logPublisher) Publish(_ context.Context, msg domain.Message) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return p.log.AppendString(msg.Record())
}

func setupBoard(t *testing.T, capacity int) (*Board, *logPublisher) {
	t.Helper()
	log, err := history.NewLog(capacity)
	if err != nil {
		t.Fatalf("NewLog: %v", err)
	}
	pub := &logPublisher{log: log}
	board := NewBoard(log, pub, nil)
	board.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return board, pub
}

func TestBoard_Post(t *testing.T) {
	board, pub := setupBoard(t, 256)

	msg, err := board.Post(context.Background(), domain.Message{
		Timestamp: "10:00",
		From:      "  alice ",
		Body:      "hello\tworld\x00!",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	expected := domain.Message{Timestamp: "10:00", From: "alice", Body: "hello world !"}
	if msg != expected {
		t.Errorf("Expected %+v, got %+v", expected, msg)
	}
	if len(pub.published) != 1 || pub.published[0] != expected {
		t.Errorf("Expected sanitized message to be published, got %+v", pub.published)
	}

	messages, err := board.Messages()
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 1 || messages[0] != expected {
		t.Errorf("Expected history to round trip, got %+v", messages)
	}
}

func TestBoard_PostDefaults(t *testing.T) {
	board, _ := setupBoard(t, 256)

	msg, err := board.Post(context.Background(), domain.Message{Body: "hi"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if msg.From != domain.DefaultSender {
		t.Errorf("Expected default sender, got %q", msg.From)
	}
	if msg.Timestamp != "2024-05-06T07:08:09Z" {
		t.Errorf("Expected server timestamp, got %q", msg.Timestamp)
	}
}

func TestBoard_PostEmptyBody(t *testing.T) {
	board, pub := setupBoard(t, 256)

	for _, body := range []string{"", "   ", "\t\x00\n"} {
		if _, err := board.Post(context.Background(), domain.Message{Body: body}); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("Expected ErrEmptyBody for %q, got %v", body, err)
		}
	}
	if len(pub.published) != 0 {
		t.Errorf("Expected nothing published, got %d", len(pub.published))
	}
}

func TestBoard_PostTooLarge(t *testing.T) {
	board, pub := setupBoard(t, 32)

	// "ts\tme\t" is 6 bytes; 32-byte ring takes records up to 30 bytes.
	_, err := board.Post(context.Background(), domain.Message{Timestamp: "ts", From: "me", Body: strings.Repeat("x", 25)})
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("Expected ErrMessageTooLarge, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("Expected oversized message to be rejected before publishing")
	}

	if _, err := board.Post(context.Background(), domain.Message{Timestamp: "ts", From: "me", Body: strings.Repeat("x", 24)}); err != nil {
		t.Errorf("Expected largest fitting message to be accepted, got %v", err)
	}
}

func TestBoard_PostPublishError(t *testing.T) {
	board, pub := setupBoard(t, 256)
	pub.err = errors.New("hub down")

	_, err := board.Post(context.Background(), domain.Message{Body: "hi"})
	if !errors.Is(err, pub.err) {
		t.Errorf("Expected publish error to be wrapped, got %v", err)
	}
}

func TestBoard_MessagesSubstitutesInvalidText(t *testing.T) {
	board, pub := setupBoard(t, 256)
	if err := pub.log.AppendString("t1\ta\tgood"); err != nil {
		t.Fatal(err)
	}
	if err := pub.log.Append([]byte("t2\tb\tbad\xff")); err != nil {
		t.Fatal(err)
	}

	messages, err := board.Messages()
	if err != nil {
		t.Fatalf("Expected substitution instead of error, got %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[1].Body != "bad\uFFFD" {
		t.Errorf("Expected substituted body, got %q", messages[1].Body)
	}
}

func TestBoard_MessagesEmpty(t *testing.T) {
	board, _ := setupBoard(t, 64)

	messages, err := board.Messages()
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Expected no messages, got %v", messages)
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"Normal", "Alice", 50, "Alice"},
		{"Trim whitespace", "  Alice  ", 50, "Alice"},
		{"Control chars", "a\x00b\x1Fc\x7F", 0, "a b c"},
		{"Separator", "left\tright", 0, "left right"},
		{"Truncated", strings.Repeat("é", 60), 50, strings.Repeat("é", 50)},
		{"Invalid UTF-8", "ok\xff", 0, "ok\uFFFD"},
		{"Unlimited", strings.Repeat("a", 500), 0, strings.Repeat("a", 500)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeField(tc.input, tc.max); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
