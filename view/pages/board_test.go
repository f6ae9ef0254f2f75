package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
)

func render(t *testing.T, data BoardData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Board(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestBoard_RendersRows(t *testing.T) {
	html := render(t, BoardData{
		Messages: []domain.Message{
			{Timestamp: "t1", From: "alice", Body: "hello"},
			{Timestamp: "t2", From: "bob", Body: "world"},
		},
		MaxRecordLen: 100,
	})

	if !strings.Contains(html, "<td>alice</td>") || !strings.Contains(html, "<td>world</td>") {
		t.Error("Expected message rows in output")
	}
	if strings.Index(html, "hello") > strings.Index(html, "world") {
		t.Error("Expected oldest message first")
	}
	if strings.Contains(html, `id="empty"`) {
		t.Error("Expected no empty placeholder when messages exist")
	}
	if !strings.Contains(html, `action="/message"`) {
		t.Error("Expected post form")
	}
}

func TestBoard_EscapesContent(t *testing.T) {
	html := render(t, BoardData{
		Messages: []domain.Message{{From: "<b>x</b>", Body: "<script>alert(1)</script>"}},
		Error:    "<i>bad</i>",
	})

	if strings.Contains(html, "<script>alert(1)</script>") || strings.Contains(html, "<b>x</b>") {
		t.Error("Expected message content to be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("Expected escaped script tag")
	}
	if strings.Contains(html, "<i>bad</i>") {
		t.Error("Expected error text to be escaped")
	}
}

func TestBoard_Empty(t *testing.T) {
	html := render(t, BoardData{})
	if !strings.Contains(html, "No messages yet.") {
		t.Error("Expected empty placeholder")
	}
}

func TestBoard_LiveFeedReplacesTableWithSnapshot(t *testing.T) {
	html := render(t, BoardData{})
	for _, want := range []string{`new WebSocket(`, `event.type === "history"`, `event.messages`} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected live feed script to contain %s", want)
		}
	}
}

func TestBoard_FieldLimits(t *testing.T) {
	html := render(t, BoardData{MaxRecordLen: 4094})
	if !strings.Contains(html, `maxlength="4094"`) {
		t.Error("Expected body maxlength from the history limit")
	}
	if !strings.Contains(html, `placeholder="anonymous"`) {
		t.Error("Expected default sender placeholder")
	}
}
