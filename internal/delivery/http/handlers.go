package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/goat-board/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-board/internal/domain"
	"github.com/mmuslimabdulj/goat-board/internal/history"
	"github.com/mmuslimabdulj/goat-board/internal/usecase"
	"github.com/mmuslimabdulj/goat-board/view/pages"
	"go.uber.org/zap"
)

// maxFormBytes bounds request bodies well above any record the history accepts
const maxFormBytes = 64 << 10

type Handler struct {
	board          *usecase.Board
	hub            *ws.Hub
	allowedOrigins []string
	logger         *zap.Logger
	upgrader       websocket.Upgrader
}

func NewHandler(board *usecase.Board, hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		board:          board,
		hub:            hub,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return h.isOriginAllowed(r.Header.Get("Origin"))
		},
	}
	return h
}

// isOriginAllowed checks if the origin is in the allowed list
func (h *Handler) isOriginAllowed(origin string) bool {
	// Empty origin is allowed (same-origin requests)
	if origin == "" {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	return false
}

// HandleIndex serves the board page
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.renderBoard(w, r, http.StatusOK, "")
}

// HandlePostMessage accepts the board form and redirects back to the page
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		h.renderBoard(w, r, status, "Invalid form")
		return
	}

	msg := domain.Message{
		Timestamp: r.PostForm.Get("timestamp"),
		From:      r.PostForm.Get("from"),
		Body:      r.PostForm.Get("body"),
	}
	if _, err := h.board.Post(r.Context(), msg); err != nil {
		status, text := h.postError(err)
		h.renderBoard(w, r, status, text)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMessagesAPI lists messages on GET and posts one on POST
func (h *Handler) HandleMessagesAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		messages, err := h.board.Messages()
		if err != nil {
			h.logger.Error("http: read history", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, messages)

	case http.MethodPost:
		var req domain.Message
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
			return
		}

		msg, err := h.board.Post(r.Context(), req)
		if err != nil {
			status, text := h.postError(err)
			writeJSON(w, status, map[string]string{"error": text})
			return
		}
		writeJSON(w, http.StatusCreated, msg)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleWebSocket upgrades HTTP to the live feed
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Debug("http: websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn)
	if err := h.hub.Register(client); err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "board is shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *Handler) renderBoard(w http.ResponseWriter, r *http.Request, status int, errText string) {
	messages, err := h.board.Messages()
	if err != nil {
		h.logger.Error("http: read history", zap.Error(err))
		http.Error(w, "History unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	component := pages.Board(pages.BoardData{
		Messages:     messages,
		MaxRecordLen: h.board.MaxRecordLen(),
		Error:        errText,
	})
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Debug("http: render board", zap.Error(err))
	}
}

// postError maps a Board.Post failure to a status and a user facing text
func (h *Handler) postError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrEmptyBody):
		return http.StatusBadRequest, "Message body is required"
	case errors.Is(err, usecase.ErrMessageTooLarge), errors.Is(err, history.ErrRecordTooLarge):
		return http.StatusRequestEntityTooLarge, "Message is too large"
	default:
		h.logger.Warn("http: publish failed", zap.Error(err))
		return http.StatusServiceUnavailable, "Board is unavailable, try again"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
