package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmuslimabdulj/goat-board/internal/domain"
	"github.com/mmuslimabdulj/goat-board/internal/history"
	"go.uber.org/zap"
)

var (
	// ErrEmptyBody is returned when a message has nothing to say
	ErrEmptyBody = errors.New("message body is empty")

	// ErrMessageTooLarge is returned when the encoded message cannot fit in the history
	ErrMessageTooLarge = errors.New("message too large for history")
)

// controlCharRegex matches bytes that would break record framing: the
// delimiter, the field separator and other control characters
var controlCharRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// Publisher appends a message to the history and announces it
type Publisher interface {
	Publish(ctx context.Context, msg domain.Message) error
}

// Board validates posted messages and reads back the history
type Board struct {
	log       *history.Log
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBoard creates a Board reading from log and posting through publisher
func NewBoard(log *history.Log, publisher Publisher, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		log:       log,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Post cleans msg, fills in defaults and publishes it. The stored message
// is returned.
func (b *Board) Post(ctx context.Context, msg domain.Message) (domain.Message, error) {
	msg.Body = sanitizeField(msg.Body, 0)
	if msg.Body == "" {
		return domain.Message{}, ErrEmptyBody
	}

	msg.From = sanitizeField(msg.From, domain.MaxSenderRunes)
	if msg.From == "" {
		msg.From = domain.DefaultSender
	}

	msg.Timestamp = sanitizeField(msg.Timestamp, domain.MaxTimestampRunes)
	if msg.Timestamp == "" {
		msg.Timestamp = b.now().UTC().Format(domain.TimestampLayout)
	}

	if size := len(msg.Record()); size > b.log.MaxRecordLen() {
		return domain.Message{}, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, size, b.log.MaxRecordLen())
	}

	if err := b.publisher.Publish(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("publish message: %w", err)
	}
	return msg, nil
}

// Messages returns the history oldest first. Records holding invalid text
// are kept with the bad bytes replaced.
func (b *Board) Messages() ([]domain.Message, error) {
	records, err := b.log.Replay()
	if err == nil {
		messages := make([]domain.Message, 0, len(records))
		for _, rec := range records {
			messages = append(messages, domain.ParseRecord(rec))
		}
		return messages, nil
	}

	var decodeErr *history.DecodeError
	if !errors.As(err, &decodeErr) {
		return nil, err
	}
	b.logger.Warn("history holds invalid text, substituting", zap.Int("index", decodeErr.Index))

	var messages []domain.Message
	b.log.Each(func(_ int, record []byte) bool {
		text := string(bytes.ToValidUTF8(record, []byte("\uFFFD")))
		messages = append(messages, domain.ParseRecord(text))
		return true
	})
	return messages, nil
}

// MaxRecordLen exposes the history limit for clients
func (b *Board) MaxRecordLen() int {
	return b.log.MaxRecordLen()
}

// sanitizeField trims input, removes control characters and limits it to
// maxRunes (0 means unlimited)
func sanitizeField(s string, maxRunes int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = controlCharRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if maxRunes > 0 && utf8.RuneCountInString(s) > maxRunes {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return s
}
