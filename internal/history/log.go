package history

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Observer receives notifications about ring activity, typically to feed
// metrics. Implementations must be safe for concurrent use.
type Observer interface {
	RecordAppended(size int)
	RecordsEvicted(n int)
	AppendRejected(reason string)
}

// Option configures a Log.
type Option func(*Log)

// WithObserver attaches an observer to the log.
func WithObserver(o Observer) Option {
	return func(l *Log) {
		l.observer = o
	}
}

// WithLogger sets the logger used for eviction traces and rejected appends.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// Log is a Ring guarded by a reader/writer lock. Any number of readers
// may replay concurrently; an append excludes everyone else.
type Log struct {
	mu       sync.RWMutex
	ring     *Ring
	observer Observer
	logger   *zap.Logger
}

// NewLog creates a log backed by a ring of capacity bytes.
func NewLog(capacity int, opts ...Option) (*Log, error) {
	ring, err := NewRing(capacity)
	if err != nil {
		return nil, err
	}

	l := &Log{
		ring:   ring,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Cap returns the ring capacity in bytes.
func (l *Log) Cap() int {
	return l.ring.Cap()
}

// MaxRecordLen returns the longest record the log accepts.
func (l *Log) MaxRecordLen() int {
	return l.ring.MaxRecordLen()
}

// AppendString stores a record, evicting old ones if needed.
func (l *Log) AppendString(record string) error {
	l.mu.Lock()
	evicted, err := l.ring.AppendString(record)
	l.mu.Unlock()

	return l.report(len(record), evicted, err)
}

// Append stores a raw record, evicting old ones if needed.
func (l *Log) Append(record []byte) error {
	l.mu.Lock()
	evicted, err := l.ring.Append(record)
	l.mu.Unlock()

	return l.report(len(record), evicted, err)
}

func (l *Log) report(size, evicted int, err error) error {
	if err != nil {
		reason := "too_large"
		if errors.Is(err, ErrEmbeddedDelimiter) {
			reason = "delimiter"
		}
		l.logger.Warn("history: append rejected", zap.Int("size", size), zap.Error(err))
		if l.observer != nil {
			l.observer.AppendRejected(reason)
		}
		return err
	}

	if evicted > 0 {
		l.logger.Debug("history: records evicted", zap.Int("evicted", evicted), zap.Int("size", size))
	}
	if l.observer != nil {
		l.observer.RecordAppended(size)
		if evicted > 0 {
			l.observer.RecordsEvicted(evicted)
		}
	}
	return nil
}

// Replay returns the live records oldest to newest.
func (l *Log) Replay() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ring.Replay()
}

// Each calls fn for every live record while holding the read lock. fn must
// not call back into the log's write methods.
func (l *Log) Each(fn func(i int, record []byte) bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.ring.Each(fn)
}

// Count returns the number of live records.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ring.Count()
}

// Used returns the number of bytes occupied by live records.
func (l *Log) Used() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ring.Used()
}
