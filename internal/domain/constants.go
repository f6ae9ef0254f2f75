package domain

import "time"

// ==== History Constants ====

// DefaultHistoryCapacity is the default size of the message ring in bytes
const DefaultHistoryCapacity = 4096

// ==== Message Constants ====

const (
	// DefaultSender is used when a message is posted without a name
	DefaultSender = "anonymous"

	// TimestampLayout formats server-assigned timestamps
	TimestampLayout = time.RFC3339

	// MaxSenderRunes limits the sender field
	MaxSenderRunes = 50

	// MaxTimestampRunes limits the client-supplied timestamp field
	MaxTimestampRunes = 40
)

// ==== Rate Limit Constants ====

const (
	// DefaultRateLimitPost is the default rate limit for posting messages (requests/sec)
	DefaultRateLimitPost = 2

	// DefaultRateLimitPostBurst is the burst allowed for posting
	DefaultRateLimitPostBurst = 5

	// DefaultRateLimitWS is the default rate limit for WebSocket connections (req/sec)
	DefaultRateLimitWS = 5

	// DefaultRateLimitWSBurst is the burst allowed for WebSocket connections
	DefaultRateLimitWSBurst = 10
)

// ==== Timing Constants ====

const (
	// ShutdownGracePeriod bounds graceful HTTP shutdown
	ShutdownGracePeriod = 30 * time.Second
)
