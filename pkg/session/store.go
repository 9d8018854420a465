// Package session holds per-conversation ordered message history keyed by
// an opaque session identifier.
package session

import (
	"context"
	"time"
)

// Message represents a single conversation turn. Messages are append-only
// and never mutated once stored.
type Message struct {
	Role      string                 `json:"role"` // user, assistant, tool
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Store is the session persistence contract. Sessions are created lazily
// on first append; they never expire automatically. Implementations must
// serialize operations per session key while keeping different sessions
// independent.
type Store interface {
	// History returns the ordered messages for a session. An unknown
	// session yields an empty slice, not an error.
	History(ctx context.Context, sessionKey string) ([]Message, error)

	// Append adds messages to the end of a session's history, creating
	// the session if needed.
	Append(ctx context.Context, sessionKey string, messages ...Message) error

	// Clear removes a single session's history.
	Clear(ctx context.Context, sessionKey string) error

	// ClearAll wipes every session.
	ClearAll(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
