package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Each session has its own lock, so
// concurrent requests for the same session serialize while requests for
// different sessions proceed independently.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

type memorySession struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
	}
}

// session returns the per-key session, creating it lazily
func (s *MemoryStore) session(sessionKey string) *memorySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[sessionKey]
	if !exists {
		sess = &memorySession{}
		s.sessions[sessionKey] = sess
	}
	return sess
}

// History returns a copy of the session's ordered messages
func (s *MemoryStore) History(ctx context.Context, sessionKey string) ([]Message, error) {
	if sessionKey == "" {
		return []Message{}, nil
	}

	s.mu.RLock()
	sess, exists := s.sessions[sessionKey]
	s.mu.RUnlock()

	if !exists {
		return []Message{}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// Append adds messages to a session, stamping missing timestamps
func (s *MemoryStore) Append(ctx context.Context, sessionKey string, messages ...Message) error {
	if sessionKey == "" || len(messages) == 0 {
		return nil
	}

	sess := s.session(sessionKey)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, msg := range messages {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		sess.messages = append(sess.messages, msg)
	}
	return nil
}

// Clear removes a single session
func (s *MemoryStore) Clear(ctx context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey)
	return nil
}

// ClearAll wipes every session
func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*memorySession)
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
