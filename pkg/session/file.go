package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileStore persists each session as a JSONL file under a directory, one
// message per line. It survives restarts; the memory backend does not.
type FileStore struct {
	dir    string
	logger zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewFileStore creates a JSONL-backed store rooted at dir
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("sessions directory is required")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	logger.Info().Str("dir", dir).Msg("File session store initialized")

	return &FileStore{
		dir:    dir,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// validateSessionKey rejects keys that could escape the sessions directory
func validateSessionKey(sessionKey string) error {
	if sessionKey == "" {
		return fmt.Errorf("session key cannot be empty")
	}
	if strings.Contains(sessionKey, "..") {
		return fmt.Errorf("session key cannot contain '..'")
	}
	if strings.ContainsAny(sessionKey, "/\\") {
		return fmt.Errorf("session key cannot contain path separators")
	}
	if strings.Contains(sessionKey, "\x00") {
		return fmt.Errorf("session key cannot contain null bytes")
	}
	return nil
}

func (s *FileStore) path(sessionKey string) string {
	return filepath.Join(s.dir, sessionKey+".jsonl")
}

// lock gets or creates the per-session write lock
func (s *FileStore) lock(sessionKey string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if l, exists := s.locks[sessionKey]; exists {
		return l
	}

	l := &sync.Mutex{}
	s.locks[sessionKey] = l
	return l
}

// History reads the ordered messages for a session
func (s *FileStore) History(ctx context.Context, sessionKey string) ([]Message, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}

	l := s.lock(sessionKey)
	l.Lock()
	defer l.Unlock()

	file, err := os.Open(s.path(sessionKey))
	if err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	messages := []Message{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			// Skip corrupted lines rather than losing the whole session
			s.logger.Warn().Str("session_key", sessionKey).Err(err).Msg("Skipping corrupted session line")
			continue
		}
		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	return messages, nil
}

// Append writes messages to the end of the session file
func (s *FileStore) Append(ctx context.Context, sessionKey string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}

	l := s.lock(sessionKey)
	l.Lock()
	defer l.Unlock()

	file, err := os.OpenFile(s.path(sessionKey), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	for _, msg := range messages {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	return nil
}

// Clear removes a single session's file
func (s *FileStore) Clear(ctx context.Context, sessionKey string) error {
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}

	l := s.lock(sessionKey)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(s.path(sessionKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ClearAll removes every session file in the directory
func (s *FileStore) ClearAll(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read sessions directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove session file %s: %w", entry.Name(), err)
		}
	}

	// Lock entries survive a wipe: resetting the map while a caller holds
	// a previously fetched mutex would hand out a second lock for the
	// same key.
	return nil
}

// Close is a no-op; files are opened per operation
func (s *FileStore) Close() error {
	return nil
}
