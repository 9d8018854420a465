// Package prompt loads prompt texts from a directory, falling back to
// compiled-in defaults, and hot-reloads edited files so prompt tuning does
// not require a restart.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Store serves prompt texts by name
type Store struct {
	dir     string
	logger  zerolog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.RWMutex
	prompts map[string]string
}

// NewStore creates a store reading <name>.txt files from dir. A missing or
// empty dir is fine: defaults serve every prompt. When dir exists, file
// changes are picked up automatically.
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		dir:     dir,
		logger:  logger,
		prompts: make(map[string]string),
		done:    make(chan struct{}),
	}

	if dir == "" {
		return s, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return s, nil
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch prompts directory: %w", err)
	}

	s.watcher = watcher
	go s.watch()

	return s, nil
}

// Get returns the prompt text for a name, preferring a loaded file over the
// compiled-in default
func (s *Store) Get(name string) string {
	s.mu.RLock()
	text, ok := s.prompts[name]
	s.mu.RUnlock()

	if ok {
		return text
	}
	return Default(name)
}

// Close stops the file watcher
func (s *Store) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read prompts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		s.loadFile(filepath.Join(s.dir, entry.Name()))
	}

	return nil
}

func (s *Store) loadFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn().Str("path", path).Err(err).Msg("Failed to read prompt file")
		return
	}

	name := strings.TrimSuffix(filepath.Base(path), ".txt")

	s.mu.Lock()
	s.prompts[name] = string(data)
	s.mu.Unlock()

	s.logger.Debug().Str("prompt", name).Msg("Prompt loaded")
}

func (s *Store) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && strings.HasSuffix(event.Name, ".txt") {
				s.loadFile(event.Name)
				s.logger.Info().Str("path", event.Name).Msg("Prompt reloaded")
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("Prompt watcher error")
		}
	}
}
