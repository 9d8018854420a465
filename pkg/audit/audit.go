// Package audit stores per-session interaction trails. Recording is
// fire-and-forget: a bounded queue feeds a single writer goroutine, and a
// failed or dropped record never fails the request that produced it.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interaction is one audited question/answer exchange
type Interaction struct {
	ID             string                 `json:"id"`
	Timestamp      time.Time              `json:"timestamp"`
	Question       string                 `json:"question"`
	Intent         map[string]interface{} `json:"intent"`
	FullResponse   string                 `json:"full_response"`
	Summary        string                 `json:"summary"`
	SummaryLength  int                    `json:"summary_length"`
	ToolsUsed      []string               `json:"tools_used"`
	ResponseTimeMs float64                `json:"response_time_ms,omitempty"`
}

// sessionTrail is the on-disk document, one per session
type sessionTrail struct {
	SessionID    string        `json:"session_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Interactions []Interaction `json:"interactions"`
}

// Sink persists interaction records
type Sink interface {
	// Append stores one interaction and returns a locator for the stored
	// record (a file path for the file sink)
	Append(ctx context.Context, sessionID string, interaction Interaction) (string, error)
}

// FileSink stores one JSON document per session under a directory
type FileSink struct {
	dir string
}

// NewFileSink creates the audit directory if needed
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("audit directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Append reads the session document, appends the interaction and writes the
// whole document back. The writer goroutine is the only caller, so the
// read-modify-write needs no locking.
func (s *FileSink) Append(ctx context.Context, sessionID string, interaction Interaction) (string, error) {
	path := filepath.Join(s.dir, sessionID+".json")

	trail := sessionTrail{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &trail); err != nil {
			return "", fmt.Errorf("corrupted audit file %s: %w", path, err)
		}
	}

	trail.Interactions = append(trail.Interactions, interaction)

	data, err := json.MarshalIndent(trail, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit trail: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write audit trail: %w", err)
	}

	return path, nil
}

// Trail returns the stored document for a session, or nil if none exists
func (s *FileSink) Trail(sessionID string) (*sessionTrail, error) {
	path := filepath.Join(s.dir, sessionID+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var trail sessionTrail
	if err := json.Unmarshal(data, &trail); err != nil {
		return nil, fmt.Errorf("corrupted audit file %s: %w", path, err)
	}
	return &trail, nil
}

// queued pairs a record with its destination session
type queued struct {
	sessionID   string
	interaction Interaction
}

// Recorder accepts records from request handlers and writes them in the
// background
type Recorder struct {
	sink   Sink
	queue  chan queued
	done   chan struct{}
	logger zerolog.Logger
}

// NewRecorder starts the writer goroutine. A nil sink produces a disabled
// recorder whose Record is a silent no-op.
func NewRecorder(sink Sink, queueSize int, logger zerolog.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}

	r := &Recorder{
		sink:   sink,
		queue:  make(chan queued, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}

	if sink == nil {
		close(r.done)
		return r
	}

	go r.run()
	return r
}

// Record enqueues an interaction. It never blocks: when the queue is full
// the record is dropped and counted in the log.
func (r *Recorder) Record(sessionID, question string, intent map[string]interface{}, fullResponse, summary string, summaryLength int, toolsUsed []string, responseTime time.Duration) {
	if r == nil || r.sink == nil || sessionID == "" {
		return
	}

	interaction := Interaction{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Question:       question,
		Intent:         intent,
		FullResponse:   fullResponse,
		Summary:        summary,
		SummaryLength:  summaryLength,
		ToolsUsed:      toolsUsed,
		ResponseTimeMs: float64(responseTime.Microseconds()) / 1000.0,
	}
	if interaction.ToolsUsed == nil {
		interaction.ToolsUsed = []string{}
	}

	select {
	case r.queue <- queued{sessionID: sessionID, interaction: interaction}:
	default:
		r.logger.Warn().Str("session", sessionID).Msg("Audit queue full, record dropped")
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for item := range r.queue {
		path, err := r.sink.Append(context.Background(), item.sessionID, item.interaction)
		if err != nil {
			r.logger.Error().Err(err).Str("session", item.sessionID).Msg("Failed to store audit record")
			continue
		}
		r.logger.Debug().Str("session", item.sessionID).Str("path", path).Msg("Audit record stored")
	}
}

// Close drains the queue and stops the writer
func (r *Recorder) Close() {
	if r == nil || r.sink == nil {
		return
	}
	close(r.queue)
	<-r.done
}
