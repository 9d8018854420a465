// Package server exposes the assistant over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cherwin23/HR-Assistant/pkg/assistant"
)

// Options configures the HTTP server
type Options struct {
	Host string
	Port int
}

// Server is the assistant HTTP server
type Server struct {
	options        Options
	server         *http.Server
	assistant      *assistant.Assistant
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates the HTTP server
func NewServer(options Options, asst *assistant.Assistant, logger zerolog.Logger) (*Server, error) {
	if asst == nil {
		return nil, fmt.Errorf("assistant is required")
	}
	if options.Port == 0 {
		options.Port = 8000
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}

	return &Server{
		options:   options,
		assistant: asst,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Start starts serving. It blocks until Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/clear-all", s.handleClearAll)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: mux,
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the server, waiting for in-flight requests
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down HTTP server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// begin rejects requests during shutdown and tracks in-flight work.
// Callers must defer s.inFlightReqs.Done() when it returns true.
func (s *Server) begin(w http.ResponseWriter) bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()

	if s.isShuttingDown {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return false
	}

	s.inFlightReqs.Add(1)
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.begin(w) {
		return
	}
	defer s.inFlightReqs.Done()

	var req assistant.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp, err := s.assistant.Ask(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Ask failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing question: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.begin(w) {
		return
	}
	defer s.inFlightReqs.Done()

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := s.assistant.Reset(r.Context(), req.SessionID); err != nil {
		s.logger.Error().Err(err).Str("session", req.SessionID).Msg("Reset failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error resetting session: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s reset successfully", req.SessionID),
	})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.begin(w) {
		return
	}
	defer s.inFlightReqs.Done()

	if err := s.assistant.ClearAll(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Clear all failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error clearing sessions: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "All sessions cleared successfully",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
