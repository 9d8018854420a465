package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherwin23/HR-Assistant/pkg/agent"
	"github.com/Cherwin23/HR-Assistant/pkg/assistant"
	"github.com/Cherwin23/HR-Assistant/pkg/intent"
	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
	"github.com/Cherwin23/HR-Assistant/pkg/session"
	"github.com/Cherwin23/HR-Assistant/pkg/tool"
)

// fixedProvider classifies everything as conversational
type fixedProvider struct{}

func (fixedProvider) Complete(ctx context.Context, request llm.Request) (*llm.Response, error) {
	last := request.Messages[len(request.Messages)-1]
	if strings.HasPrefix(last.Content, "Classify this user input:") {
		return &llm.Response{Content: `{"intent": "greeting", "category": "conversational", "confidence": 0.95, "answer": "Hello!"}`}, nil
	}
	return &llm.Response{Content: "unused"}, nil
}

func (fixedProvider) Name() string { return "fixed" }

func setupServer(t *testing.T) *Server {
	t.Helper()

	provider := fixedProvider{}

	prompts, err := prompt.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { prompts.Close() })

	registry := tool.NewRegistry(zerolog.Nop())
	pool := tool.NewWorkerPool(1)
	t.Cleanup(pool.Close)
	dispatcher, err := tool.NewDispatcher(registry, pool, zerolog.Nop())
	require.NoError(t, err)

	engine, err := agent.New(provider, registry, dispatcher, agent.Config{
		Model:    "test-model",
		MaxTurns: 3,
	}, zerolog.Nop())
	require.NoError(t, err)

	router, err := intent.NewRouter(provider, prompts, intent.Config{
		Model: "test-model",
	}, zerolog.Nop())
	require.NoError(t, err)

	sessions := session.NewMemoryStore()
	t.Cleanup(func() { sessions.Close() })

	summarizer := assistant.NewSummarizer(provider, prompts, "test-model", 100, 0.3, zerolog.Nop())

	asst, err := assistant.New(router, engine, sessions, summarizer, nil, assistant.Config{}, zerolog.Nop())
	require.NoError(t, err)

	srv, err := NewServer(Options{Host: "127.0.0.1", Port: 0}, asst, zerolog.Nop())
	require.NoError(t, err)

	return srv
}

func TestHandleHealth(t *testing.T) {
	srv := setupServer(t)

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handleHealth(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleAsk(t *testing.T) {
	srv := setupServer(t)

	t.Run("valid question", func(t *testing.T) {
		body := bytes.NewBufferString(`{"question": "hello", "session_id": "s1"}`)
		rec := httptest.NewRecorder()
		srv.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", body))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp assistant.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "conversational", resp.Category)
		require.NotNil(t, resp.Answer)
		assert.Equal(t, "Hello!", *resp.Answer)
		assert.Equal(t, "s1", resp.SessionID)
	})

	t.Run("missing question", func(t *testing.T) {
		body := bytes.NewBufferString(`{"session_id": "s1"}`)
		rec := httptest.NewRecorder()
		srv.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		body := bytes.NewBufferString(`{broken`)
		rec := httptest.NewRecorder()
		srv.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handleAsk(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleReset(t *testing.T) {
	srv := setupServer(t)

	t.Run("valid", func(t *testing.T) {
		body := bytes.NewBufferString(`{"session_id": "s1"}`)
		rec := httptest.NewRecorder()
		srv.handleReset(rec, httptest.NewRequest(http.MethodPost, "/reset", body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "reset successfully")
	})

	t.Run("missing session id", func(t *testing.T) {
		body := bytes.NewBufferString(`{}`)
		rec := httptest.NewRecorder()
		srv.handleReset(rec, httptest.NewRequest(http.MethodPost, "/reset", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleClearAll(t *testing.T) {
	srv := setupServer(t)

	rec := httptest.NewRecorder()
	srv.handleClearAll(rec, httptest.NewRequest(http.MethodPost, "/clear-all", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cleared successfully")
}

func TestRejectsRequestsDuringShutdown(t *testing.T) {
	srv := setupServer(t)
	srv.shutdownMu.Lock()
	srv.isShuttingDown = true
	srv.shutdownMu.Unlock()

	body := bytes.NewBufferString(`{"question": "hello"}`)
	rec := httptest.NewRecorder()
	srv.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", body))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
