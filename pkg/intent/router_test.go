package intent

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
)

// replyProvider returns a fixed reply or error for every call
type replyProvider struct {
	content  string
	err      error
	requests []llm.Request
}

func (p *replyProvider) Complete(ctx context.Context, request llm.Request) (*llm.Response, error) {
	p.requests = append(p.requests, request)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.content}, nil
}

func (p *replyProvider) Name() string { return "reply" }

func setupRouter(t *testing.T, provider llm.Provider, window int) *Router {
	t.Helper()

	prompts, err := prompt.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { prompts.Close() })

	router, err := NewRouter(provider, prompts, Config{
		Model:         "test-model",
		HistoryWindow: window,
	}, zerolog.Nop())
	require.NoError(t, err)

	return router
}

func TestClassifyQuery(t *testing.T) {
	provider := &replyProvider{content: `{
		"intent": "leave_balance",
		"category": "query",
		"module": "M1",
		"use_case": "check_leave",
		"answer": null,
		"confidence": 0.92,
		"requires_context": [],
		"entities": {"leave_type": "annual", "name": "John"}
	}`}
	router := setupRouter(t, provider, 6)

	result := router.Classify(context.Background(), "How much annual leave does John have left?", nil)

	assert.Equal(t, "leave_balance", result.Intent)
	assert.Equal(t, CategoryQuery, result.Category)
	require.NotNil(t, result.Module)
	assert.Equal(t, "M1", *result.Module)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Nil(t, result.Answer)

	// Entity template is always complete: provided slots filled, rest null
	assert.Equal(t, "annual", result.Entities["leave_type"])
	assert.Equal(t, "John", result.Entities["name"])
	assert.Contains(t, result.Entities, "employee_id")
	assert.Nil(t, result.Entities["employee_id"])
	assert.Len(t, result.Entities, 10)
}

func TestClassifyFencedJSON(t *testing.T) {
	provider := &replyProvider{content: "```json\n{\"intent\": \"greeting\", \"category\": \"conversational\", \"answer\": \"Hi!\", \"confidence\": 0.95}\n```"}
	router := setupRouter(t, provider, 6)

	result := router.Classify(context.Background(), "hello", nil)

	assert.Equal(t, CategoryConversational, result.Category)
	require.NotNil(t, result.Answer)
	assert.Equal(t, "Hi!", *result.Answer)
}

func TestClassifyGarbageReply(t *testing.T) {
	provider := &replyProvider{content: "I am not JSON at all"}
	router := setupRouter(t, provider, 6)

	result := router.Classify(context.Background(), "anything", nil)

	assert.Equal(t, CategoryInvalid, result.Category)
	assert.Equal(t, 0.0, result.Confidence)
	require.NotNil(t, result.Answer)
	assert.Contains(t, *result.Answer, "rephrasing")
}

func TestClassifyProviderError(t *testing.T) {
	provider := &replyProvider{err: fmt.Errorf("connection reset")}
	router := setupRouter(t, provider, 6)

	result := router.Classify(context.Background(), "anything", nil)

	assert.Equal(t, CategoryInvalid, result.Category)
	assert.Equal(t, 0.0, result.Confidence)
	require.NotNil(t, result.Answer)
}

func TestClassifyNormalization(t *testing.T) {
	t.Run("confidence clamped high", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query", "confidence": 3.5}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, 1.0, result.Confidence)
	})

	t.Run("confidence clamped low", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query", "confidence": -0.1}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, 0.0, result.Confidence)
	})

	t.Run("confidence as string", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query", "confidence": "0.8"}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, 0.8, result.Confidence)
	})

	t.Run("missing confidence defaults", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query"}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, 0.5, result.Confidence)
	})

	t.Run("unknown category becomes invalid", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "philosophical", "confidence": 0.9}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, CategoryInvalid, result.Category)
	})

	t.Run("mixed case category", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "Query", "confidence": 0.9}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, CategoryQuery, result.Category)
	})

	t.Run("unknown module dropped", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query", "module": "M9", "confidence": 0.9}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Nil(t, result.Module)
	})

	t.Run("unknown entity keys discarded", func(t *testing.T) {
		provider := &replyProvider{content: `{"category": "query", "confidence": 0.9, "entities": {"days": 5, "favorite_color": "blue"}}`}
		router := setupRouter(t, provider, 6)
		result := router.Classify(context.Background(), "q", nil)
		assert.Equal(t, float64(5), result.Entities["days"])
		assert.NotContains(t, result.Entities, "favorite_color")
	})
}

func TestClassifyHistoryWindow(t *testing.T) {
	provider := &replyProvider{content: `{"category": "query", "confidence": 0.9}`}
	router := setupRouter(t, provider, 2)

	history := []llm.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
		{Role: "assistant", Content: "fourth"},
	}

	router.Classify(context.Background(), "current question", history)

	require.Len(t, provider.requests, 1)
	messages := provider.requests[0].Messages

	// Only the trailing two history messages plus the question travel
	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "fourth", messages[1].Content)
	assert.Contains(t, messages[2].Content, "current question")
}
