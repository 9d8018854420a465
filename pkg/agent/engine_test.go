package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/tool"
)

// scriptedProvider replays a fixed sequence of responses
type scriptedProvider struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
}

func (p *scriptedProvider) Complete(ctx context.Context, request llm.Request) (*llm.Response, error) {
	idx := len(p.requests)
	p.requests = append(p.requests, request)

	if idx < len(p.errs) && p.errs[idx] != nil {
		return nil, p.errs[idx]
	}
	if idx < len(p.responses) {
		return p.responses[idx], nil
	}
	return &llm.Response{Content: "out of script"}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func setupEngine(t *testing.T, provider llm.Provider, maxTurns int) (*Engine, func()) {
	t.Helper()

	registry := tool.NewRegistry(zerolog.Nop())
	require.NoError(t, registry.Register(tool.Definition{
		Name:        "lookup",
		Description: "looks things up",
		Parameters: []tool.Parameter{
			{Name: "key", Type: "string", Description: "lookup key", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return fmt.Sprintf("value for %v", args["key"]), nil
		},
	}))

	pool := tool.NewWorkerPool(2)
	dispatcher, err := tool.NewDispatcher(registry, pool, zerolog.Nop())
	require.NoError(t, err)

	engine, err := New(provider, registry, dispatcher, Config{
		Model:        "test-model",
		SystemPrompt: "You are a test assistant.",
		MaxTurns:     maxTurns,
	}, zerolog.Nop())
	require.NoError(t, err)

	return engine, pool.Close
}

func TestRunDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*llm.Response{{Content: "the answer"}},
	}
	engine, cleanup := setupEngine(t, provider, 10)
	defer cleanup()

	result, err := engine.Run(context.Background(), []llm.Message{
		{Role: "user", Content: "a question"},
	})

	require.NoError(t, err)
	assert.Equal(t, "the answer", result.Answer)
	assert.Equal(t, 1, result.Turns)
	assert.Empty(t, result.ToolCalls)
	assert.False(t, result.Exhausted)
}

func TestRunToolCycle(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*llm.Response{
			{ToolCalls: []llm.ToolCall{
				{ID: "tc-1", Name: "lookup", Arguments: map[string]interface{}{"key": "policy"}},
			}},
			{Content: "answer built from tool output"},
		},
	}
	engine, cleanup := setupEngine(t, provider, 10)
	defer cleanup()

	result, err := engine.Run(context.Background(), []llm.Message{
		{Role: "user", Content: "a question"},
	})

	require.NoError(t, err)
	assert.Equal(t, "answer built from tool output", result.Answer)
	assert.Equal(t, 2, result.Turns)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "lookup", result.ToolCalls[0].Name)

	// Second reasoning call must carry the assistant turn and tool result
	require.Len(t, provider.requests, 2)
	second := provider.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, "assistant", second[1].Role)
	assert.Equal(t, "tool", second[2].Role)
	assert.Equal(t, "tc-1", second[2].ToolCallID)
	assert.Equal(t, "value for policy", second[2].Content)
}

func TestRunSystemPromptOnEveryCall(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*llm.Response{
			{ToolCalls: []llm.ToolCall{
				{ID: "tc-1", Name: "lookup", Arguments: map[string]interface{}{"key": "x"}},
			}},
			{Content: "done"},
		},
	}
	engine, cleanup := setupEngine(t, provider, 10)
	defer cleanup()

	_, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)

	for _, req := range provider.requests {
		assert.Equal(t, "You are a test assistant.", req.SystemPrompt)
	}
}

func TestRunTurnCapExhaustion(t *testing.T) {
	// Every response requests another tool call, so the loop never settles
	endless := &llm.Response{ToolCalls: []llm.ToolCall{
		{ID: "tc", Name: "lookup", Arguments: map[string]interface{}{"key": "again"}},
	}}
	provider := &scriptedProvider{
		responses: []*llm.Response{endless, endless, endless},
	}
	engine, cleanup := setupEngine(t, provider, 2)
	defer cleanup()

	result, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Equal(t, ExhaustedAnswer, result.Answer)
	assert.Equal(t, 2, result.Turns)
	assert.Len(t, result.ToolCalls, 2)
}

func TestRunRetriesRetryableErrors(t *testing.T) {
	provider := &scriptedProvider{
		errs:      []error{fmt.Errorf("rate limit exceeded"), nil},
		responses: []*llm.Response{nil, {Content: "recovered"}},
	}
	engine, cleanup := setupEngine(t, provider, 10)
	defer cleanup()

	result, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Answer)
	assert.Len(t, provider.requests, 2)
}

func TestRunNonRetryableErrorFails(t *testing.T) {
	provider := &scriptedProvider{
		errs: []error{fmt.Errorf("invalid api key")},
	}
	engine, cleanup := setupEngine(t, provider, 10)
	defer cleanup()

	_, err := engine.Run(context.Background(), []llm.Message{{Role: "user", Content: "q"}})

	require.Error(t, err)
	assert.Len(t, provider.requests, 1)
}

func TestNewValidation(t *testing.T) {
	registry := tool.NewRegistry(zerolog.Nop())
	pool := tool.NewWorkerPool(1)
	defer pool.Close()
	dispatcher, err := tool.NewDispatcher(registry, pool, zerolog.Nop())
	require.NoError(t, err)

	t.Run("nil provider", func(t *testing.T) {
		_, err := New(nil, registry, dispatcher, Config{Model: "m", MaxTurns: 1}, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("zero max turns", func(t *testing.T) {
		_, err := New(&scriptedProvider{}, registry, dispatcher, Config{Model: "m"}, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := New(&scriptedProvider{}, registry, dispatcher, Config{MaxTurns: 1}, zerolog.Nop())
		assert.Error(t, err)
	})
}
