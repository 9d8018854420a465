package tool

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *Registry, func()) {
	t.Helper()

	registry := NewRegistry(zerolog.Nop())
	pool := NewWorkerPool(2)

	dispatcher, err := NewDispatcher(registry, pool, zerolog.Nop())
	require.NoError(t, err)

	return dispatcher, registry, pool.Close
}

func echoTool(name string, delay time.Duration) Definition {
	return Definition{
		Name:        name,
		Description: "echoes its input",
		Parameters: []Parameter{
			{Name: "value", Type: "string", Description: "value to echo", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			if delay > 0 {
				time.Sleep(delay)
			}
			return fmt.Sprintf("%v", args["value"]), nil
		},
	}
}

func TestDispatchEmpty(t *testing.T) {
	dispatcher, _, cleanup := setupDispatcher(t)
	defer cleanup()

	results := dispatcher.Dispatch(context.Background(), nil)
	assert.Nil(t, results)
}

func TestDispatchSingleCall(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(echoTool("echo", 0)))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "call-1", Name: "echo", Arguments: map[string]interface{}{"value": "hello"}},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "call-1", results[0].CallID)
	assert.Equal(t, "hello", results[0].Content)
	assert.False(t, results[0].IsError)
}

func TestDispatchPreservesInputOrder(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	// The slowest tool comes first so completion order inverts input order
	require.NoError(t, registry.Register(echoTool("slow", 100*time.Millisecond)))
	require.NoError(t, registry.Register(echoTool("medium", 50*time.Millisecond)))
	require.NoError(t, registry.Register(echoTool("fast", 0)))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "c1", Name: "slow", Arguments: map[string]interface{}{"value": "first"}},
		{ID: "c2", Name: "medium", Arguments: map[string]interface{}{"value": "second"}},
		{ID: "c3", Name: "fast", Arguments: map[string]interface{}{"value": "third"}},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
	assert.Equal(t, "third", results[2].Content)
}

func TestDispatchUnknownTool(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(echoTool("echo", 0)))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "c1", Name: "echo", Arguments: map[string]interface{}{"value": "ok"}},
		{ID: "c2", Name: "no_such_tool", Arguments: map[string]interface{}{}},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "ok", results[0].Content)
	assert.Equal(t, UnknownToolResult, results[1].Content)
	assert.True(t, results[1].IsError)
}

func TestDispatchToolError(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(Definition{
		Name:        "failing",
		Description: "always fails",
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", fmt.Errorf("backend unavailable")
		},
	}))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "c1", Name: "failing"},
	})

	require.Len(t, results, 1)
	assert.True(t, results[0].IsError)
	assert.Equal(t, "backend unavailable", results[0].Content)
}

func TestDispatchPanicRecovery(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(Definition{
		Name:        "panicking",
		Description: "always panics",
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			panic("boom")
		},
	}))
	require.NoError(t, registry.Register(echoTool("echo", 0)))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "c1", Name: "panicking"},
		{ID: "c2", Name: "echo", Arguments: map[string]interface{}{"value": "survives"}},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Content, "panicked")
	assert.Equal(t, "survives", results[1].Content)
}

func TestDispatchInvalidArguments(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(echoTool("echo", 0)))

	t.Run("missing required", func(t *testing.T) {
		results := dispatcher.Dispatch(context.Background(), []Call{
			{ID: "c1", Name: "echo", Arguments: map[string]interface{}{}},
		})
		require.Len(t, results, 1)
		assert.True(t, results[0].IsError)
	})

	t.Run("unexpected property", func(t *testing.T) {
		results := dispatcher.Dispatch(context.Background(), []Call{
			{ID: "c1", Name: "echo", Arguments: map[string]interface{}{"value": "x", "extra": true}},
		})
		require.Len(t, results, 1)
		assert.True(t, results[0].IsError)
	})
}

func TestDispatchBlockingToolUsesPool(t *testing.T) {
	dispatcher, registry, cleanup := setupDispatcher(t)
	defer cleanup()

	require.NoError(t, registry.Register(Definition{
		Name:        "blocking",
		Description: "runs on the worker pool",
		Blocking:    true,
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "done", nil
		},
	}))

	results := dispatcher.Dispatch(context.Background(), []Call{
		{ID: "c1", Name: "blocking"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "done", results[0].Content)
	assert.False(t, results[0].IsError)
}
