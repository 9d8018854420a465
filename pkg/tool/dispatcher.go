package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// UnknownToolResult is substituted for calls naming a tool that was never
// registered. The batch continues; the reasoning step sees this text and
// can retry with a valid tool.
const UnknownToolResult = "Incorrect Tool Name, Please Retry and Select tool from List of Available tools."

// Call is a single tool invocation requested by the reasoning step
type Call struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Result is the outcome of one Call. Exactly one Result is produced per
// Call, carrying the originating correlation id.
type Result struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Dispatcher executes tool calls against a registry
type Dispatcher struct {
	registry *Registry
	pool     *WorkerPool
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher backed by the given registry. The
// worker pool serves Blocking tools; it may be shared across dispatchers.
func NewDispatcher(registry *Registry, pool *WorkerPool, logger zerolog.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("worker pool is required")
	}

	return &Dispatcher{
		registry: registry,
		pool:     pool,
		logger:   logger,
	}, nil
}

// Dispatch executes all calls and returns one result per call, in input
// order. A single call runs inline; multiple calls fan out concurrently
// and join before returning, so concurrency is never observable as
// reordering or partial results.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []Call) []Result {
	if len(calls) == 0 {
		return nil
	}

	if len(calls) == 1 {
		return []Result{d.execute(ctx, calls[0])}
	}

	d.logger.Debug().Int("count", len(calls)).Msg("Executing tool calls concurrently")

	results := make([]Result, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			results[i] = d.execute(ctx, call)
		}(i, call)
	}

	wg.Wait()
	return results
}

// execute runs a single call, converting every failure mode into a Result
func (d *Dispatcher) execute(ctx context.Context, call Call) (result Result) {
	startTime := time.Now()

	result = Result{CallID: call.ID, Name: call.Name}

	// A panicking handler becomes an error result, never a crashed batch
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("tool", call.Name).Interface("panic", r).Msg("Tool handler panicked")
			result.Content = fmt.Sprintf("tool %s panicked: %v", call.Name, r)
			result.IsError = true
		}
	}()

	def := d.registry.Get(call.Name)
	if def == nil {
		d.logger.Warn().Str("tool", call.Name).Msg("Tool not found")
		result.Content = UnknownToolResult
		result.IsError = true
		return result
	}

	if err := validateArgs(d.registry.schema(call.Name), call.Arguments); err != nil {
		d.logger.Warn().Str("tool", call.Name).Err(err).Msg("Argument validation failed")
		result.Content = fmt.Sprintf("invalid arguments for %s: %v", call.Name, err)
		result.IsError = true
		return result
	}

	d.logger.Debug().Str("tool", call.Name).Msg("Executing tool")

	var output string
	var err error

	if def.Blocking {
		output, err = d.pool.Run(ctx, func(ctx context.Context) (string, error) {
			return def.Handler(ctx, call.Arguments)
		})
	} else {
		output, err = def.Handler(ctx, call.Arguments)
	}

	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error().Str("tool", call.Name).Dur("duration", duration).Err(err).Msg("Tool execution failed")
		result.Content = err.Error()
		result.IsError = true
		return result
	}

	d.logger.Debug().Str("tool", call.Name).Dur("duration", duration).Msg("Tool execution completed")

	result.Content = output
	return result
}
