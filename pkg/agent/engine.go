package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/tool"
	"github.com/rs/zerolog"
)

// state tracks the loop's position in the Reasoning/ToolExecution cycle
type state int

const (
	stateReasoning state = iota
	stateToolExecution
	stateDone
)

// ExhaustedAnswer is returned when the loop hits its turn cap without the
// model producing a final answer.
const ExhaustedAnswer = "I could not complete your request within the allowed number of steps. Please try rephrasing your question."

// Config configures engine behavior
type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	// MaxTurns bounds the number of Reasoning->ToolExecution cycles.
	// Required: the loop refuses to run unbounded.
	MaxTurns   int
	MaxRetries int
}

// Result contains the output of one loop run
type Result struct {
	Answer    string
	ToolCalls []llm.ToolCall
	Turns     int
	Usage     *llm.TokenUsage
	Exhausted bool
}

// Engine drives the agent loop
type Engine struct {
	provider   llm.Provider
	registry   *tool.Registry
	dispatcher *tool.Dispatcher
	config     Config
	logger     zerolog.Logger
}

// New creates an agent engine
func New(provider llm.Provider, registry *tool.Registry, dispatcher *tool.Dispatcher, cfg Config, logger zerolog.Logger) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm provider is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("tool dispatcher is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.MaxTurns <= 0 {
		return nil, fmt.Errorf("max turns must be positive")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Engine{
		provider:   provider,
		registry:   registry,
		dispatcher: dispatcher,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Run executes the loop over the given transcript until the reasoning step
// produces a final answer or the turn cap is reached. The transcript is the
// conversation history including the current user question; the system
// directive is injected on every reasoning call regardless of history.
func (e *Engine) Run(ctx context.Context, transcript []llm.Message) (Result, error) {
	messages := make([]llm.Message, len(transcript))
	copy(messages, transcript)

	specs := e.buildSpecs()
	allToolCalls := []llm.ToolCall{}
	var usage llm.TokenUsage

	current := stateReasoning

	for turn := 0; current != stateDone; turn++ {
		if turn >= e.config.MaxTurns {
			e.logger.Warn().Int("max_turns", e.config.MaxTurns).Msg("Agent loop turn cap reached")
			return Result{
				Answer:    ExhaustedAnswer,
				ToolCalls: allToolCalls,
				Turns:     turn,
				Usage:     &usage,
				Exhausted: true,
			}, nil
		}

		// Reasoning
		response, err := e.completeWithRetry(ctx, messages, specs)
		if err != nil {
			return Result{}, fmt.Errorf("reasoning step failed: %w", err)
		}
		if response.Usage != nil {
			usage.InputTokens += response.Usage.InputTokens
			usage.OutputTokens += response.Usage.OutputTokens
		}

		// Transition guard: no tool calls means the content is the answer
		if len(response.ToolCalls) == 0 {
			current = stateDone
			return Result{
				Answer:    response.Content,
				ToolCalls: allToolCalls,
				Turns:     turn + 1,
				Usage:     &usage,
			}, nil
		}

		current = stateToolExecution

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})

		// ToolExecution: every requested call produces exactly one result,
		// appended in request order before the next reasoning step
		calls := make([]tool.Call, len(response.ToolCalls))
		for i, tc := range response.ToolCalls {
			calls[i] = tool.Call{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}
		}

		results := e.dispatcher.Dispatch(ctx, calls)
		for _, res := range results {
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    res.Content,
				ToolCallID: res.CallID,
			})
		}

		allToolCalls = append(allToolCalls, response.ToolCalls...)
		current = stateReasoning
	}

	// Unreachable: the loop exits through Done or the turn cap
	return Result{}, fmt.Errorf("agent loop terminated unexpectedly")
}

// buildSpecs converts registered tools to model-facing declarations
func (e *Engine) buildSpecs() []llm.ToolSpec {
	defs := e.registry.Definitions()
	if len(defs) == 0 {
		return nil
	}

	specs := make([]llm.ToolSpec, 0, len(defs))
	for _, def := range defs {
		specs = append(specs, llm.ToolSpec{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		})
	}

	return specs
}

// completeWithRetry calls the LLM with exponential backoff retry
func (e *Engine) completeWithRetry(ctx context.Context, messages []llm.Message, specs []llm.ToolSpec) (*llm.Response, error) {
	var lastErr error

	for attempt := 0; attempt < e.config.MaxRetries; attempt++ {
		response, err := e.provider.Complete(ctx, llm.Request{
			Model:        e.config.Model,
			Messages:     messages,
			Tools:        specs,
			Temperature:  e.config.Temperature,
			MaxTokens:    e.config.MaxTokens,
			SystemPrompt: e.config.SystemPrompt,
		})
		if err == nil {
			return response, nil
		}

		lastErr = err

		if !llm.IsRetryableError(err) {
			return nil, err
		}

		if attempt == e.config.MaxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s
		delay := time.Duration(1000*(1<<attempt)) * time.Millisecond
		e.logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", e.config.MaxRetries, lastErr)
}
