// Package assistant is the orchestration facade: one entry point that
// classifies a question, routes it by category, runs the agent loop when
// needed, and maintains session history and the audit trail.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/Cherwin23/HR-Assistant/pkg/agent"
	"github.com/Cherwin23/HR-Assistant/pkg/audit"
	"github.com/Cherwin23/HR-Assistant/pkg/intent"
	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/session"
)

// Canned answers used when the model did not supply one
const (
	RejectionAnswer = "I can only assist with HR-related queries. Please rephrase your question."
	GreetingAnswer  = "Hello! How can I help you with HR-related questions today?"
	AgentFailAnswer = "I encountered an error retrieving information. Please try again."
)

// Request is one inbound question
type Request struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// Response is the outbound envelope, mirroring the classification result
// with the routed answer filled in
type Response struct {
	Intent          string                 `json:"intent"`
	Category        string                 `json:"category"`
	Module          *string                `json:"module"`
	UseCase         *string                `json:"use_case"`
	Answer          *string                `json:"answer"`
	Confidence      float64                `json:"confidence"`
	RequiresContext []string               `json:"requires_context"`
	Entities        map[string]interface{} `json:"entities"`
	SessionID       string                 `json:"session_id"`
}

// Config holds facade configuration
type Config struct {
	// ConfidenceThreshold below which any classification is rejected
	ConfidenceThreshold float64
}

// Assistant wires the classifier, agent loop, session store, summarizer
// and audit recorder behind a single Ask entry point
type Assistant struct {
	router     *intent.Router
	engine     *agent.Engine
	sessions   session.Store
	summarizer *Summarizer
	recorder   *audit.Recorder
	config     Config
	logger     zerolog.Logger
}

// New creates the facade
func New(router *intent.Router, engine *agent.Engine, sessions session.Store, summarizer *Summarizer, recorder *audit.Recorder, cfg Config, logger zerolog.Logger) (*Assistant, error) {
	if router == nil {
		return nil, fmt.Errorf("intent router is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("agent engine is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.6
	}

	return &Assistant{
		router:     router,
		engine:     engine,
		sessions:   sessions,
		summarizer: summarizer,
		recorder:   recorder,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Ask classifies the question and routes it. Routing order is fixed:
// rejection (invalid or low confidence), conversational, action, query.
// Only actions and completed queries reach the audit trail.
func (a *Assistant) Ask(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	sessionKey := req.SessionID
	if sessionKey == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session id: %w", err)
		}
		sessionKey = id
	}

	history, err := a.sessions.History(ctx, sessionKey)
	if err != nil {
		a.logger.Warn().Err(err).Str("session", sessionKey).Msg("Failed to load session history")
		history = nil
	}
	transcript := toLLMMessages(history)

	started := time.Now()
	classification := a.router.Classify(ctx, req.Question, transcript)

	resp := a.route(ctx, req.Question, sessionKey, classification, transcript, started)
	resp.SessionID = sessionKey

	a.updateSession(ctx, sessionKey, req.Question, resp.Answer)

	return resp, nil
}

// route applies the category policy to a classification
func (a *Assistant) route(ctx context.Context, question, sessionKey string, c intent.Result, transcript []llm.Message, started time.Time) *Response {
	// Rejection gate: invalid category or low confidence never reaches
	// the agent loop
	if c.Category == intent.CategoryInvalid || c.Confidence < a.config.ConfidenceThreshold {
		answer := RejectionAnswer
		if c.Answer != nil && *c.Answer != "" {
			answer = *c.Answer
		}
		return &Response{
			Intent:          fallbackIntent(c.Intent, "invalid"),
			Category:        intent.CategoryInvalid,
			Module:          c.Module,
			UseCase:         c.UseCase,
			Answer:          &answer,
			Confidence:      c.Confidence,
			RequiresContext: []string{},
			Entities:        entitiesOrDefault(c.Entities),
		}
	}

	if c.Category == intent.CategoryConversational {
		answer := GreetingAnswer
		if c.Answer != nil && *c.Answer != "" {
			answer = *c.Answer
		}
		return &Response{
			Intent:          fallbackIntent(c.Intent, "conversational"),
			Category:        intent.CategoryConversational,
			Answer:          &answer,
			Confidence:      c.Confidence,
			RequiresContext: []string{},
			Entities:        map[string]interface{}{},
		}
	}

	// Actions are fulfilled downstream; the answer stays null and the
	// intent result is audited as issued
	if c.Category == intent.CategoryAction {
		a.recordAudit(sessionKey, question, c, "", "", nil, time.Since(started))
		return &Response{
			Intent:          c.Intent,
			Category:        intent.CategoryAction,
			Module:          c.Module,
			UseCase:         c.UseCase,
			Answer:          nil,
			Confidence:      c.Confidence,
			RequiresContext: requiresOrEmpty(c.RequiresContext),
			Entities:        entitiesOrDefault(c.Entities),
		}
	}

	return a.runQuery(ctx, question, sessionKey, c, transcript, started)
}

// runQuery drives the agent loop for a query classification
func (a *Assistant) runQuery(ctx context.Context, question, sessionKey string, c intent.Result, transcript []llm.Message, started time.Time) *Response {
	messages := append(append([]llm.Message{}, transcript...), llm.Message{
		Role:    "user",
		Content: question,
	})

	result, err := a.engine.Run(ctx, messages)
	if err != nil {
		a.logger.Error().Err(err).Str("session", sessionKey).Msg("Agent loop failed")
		answer := AgentFailAnswer
		return &Response{
			Intent:          c.Intent,
			Category:        intent.CategoryQuery,
			Module:          c.Module,
			UseCase:         c.UseCase,
			Answer:          &answer,
			Confidence:      c.Confidence * 0.5,
			RequiresContext: []string{},
			Entities:        entitiesOrDefault(c.Entities),
		}
	}

	summary := a.summarizer.Summarize(ctx, result.Answer)
	elapsed := time.Since(started)

	toolsUsed := make([]string, 0, len(result.ToolCalls))
	for _, call := range result.ToolCalls {
		toolsUsed = append(toolsUsed, call.Name)
	}

	a.recordAudit(sessionKey, question, c, result.Answer, summary, toolsUsed, elapsed)

	a.logger.Info().
		Str("session", sessionKey).
		Int("turns", result.Turns).
		Int("tools", len(result.ToolCalls)).
		Bool("exhausted", result.Exhausted).
		Dur("elapsed", elapsed).
		Msg("Query answered")

	return &Response{
		Intent:          c.Intent,
		Category:        intent.CategoryQuery,
		Module:          c.Module,
		UseCase:         c.UseCase,
		Answer:          &summary,
		Confidence:      c.Confidence,
		RequiresContext: []string{},
		Entities:        entitiesOrDefault(c.Entities),
	}
}

// recordAudit assembles the interaction record and hands it to the
// recorder; a nil recorder drops it silently
func (a *Assistant) recordAudit(sessionKey, question string, c intent.Result, fullResponse, summary string, toolsUsed []string, elapsed time.Duration) {
	if a.recorder == nil {
		return
	}

	intentRecord := map[string]interface{}{
		"intent":           c.Intent,
		"category":         c.Category,
		"module":           c.Module,
		"use_case":         c.UseCase,
		"confidence":       c.Confidence,
		"requires_context": requiresOrEmpty(c.RequiresContext),
		"entities":         entitiesOrDefault(c.Entities),
	}

	a.recorder.Record(sessionKey, question, intentRecord, fullResponse, summary, a.summarizer.MaxWords(), toolsUsed, elapsed)
}

// updateSession appends the exchange after routing completes. The user
// question is always stored; the assistant turn only when an answer exists.
func (a *Assistant) updateSession(ctx context.Context, sessionKey, question string, answer *string) {
	messages := []session.Message{{Role: "user", Content: question}}
	if answer != nil && *answer != "" {
		messages = append(messages, session.Message{Role: "assistant", Content: *answer})
	}

	if err := a.sessions.Append(ctx, sessionKey, messages...); err != nil {
		a.logger.Warn().Err(err).Str("session", sessionKey).Msg("Failed to update session history")
	}
}

// Reset clears one session's history
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	return a.sessions.Clear(ctx, sessionID)
}

// ClearAll wipes every session
func (a *Assistant) ClearAll(ctx context.Context) error {
	return a.sessions.ClearAll(ctx)
}

// toLLMMessages converts stored history to provider messages, skipping
// roles the providers do not replay
func toLLMMessages(history []session.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

func fallbackIntent(intentLabel, fallback string) string {
	if intentLabel == "" {
		return fallback
	}
	return intentLabel
}

func entitiesOrDefault(entities map[string]interface{}) map[string]interface{} {
	if entities == nil {
		return intent.DefaultEntities()
	}
	return entities
}

func requiresOrEmpty(requires []string) []string {
	if requires == nil {
		return []string{}
	}
	return requires
}
