package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
	"github.com/rs/zerolog"
)

// Apology answers surfaced when classification cannot produce a usable
// result. A malformed reply is a terminal invalid outcome; there are no
// retries.
const (
	parseFailureAnswer = "I encountered an error processing your request. Please try rephrasing your question."
	callFailureAnswer  = "I encountered an error processing your request. Please try again."
)

// Config configures the router
type Config struct {
	Model       string
	Temperature float64
	// HistoryWindow bounds how many trailing history messages accompany
	// the question. Older context is dropped to limit prompt size.
	HistoryWindow int
}

// Router classifies questions via the external classification capability
type Router struct {
	provider llm.Provider
	prompts  *prompt.Store
	config   Config
	logger   zerolog.Logger
}

// NewRouter creates an intent router
func NewRouter(provider llm.Provider, prompts *prompt.Store, cfg Config, logger zerolog.Logger) (*Router, error) {
	if provider == nil {
		return nil, fmt.Errorf("llm provider is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompt store is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.HistoryWindow < 0 {
		return nil, fmt.Errorf("history window cannot be negative")
	}

	return &Router{
		provider: provider,
		prompts:  prompts,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Classify classifies a question given the session history. Every failure
// mode degrades to an invalid Result; classification never errors out.
func (r *Router) Classify(ctx context.Context, question string, history []llm.Message) Result {
	messages := []llm.Message{}

	// Recency bound: only the trailing window of history travels upstream
	if window := r.config.HistoryWindow; window > 0 && len(history) > 0 {
		start := len(history) - window
		if start < 0 {
			start = 0
		}
		messages = append(messages, history[start:]...)
	}

	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Classify this user input:\n\n%s", question),
	})

	response, err := r.provider.Complete(ctx, llm.Request{
		Model:        r.config.Model,
		Messages:     messages,
		Temperature:  r.config.Temperature,
		SystemPrompt: r.prompts.Get(prompt.IntentClassification),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Intent classification call failed")
		return invalidResult(callFailureAnswer)
	}

	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(extractJSON(response.Content)), &raw); err != nil {
		r.logger.Warn().Err(err).Str("content", response.Content).Msg("Intent classification reply unparseable")
		return invalidResult(parseFailureAnswer)
	}

	return normalize(raw)
}

// extractJSON strips a markdown code fence if the payload is wrapped in one
func extractJSON(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return strings.TrimSpace(content)
}

// normalize enforces the output contract regardless of what the upstream
// classifier produced
func normalize(raw map[string]interface{}) Result {
	result := Result{
		Intent:          stringOr(raw["intent"], "invalid"),
		Category:        normalizeCategory(raw["category"]),
		Module:          normalizeModule(raw["module"]),
		UseCase:         optionalString(raw["use_case"]),
		Answer:          optionalString(raw["answer"]),
		Confidence:      normalizeConfidence(raw["confidence"]),
		RequiresContext: stringSlice(raw["requires_context"]),
		Entities:        mergeEntities(raw["entities"]),
	}

	return result
}

// normalizeConfidence coerces to float and clamps to [0,1], defaulting to
// 0.5 when absent or unparseable
func normalizeConfidence(v interface{}) float64 {
	confidence := 0.5

	switch c := v.(type) {
	case float64:
		confidence = c
	case int:
		confidence = float64(c)
	case string:
		if parsed, err := strconv.ParseFloat(c, 64); err == nil {
			confidence = parsed
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// normalizeCategory lower-cases and whitelists the category
func normalizeCategory(v interface{}) string {
	category := strings.ToLower(stringOr(v, CategoryInvalid))
	switch category {
	case CategoryQuery, CategoryAction, CategoryConversational, CategoryInvalid:
		return category
	default:
		return CategoryInvalid
	}
}

// normalizeModule discards unknown module codes
func normalizeModule(v interface{}) *string {
	module, ok := v.(string)
	if !ok || !knownModules[module] {
		return nil
	}
	return &module
}

// mergeEntities overlays upstream entities on the fixed default template
func mergeEntities(v interface{}) map[string]interface{} {
	entities := DefaultEntities()

	provided, ok := v.(map[string]interface{})
	if !ok {
		return entities
	}

	for key, value := range provided {
		if _, known := entities[key]; known {
			entities[key] = value
		}
	}

	return entities
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func optionalString(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
