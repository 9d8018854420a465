package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
)

// minSummaryWords guards against degenerate summaries: anything shorter
// falls back to the full text
const minSummaryWords = 10

// Summarizer condenses long answers for the voice interface
type Summarizer struct {
	provider    llm.Provider
	prompts     *prompt.Store
	model       string
	maxWords    int
	temperature float64
	logger      zerolog.Logger
}

// NewSummarizer creates a summarizer with the given word cap
func NewSummarizer(provider llm.Provider, prompts *prompt.Store, model string, maxWords int, temperature float64, logger zerolog.Logger) *Summarizer {
	if maxWords <= 0 {
		maxWords = 100
	}
	return &Summarizer{
		provider:    provider,
		prompts:     prompts,
		model:       model,
		maxWords:    maxWords,
		temperature: temperature,
		logger:      logger,
	}
}

// MaxWords returns the configured word cap
func (s *Summarizer) MaxWords() int {
	return s.maxWords
}

// Summarize returns a voice-friendly rendition of text. Text at or below
// the word cap is returned verbatim without calling the model; any
// summarization failure also falls back to the original text.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if len(strings.Fields(text)) <= s.maxWords {
		return text
	}

	systemPrompt := fmt.Sprintf(s.prompts.Get(prompt.Summarization), s.maxWords)
	userPrompt := fmt.Sprintf("Summarize the following text to approximately %d words:\n\n%s", s.maxWords, text)

	response, err := s.provider.Complete(ctx, llm.Request{
		Model:        s.model,
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: userPrompt}},
		Temperature:  s.temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Summarization failed, returning full text")
		return text
	}

	summary := strings.TrimSpace(response.Content)
	if len(strings.Fields(summary)) < minSummaryWords {
		s.logger.Warn().Int("words", len(strings.Fields(summary))).Msg("Summary too short, returning full text")
		return text
	}

	return summary
}
