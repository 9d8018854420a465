package assistant

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cherwin23/HR-Assistant/pkg/llm"
	"github.com/Cherwin23/HR-Assistant/pkg/prompt"
)

// summaryProvider returns a fixed summary and counts calls
type summaryProvider struct {
	summary string
	err     error
	calls   int
}

func (p *summaryProvider) Complete(ctx context.Context, request llm.Request) (*llm.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.summary}, nil
}

func (p *summaryProvider) Name() string { return "summary" }

func setupSummarizer(t *testing.T, provider llm.Provider, maxWords int) *Summarizer {
	t.Helper()

	prompts, err := prompt.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { prompts.Close() })

	return NewSummarizer(provider, prompts, "test-model", maxWords, 0.3, zerolog.Nop())
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(parts, " ")
}

func TestSummarizeShortTextVerbatim(t *testing.T) {
	provider := &summaryProvider{summary: "should never be used"}
	summarizer := setupSummarizer(t, provider, 20)

	text := words(20)
	assert.Equal(t, text, summarizer.Summarize(context.Background(), text))
	assert.Equal(t, 0, provider.calls, "text at the cap must not reach the model")
}

func TestSummarizeEmptyText(t *testing.T) {
	provider := &summaryProvider{}
	summarizer := setupSummarizer(t, provider, 20)

	assert.Equal(t, "", summarizer.Summarize(context.Background(), ""))
	assert.Equal(t, "   ", summarizer.Summarize(context.Background(), "   "))
	assert.Equal(t, 0, provider.calls)
}

func TestSummarizeLongText(t *testing.T) {
	provider := &summaryProvider{summary: words(15)}
	summarizer := setupSummarizer(t, provider, 20)

	result := summarizer.Summarize(context.Background(), words(50))

	assert.Equal(t, words(15), result)
	assert.Equal(t, 1, provider.calls)
}

func TestSummarizeErrorFallsBack(t *testing.T) {
	provider := &summaryProvider{err: fmt.Errorf("model unavailable")}
	summarizer := setupSummarizer(t, provider, 20)

	text := words(50)
	assert.Equal(t, text, summarizer.Summarize(context.Background(), text))
}

func TestSummarizeTooShortFallsBack(t *testing.T) {
	provider := &summaryProvider{summary: "too brief"}
	summarizer := setupSummarizer(t, provider, 20)

	text := words(50)
	assert.Equal(t, text, summarizer.Summarize(context.Background(), text))
	assert.Equal(t, 1, provider.calls)
}
