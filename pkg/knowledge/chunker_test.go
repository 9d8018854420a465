package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	assert.Empty(t, ChunkText(""))
	assert.Empty(t, ChunkText("   \n  \n"))
}

func TestChunkTextShort(t *testing.T) {
	chunks := ChunkText("A short policy paragraph.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short policy paragraph.", chunks[0])
}

func TestChunkTextSplitsLongContent(t *testing.T) {
	line := strings.Repeat("policy text ", 20) // ~240 chars per line
	text := strings.Repeat(line+"\n", 20)

	chunks := ChunkText(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.NotEmpty(t, chunk, "chunk %d", i)
		// Chunks stay near the size cap: one overlong line can push past it
		assert.LessOrEqual(t, len(chunk), 1300, "chunk %d", i)
	}
}

func TestChunkTextOverlap(t *testing.T) {
	line := strings.Repeat("x", 240)
	text := strings.Repeat(line+"\n", 10)

	chunks := ChunkText(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share the carried-over tail
	tail := chunks[0][len(chunks[0])-50:]
	assert.Contains(t, chunks[1], tail)
}

func TestFormatSnippets(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		assert.Equal(t, NoResultsMessage, FormatSnippets(nil))
		assert.Equal(t, NoResultsMessage, FormatSnippets([]Snippet{}))
	})

	t.Run("numbered documents", func(t *testing.T) {
		out := FormatSnippets([]Snippet{
			{ID: "c1", Content: "Annual leave is 14 days."},
			{ID: "c2", Content: "Sick leave requires an MC."},
		})

		assert.Equal(t, "Document 1:\nAnnual leave is 14 days.\n\nDocument 2:\nSick leave requires an MC.", out)
	})
}
