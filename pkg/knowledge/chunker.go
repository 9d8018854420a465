package knowledge

import (
	"strings"
)

// ChunkText splits handbook text into indexable chunks. Line boundaries are
// preserved; consecutive chunks share an overlap so section context is not
// lost at the seam.
func ChunkText(text string) []string {
	const maxSize = 1000
	const overlap = 200

	var chunks []string
	lines := strings.Split(text, "\n")

	var current strings.Builder
	for _, line := range lines {
		lineLen := len(line) + 1

		if current.Len() > 0 && current.Len()+lineLen > maxSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))

			// Carry the tail of the previous chunk into the next one
			chunkText := current.String()
			current.Reset()
			if len(chunkText) > overlap {
				current.WriteString(chunkText[len(chunkText)-overlap:])
			}
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		chunks = append(chunks, tail)
	}

	return chunks
}
