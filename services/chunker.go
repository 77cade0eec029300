package services

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// defaultSeparators is the split hierarchy: paragraph, line, sentence, word,
// and finally a hard character cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits raw text into overlapping segments bounded by ChunkSize
// characters. Consecutive segments share up to ChunkOverlap characters of
// context so meaning survives the cut.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int

	splitter textsplitter.RecursiveCharacter
}

// NewChunker builds a chunker with the given size and overlap.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(defaultSeparators),
		),
	}
}

// Chunk splits text into ordered segments. Empty or whitespace-only input
// yields no chunks. Text shorter than the chunk size comes back as a single
// segment.
func (c *Chunker) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	return chunks, nil
}
