package rag

import (
	"strings"
)

// ChunkerConfig holds configuration options for the chunker
type ChunkerConfig struct {
	// TargetWords is the largest buffer reachable by appending a sentence
	// Default: 180
	TargetWords int

	// OverlapWords is the number of trailing words carried into the next buffer
	// Default: 30
	OverlapWords int

	// MinWords is the floor for emission; buffers must be strictly larger
	// Default: 80
	MinWords int

	// Overlap selects how context is carried between buffers
	// Default: OverlapWords
	Overlap OverlapStrategy
}

// DefaultChunkerConfig returns sensible default configuration
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		TargetWords:  180,
		OverlapWords: 30,
		MinWords:     80,
		Overlap:      OverlapWords,
	}
}

// Chunker performs word-bounded chunking of sentences
type Chunker struct {
	config ChunkerConfig
}

// NewChunker creates a new chunker with default configuration
func NewChunker() *Chunker {
	return &Chunker{
		config: DefaultChunkerConfig(),
	}
}

// NewChunkerWithConfig creates a chunker with custom configuration
func NewChunkerWithConfig(config ChunkerConfig) *Chunker {
	return &Chunker{
		config: config,
	}
}

// ChunkResult contains the chunking output
type ChunkResult struct {
	// Chunks are the generated chunks in order, words joined by single spaces
	Chunks []string

	// Statistics about the chunking process
	Stats ChunkStats
}

// ChunkStats contains statistics about the chunking process
type ChunkStats struct {
	TotalChunks    int
	TotalWords     int
	MinWords       int
	MaxWords       int
	DroppedBuffers int
}

// Chunk packs sentences into chunks.
//
// Words of each sentence are appended while the buffer stays at or under
// TargetWords. When a sentence does not fit, the buffer is emitted if it
// holds more than MinWords words, and the next buffer starts with the last
// OverlapWords words of the old one followed by the new sentence. The
// carry-over happens whether or not the old buffer was emitted. A final
// buffer of MinWords words or fewer is dropped.
func (c *Chunker) Chunk(sentences []string) *ChunkResult {
	result := &ChunkResult{
		Chunks: make([]string, 0),
	}

	var current []string
	flush := func() {
		if len(current) > c.config.MinWords {
			result.Chunks = append(result.Chunks, strings.Join(current, " "))
			result.Stats.add(len(current))
		} else if len(current) > 0 {
			result.Stats.DroppedBuffers++
		}
	}

	for _, sentence := range sentences {
		words := strings.Fields(sentence)

		if len(current)+len(words) <= c.config.TargetWords {
			current = append(current, words...)
			continue
		}

		flush()
		current = carryOver(c.config.Overlap, c.config.OverlapWords, current, words)
	}

	// Last chunk
	flush()

	return result
}

func (s *ChunkStats) add(words int) {
	if s.TotalChunks == 0 || words < s.MinWords {
		s.MinWords = words
	}
	if words > s.MaxWords {
		s.MaxWords = words
	}
	s.TotalChunks++
	s.TotalWords += words
}

// countWords counts the whitespace-delimited words in text
func countWords(text string) int {
	return len(strings.Fields(text))
}
