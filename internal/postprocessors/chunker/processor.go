// Package chunker provides a word-aligned text chunking processor.
package chunker

import (
	"strings"

	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 500

// Processor splits text into word-aligned chunks of roughly chunkSize characters.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in characters.
// Non-positive sizes are ignored.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the target chunk size in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Chunk splits text on whitespace and packs words greedily.
//
// Each word contributes its length plus one separator to a running total.
// Once the total reaches the chunk size the chunk is closed, so the word that
// crosses the threshold stays in the chunk it crossed. A short remainder is
// still emitted. Empty or whitespace-only text yields no chunks.
func (p *Processor) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	current := make([]string, 0, 64)
	size := 0

	for _, word := range words {
		current = append(current, word)
		size += len(word) + 1

		if size >= p.chunkSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			size = 0
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
