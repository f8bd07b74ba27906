package driven

// Chunker splits source text into word-aligned pieces for embedding.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text into chunks. Empty input yields no chunks.
	Chunk(text string) []string
}
