package driven

import "context"

// EmbeddingService turns chunk text and section queries into vectors.
//
// One instance serves both ingestion and retrieval for the life of the
// process, so all vectors it returns share one length. Backed by Ollama,
// OpenAI or Gemini.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of every vector this service produces.
	Dimensions() int

	// ModelName identifies the embedding model.
	ModelName() string

	// Ping checks the provider answers without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
