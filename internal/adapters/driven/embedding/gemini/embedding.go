// Package gemini provides an embedding service adapter using the Google
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client     *genai.Client
	model      string
	dimensions int

	embedOne  func(ctx context.Context, text string) ([]float32, error)
	embedMany func(ctx context.Context, texts []string) ([][]float32, error)
	ping      func(ctx context.Context) error
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
		if d, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
			cfg.Dimensions = d
		}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
	em := client.EmbeddingModel(cfg.Model)

	s.embedOne = func(ctx context.Context, text string) ([]float32, error) {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if res.Embedding == nil {
			return nil, errors.New("empty embedding")
		}
		return res.Embedding.Values, nil
	}

	s.embedMany = func(ctx context.Context, texts []string) ([][]float32, error) {
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, len(res.Embeddings))
		for i, e := range res.Embeddings {
			if e != nil {
				out[i] = e.Values
			}
		}
		return out, nil
	}

	s.ping = func(ctx context.Context) error {
		it := client.ListModels(ctx)
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		return err
	}

	return s, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedOne(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("gemini: %w: no values returned", domain.ErrEmbeddingFailed)
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := s.embedMany(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("gemini: %w: got %d embeddings for %d inputs",
			domain.ErrEmbeddingFailed, len(vecs), len(texts))
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
