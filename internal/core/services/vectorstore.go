package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driving.ContentService = (*VectorStore)(nil)

// VectorStore holds embedded chunks in memory, in insertion order.
// Records are append-only; a stored record is never modified.
type VectorStore struct {
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	ledger   driving.CitationService

	mu      sync.RWMutex
	records []domain.ChunkRecord
	dims    int
	sources []string
	seen    map[string]struct{}
}

// NewVectorStore creates an empty store that embeds chunks with embedder and
// registers citations in ledger.
func NewVectorStore(
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	ledger driving.CitationService,
) *VectorStore {
	return &VectorStore{
		embedder: embedder,
		chunker:  chunker,
		ledger:   ledger,
		seen:     make(map[string]struct{}),
	}
}

// AddContent chunks text, embeds each chunk and appends the successes.
// Chunks that fail to embed are skipped and reported; they never abort the
// remaining chunks.
func (s *VectorStore) AddContent(
	ctx context.Context,
	text, source string,
	fields *domain.CitationFields,
) domain.IngestReport {
	report := domain.IngestReport{Source: source}

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		logger.Debug("add content %s: nothing to chunk", source)
		return report
	}
	report.Chunks = len(chunks)

	if fields != nil {
		id, err := s.ledger.AddCitation(*fields)
		if err != nil {
			logger.Warn("add content %s: citation rejected: %v", source, err)
			report.CitationErr = err
		} else {
			report.CitationID = id
		}
	}

	embeddings := make([][]float32, len(chunks))
	report.Outcomes = make([]domain.ChunkOutcome, len(chunks))
	for i, chunk := range chunks {
		report.Outcomes[i].Index = i

		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			report.Outcomes[i].Err = fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
			logger.Warn("add content %s: chunk %d: %v", source, i, err)
			continue
		}
		if len(vec) == 0 {
			report.Outcomes[i].Err = fmt.Errorf("%w: empty vector", domain.ErrEmbeddingFailed)
			logger.Warn("add content %s: chunk %d: empty vector", source, i)
			continue
		}
		embeddings[i] = vec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chunk := range chunks {
		if report.Outcomes[i].Err != nil {
			report.Skipped++
			continue
		}

		vec := embeddings[i]
		if s.dims == 0 {
			s.dims = len(vec)
		}
		if len(vec) != s.dims {
			report.Outcomes[i].Err = fmt.Errorf("%w: got %d, store holds %d",
				domain.ErrDimensionMismatch, len(vec), s.dims)
			logger.Warn("add content %s: chunk %d: %v", source, i, report.Outcomes[i].Err)
			report.Skipped++
			continue
		}

		s.records = append(s.records, domain.ChunkRecord{
			Text:       chunk,
			Embedding:  vec,
			Source:     source,
			CitationID: report.CitationID,
		})
		report.Stored++
	}

	if report.Stored > 0 && source != "" {
		if _, ok := s.seen[source]; !ok {
			s.seen[source] = struct{}{}
			s.sources = append(s.sources, source)
		}
	}

	logger.Debug("add content %s: %d chunks, %d stored, %d skipped",
		source, report.Chunks, report.Stored, report.Skipped)

	return report
}

// Len returns the number of stored chunks.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sources returns the distinct, non-empty sources with at least one stored chunk,
// in first-seen order.
func (s *VectorStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// Records returns a snapshot of the stored records.
// The snapshot is safe to read while other goroutines append.
func (s *VectorStore) Records() []domain.ChunkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[:len(s.records):len(s.records)]
}
