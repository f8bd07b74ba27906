package services

import (
	"context"
	"sort"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// recordSource provides the chunks a Retriever ranks.
type recordSource interface {
	Records() []domain.ChunkRecord
}

// Retriever ranks stored chunks by cosine similarity to a query.
type Retriever struct {
	store    recordSource
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever over store. The embedder must be the one
// the store was filled with.
func NewRetriever(store *VectorStore, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
	}
}

// Retrieve returns at most opts.TopK chunks with similarity strictly above
// opts.Threshold, most similar first. Equal scores keep insertion order.
func (r *Retriever) Retrieve(
	ctx context.Context,
	query string,
	opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	results := []domain.RetrievalResult{}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	records := r.store.Records()
	if len(records) == 0 {
		logger.Debug("retrieve %q: store is empty", query)
		return results
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("retrieve %q: embed query: %v", query, err)
		return results
	}

	for i, rec := range records {
		sim := cosineSimilarity(queryVec, rec.Embedding)
		if sim <= opts.Threshold {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Text:       rec.Text,
			Source:     rec.Source,
			CitationID: rec.CitationID,
			Similarity: sim,
			Index:      i,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("retrieve %q: %d of %d chunks above %.2f", query, len(results), len(records), opts.Threshold)

	return results
}
