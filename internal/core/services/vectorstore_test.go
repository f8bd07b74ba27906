package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/postprocessors/chunker"
)

func newTestStore(embedder *mockEmbeddingService, chunkSize int) (*VectorStore, *CitationLedger) {
	ledger := newTestLedger()
	return NewVectorStore(embedder, chunker.New(chunker.WithChunkSize(chunkSize)), ledger), ledger
}

func TestVectorStore_AddContent_Empty(t *testing.T) {
	store, ledger := newTestStore(newMockEmbedder(), 10)

	report := store.AddContent(context.Background(), "   \n ", "src", &domain.CitationFields{Title: "T"})

	assert.Equal(t, 0, report.Chunks)
	assert.Equal(t, 0, report.Stored)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, ledger.Len(), "no citation for empty content")
	assert.Empty(t, store.Sources())
}

func TestVectorStore_AddContent_SharedCitation(t *testing.T) {
	store, ledger := newTestStore(newMockEmbedder(), 1)

	report := store.AddContent(context.Background(), "one two three", "https://a.example",
		&domain.CitationFields{Title: "A", URL: "https://a.example"})

	require.NoError(t, report.CitationErr)
	assert.Equal(t, 1, report.CitationID)
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 3, report.Stored)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, ledger.Len())

	for _, rec := range store.Records() {
		assert.Equal(t, 1, rec.CitationID)
		assert.Equal(t, "https://a.example", rec.Source)
		assert.True(t, rec.HasCitation())
	}
}

func TestVectorStore_AddContent_NoFieldsIsUncited(t *testing.T) {
	store, ledger := newTestStore(newMockEmbedder(), 100)

	report := store.AddContent(context.Background(), "some text", "notes.txt", nil)

	assert.Equal(t, 0, report.CitationID)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 0, ledger.Len())
	assert.False(t, store.Records()[0].HasCitation())
}

func TestVectorStore_AddContent_InvalidCitationStillIngests(t *testing.T) {
	store, ledger := newTestStore(newMockEmbedder(), 100)

	report := store.AddContent(context.Background(), "body text", "src", &domain.CitationFields{Year: "2020"})

	require.ErrorIs(t, report.CitationErr, domain.ErrInvalidCitation)
	assert.Equal(t, 0, report.CitationID)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 0, ledger.Len())
}

func TestVectorStore_AddContent_FailedEmbedsAreAbsent(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.failures["two"] = true
	store, _ := newTestStore(embedder, 1)

	report := store.AddContent(context.Background(), "one two three", "src", nil)

	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Outcomes, 3)
	assert.NoError(t, report.Outcomes[0].Err)
	assert.ErrorIs(t, report.Outcomes[1].Err, domain.ErrEmbeddingFailed)
	assert.NoError(t, report.Outcomes[2].Err)

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "one", records[0].Text)
	assert.Equal(t, "three", records[1].Text)
	for _, rec := range records {
		assert.NotEmpty(t, rec.Embedding)
		assert.Equal(t, "src", rec.Source)
	}
}

func TestVectorStore_AddContent_AllEmbedsFail(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.fallback = nil
	store, _ := newTestStore(embedder, 1)

	report := store.AddContent(context.Background(), "a b", "src", nil)

	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Sources(), "sources only list contributing inputs")
}

func TestVectorStore_AddContent_DimensionMismatch(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["short"] = []float32{1, 0}
	store, _ := newTestStore(embedder, 1)

	store.AddContent(context.Background(), "first", "a", nil)
	report := store.AddContent(context.Background(), "short second", "b", nil)

	require.Len(t, report.Outcomes, 2)
	assert.ErrorIs(t, report.Outcomes[0].Err, domain.ErrDimensionMismatch)
	assert.NoError(t, report.Outcomes[1].Err)
	assert.Equal(t, 2, store.Len())
	for _, rec := range store.Records() {
		assert.Len(t, rec.Embedding, 3)
	}
}

func TestVectorStore_Sources_FirstSeenOrder(t *testing.T) {
	store, _ := newTestStore(newMockEmbedder(), 100)
	ctx := context.Background()

	store.AddContent(ctx, "x", "b", nil)
	store.AddContent(ctx, "y", "a", nil)
	store.AddContent(ctx, "z", "b", nil)

	assert.Equal(t, []string{"b", "a"}, store.Sources())
}

func TestVectorStore_ConcurrentAddAndRead(t *testing.T) {
	store, _ := newTestStore(newMockEmbedder(), 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.AddContent(ctx, "a b c", "src", &domain.CitationFields{Title: "t"})
		}()
		go func() {
			defer wg.Done()
			for _, rec := range store.Records() {
				assert.NotEmpty(t, rec.Text)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, store.Len())
}
