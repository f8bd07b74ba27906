package domain

// ChunkRecord is a single stored chunk.
// Text, embedding, source and citation id travel together in one record,
// so they can never fall out of alignment.
type ChunkRecord struct {
	// Text is the chunk content.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Source is an opaque identifier of the origin, typically a URL.
	Source string

	// CitationID references a ledger entry. Zero means uncited.
	CitationID int
}

// HasCitation reports whether the record references a citation.
func (r ChunkRecord) HasCitation() bool {
	return r.CitationID > 0
}

// RetrievalOptions controls similarity-ranked retrieval.
type RetrievalOptions struct {
	// TopK is the maximum number of results. Non-positive uses DefaultTopK.
	TopK int

	// Threshold is the exclusive lower bound on similarity.
	Threshold float64
}

// Retrieval defaults.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.3
)

// DefaultRetrievalOptions returns top-5 retrieval above a 0.3 similarity.
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		TopK:      DefaultTopK,
		Threshold: DefaultThreshold,
	}
}

// RetrievalResult is a ranked chunk returned for a query.
type RetrievalResult struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	CitationID int     `json:"citation_id,omitempty"`
	Similarity float64 `json:"similarity"`

	// Index is the insertion position of the chunk in the store.
	Index int `json:"index"`
}

// ChunkOutcome records whether one chunk of an ingestion call was stored.
// Err is nil when the chunk was stored.
type ChunkOutcome struct {
	Index int
	Err   error
}

// IngestReport summarises a single AddContent call.
type IngestReport struct {
	// Source is the source identifier passed to AddContent.
	Source string

	// CitationID is the citation shared by every stored chunk, or zero.
	CitationID int

	// CitationErr is set when citation fields were supplied but rejected.
	// Content is still ingested, uncited.
	CitationErr error

	// Chunks is the number of chunks produced by the chunker.
	Chunks int

	// Stored is the number of chunks appended to the store.
	Stored int

	// Skipped is the number of chunks dropped because they could not be embedded.
	Skipped int

	// Outcomes holds one entry per chunk, in chunk order.
	Outcomes []ChunkOutcome
}
