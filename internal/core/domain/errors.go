package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCitation indicates a citation without any identifying field.
	// It is the only ingestion error that propagates to callers.
	ErrInvalidCitation = errors.New("citation must contain at least one identifying field")

	// Capability errors. These are recovered locally by the core and
	// never abort a larger operation.

	// ErrEmbeddingFailed indicates the embedding provider could not embed a text.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the vectors already held by the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGenerationFailed indicates the text generator returned an error.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrDiscoveryFailed indicates the research discovery service failed.
	ErrDiscoveryFailed = errors.New("source discovery failed")

	// ErrFetchFailed indicates a page could not be fetched or extracted.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrNoSources indicates discovery returned no usable URLs for a topic.
	ErrNoSources = errors.New("no sources found for topic")

	// Configuration errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDiscoveryUnavailable indicates no research discovery provider is configured.
	ErrDiscoveryUnavailable = errors.New("discovery service unavailable")

	// ErrUnsupportedType indicates an unknown provider or content type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
