package driven

import "context"

// SourceDiscoverer finds candidate source URLs for a research topic.
// An empty result is a valid, non-error outcome.
type SourceDiscoverer interface {
	// DiscoverSources returns URLs relevant to topic, in relevance order.
	DiscoverSources(ctx context.Context, topic string) ([]string, error)

	// Name returns the provider name.
	Name() string
}
