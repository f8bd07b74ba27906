package driving

import "context"

// SectionService writes a single article section from retrieved context.
type SectionService interface {
	// GenerateSection returns generated text for the section, or a
	// placeholder when nothing relevant is stored or generation fails.
	GenerateSection(ctx context.Context, sectionName, topic string) string
}
