package driving

import "github.com/custodia-labs/quill/internal/core/domain"

// CitationService assigns citation ids and renders references.
type CitationService interface {
	// AddCitation stores normalised citation metadata and returns its id.
	// Returns domain.ErrInvalidCitation when no identifying field is set.
	AddCitation(fields domain.CitationFields) (int, error)

	// GetReferences renders every citation as a markdown reference list.
	// Returns an empty string when there are no citations.
	GetReferences() string

	// GetCitation returns the citation with the given id.
	GetCitation(id int) (domain.Citation, bool)

	// Len returns the number of stored citations.
	Len() int
}
