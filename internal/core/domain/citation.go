package domain

// CitationFields is the caller-supplied metadata for a new citation.
// Blank and whitespace-only values are treated as unset.
type CitationFields struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Authors string `json:"authors,omitempty"`
	Year    string `json:"year,omitempty"`
	Journal string `json:"journal,omitempty"`
}

// Citation is a normalised citation record held by the ledger.
// It is immutable once created; chunks refer to it by ID only.
type Citation struct {
	// ID is the dense, 1-based identifier assigned at creation.
	ID int `json:"id"`

	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Authors string `json:"authors,omitempty"`

	// Year defaults to the calendar year of creation when not supplied.
	Year string `json:"year"`

	Journal string `json:"journal,omitempty"`
}

// ReferenceParts returns the renderable components of the citation in
// reference-list order: authors, (year), *title*, journal, link.
// Absent components are skipped.
func (c Citation) ReferenceParts() []string {
	var parts []string
	if c.Authors != "" {
		parts = append(parts, c.Authors)
	}
	if c.Year != "" {
		parts = append(parts, "("+c.Year+")")
	}
	if c.Title != "" {
		parts = append(parts, "*"+c.Title+"*")
	}
	if c.Journal != "" {
		parts = append(parts, c.Journal)
	}
	if c.URL != "" {
		parts = append(parts, "[Available online]("+c.URL+")")
	}
	return parts
}
