package domain

// RawPage is the unprocessed response body fetched from a URL.
type RawPage struct {
	// URL is the address the page was fetched from.
	URL string

	// MIMEType is the media type reported by the server, without parameters.
	MIMEType string

	// Content is the response body.
	Content []byte
}

// Page is a fetched page reduced to plain text.
type Page struct {
	URL     string
	Title   string
	Content string
}

// CitationFields returns the citation metadata derived from the page.
func (p Page) CitationFields() *CitationFields {
	return &CitationFields{
		Title: p.Title,
		URL:   p.URL,
	}
}
