package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driving"
)

// Ensure CitationLedger implements the interface.
var _ driving.CitationService = (*CitationLedger)(nil)

// referencesHeading opens a rendered reference list.
const referencesHeading = "## References\n\n"

// CitationLedger assigns dense, 1-based citation ids and renders references.
// Citations are immutable once added.
type CitationLedger struct {
	mu        sync.Mutex
	citations []domain.Citation
	now       func() time.Time
}

// NewCitationLedger creates an empty ledger.
func NewCitationLedger() *CitationLedger {
	return &CitationLedger{now: time.Now}
}

// AddCitation normalises fields and stores them under the next id.
// A rejected call does not consume an id.
func (l *CitationLedger) AddCitation(fields domain.CitationFields) (int, error) {
	c := domain.Citation{
		Title:   strings.TrimSpace(fields.Title),
		URL:     strings.TrimSpace(fields.URL),
		Authors: strings.TrimSpace(fields.Authors),
		Year:    strings.TrimSpace(fields.Year),
		Journal: strings.TrimSpace(fields.Journal),
	}

	if c.Title == "" && c.URL == "" && c.Authors == "" && c.Journal == "" {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrInvalidCitation)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c.Year == "" {
		c.Year = strconv.Itoa(l.now().Year())
	}

	c.ID = len(l.citations) + 1
	l.citations = append(l.citations, c)

	return c.ID, nil
}

// GetCitation returns the citation with the given id.
func (l *CitationLedger) GetCitation(id int) (domain.Citation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 1 || id > len(l.citations) {
		return domain.Citation{}, false
	}
	return l.citations[id-1], true
}

// Len returns the number of stored citations.
func (l *CitationLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.citations)
}

// GetReferences renders the ledger as a markdown reference list in id order.
func (l *CitationLedger) GetReferences() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.citations) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(referencesHeading)

	for _, c := range l.citations {
		parts := c.ReferenceParts()
		if len(parts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n\n", c.ID, strings.Join(parts, ". "))
	}

	return b.String()
}
