package domain

import "time"

// DefaultSections are the section names of a research article, in order.
func DefaultSections() []string {
	return []string{"Abstract", "Introduction", "Methods", "Results", "Discussion", "Conclusion"}
}

// Section is the generated text of one named article section.
type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Article is a generated research article.
type Article struct {
	// ID is the unique identifier for the article.
	ID string `json:"id"`

	// Topic is the research topic the article was written about.
	Topic string `json:"topic"`

	// Sections holds the generated sections in presentation order.
	Sections []Section `json:"sections"`

	// References is the rendered reference list, empty when uncited.
	References string `json:"references,omitempty"`

	// Sources lists the distinct source identifiers that contributed chunks.
	Sources []string `json:"sources,omitempty"`

	// CreatedAt is when generation finished.
	CreatedAt time.Time `json:"created_at"`
}

// ArticleSummary is a lightweight listing entry for a stored article.
type ArticleSummary struct {
	ID        string
	Topic     string
	Sections  int
	Sources   int
	CreatedAt time.Time
}

// Summary returns the listing entry for the article.
func (a *Article) Summary() ArticleSummary {
	return ArticleSummary{
		ID:        a.ID,
		Topic:     a.Topic,
		Sections:  len(a.Sections),
		Sources:   len(a.Sources),
		CreatedAt: a.CreatedAt,
	}
}

// Stage identifies a phase of article generation.
type Stage string

// Generation stages, in execution order.
const (
	StageResearch   Stage = "research"
	StageProcessing Stage = "processing"
	StageWriting    Stage = "writing"
	StageDone       Stage = "done"
)

// Description returns a human-readable status line for the stage.
func (s Stage) Description() string {
	switch s {
	case StageResearch:
		return "Gathering sources"
	case StageProcessing:
		return "Processing content"
	case StageWriting:
		return "Writing article"
	case StageDone:
		return "Done"
	default:
		return unknownDescription
	}
}

// Progress reports how far article generation has advanced.
type Progress struct {
	Stage Stage

	// Fraction is overall completion in [0, 1].
	Fraction float64

	// Message describes the current step.
	Message string
}

// ProgressFunc receives progress updates. It may be nil.
type ProgressFunc func(Progress)
