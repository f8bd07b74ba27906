package driven

// NormaliserRegistry selects the appropriate normaliser for a fetched page.
// It keeps normalisers ordered by priority and dispatches on MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Get returns the highest-priority normaliser for the MIME type,
	// falling back to a wildcard normaliser when one is registered.
	// Returns domain.ErrUnsupportedType when nothing matches.
	Get(mimeType string) (Normaliser, error)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
