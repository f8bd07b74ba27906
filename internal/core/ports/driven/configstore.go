package driven

// ConfigStore holds quill's flat, dot-keyed settings ("llm.model",
// "retrieval.top_k"). Typed getters return zero values for missing keys or
// values of the wrong type.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat returns a numeric value as float64, converting integers.
	// The boolean is false when the key is missing or not numeric, so a
	// stored zero can be told apart from an unset key.
	GetFloat(key string) (float64, bool)

	// GetStringSlice returns list values, skipping non-string elements.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path returns where the settings are persisted, empty for in-memory stores.
	Path() string
}
