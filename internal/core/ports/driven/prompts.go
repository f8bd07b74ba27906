package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSectionSystem frames the generator as an academic writer.
	// This prompt has no format placeholders.
	PromptSectionSystem = "section_system"

	// PromptSection asks for one article section.
	// The template expects %[1]s (section), %[2]s (topic) and %[3]s (context).
	PromptSection = "section"

	// PromptResearch asks the discovery service for source URLs.
	// The template expects a %s placeholder for the topic.
	PromptResearch = "research"

	// PromptResearchSystem frames the discovery model as a research assistant.
	PromptResearchSystem = "research_system"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
