// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided to generate an article:
//
//   - EmbeddingService: Maps text to a fixed-length vector
//   - LLMService: Generates section text from a prompt
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SourceDiscoverer: Finds candidate URLs for a topic. Without it, only
//     locally supplied content can be used.
//   - PageFetcher: Fetches and extracts page text.
//   - ArticleStore: Keeps generated articles. Without it, articles are only
//     written to stdout or a file.
//   - PromptStore: Customisable prompt templates. Without it, embedded defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
