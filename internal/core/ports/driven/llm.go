package driven

import "context"

// LLMService writes section prose. Backed by Ollama, OpenAI or Anthropic.
type LLMService interface {
	// Generate answers one prompt sent as a lone user turn.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat answers a conversation. System turns carry the writer's role and
	// citation rules.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName identifies the model.
	ModelName() string

	// Ping checks the provider answers without generating text.
	Ping(ctx context.Context) error

	Close() error
}

// Roles a ChatMessage may carry.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one conversation turn.
type ChatMessage struct {
	Role    string
	Content string
}

// GenerateOptions tunes a Generate call. Zero values leave the provider's
// defaults in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatOptions tunes a Chat call. Zero values leave the provider's defaults
// in place.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
