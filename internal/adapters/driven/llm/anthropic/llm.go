// Package anthropic provides an LLM service adapter using Anthropic API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-5-sonnet-latest"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	anthropicVersion = "2023-06-01"

	// defaultMaxTokens bounds a reply when the caller sets no limit.
	// The messages endpoint rejects requests without max_tokens.
	defaultMaxTokens = 4096

	// statusOverloaded is returned while the API sheds load.
	statusOverloaded = 529
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout bounds one HTTP attempt (default: 120s).
	Timeout time.Duration

	// MaxRetries is the number of attempts for rate-limited or overloaded
	// requests (default: 3).
	MaxRetries int

	// RetryDelay is the pause between attempts when the server sends no
	// Retry-After header (default: 1s).
	RetryDelay time.Duration
}

// LLMService writes text through the Anthropic messages endpoint.
type LLMService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	retryDelay time.Duration
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model         string    `json:"model"`
	System        string    `json:"system,omitempty"`
	Messages      []message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// retryableError marks a failed attempt that may succeed later.
type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	return &LLMService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)
	req.Messages = []message{{Role: driven.RoleUser, Content: prompt}}
	req.StopSequences = opts.StopWords
	return s.complete(ctx, req)
}

// Chat sends a conversation. System messages are lifted into the request's
// system field, joined by blank lines.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := s.newRequest(opts.MaxTokens, opts.Temperature)

	var system []string
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		req.Messages = append(req.Messages, message(m))
	}
	req.System = strings.Join(system, "\n\n")

	return s.complete(ctx, req)
}

func (s *LLMService) newRequest(maxTokens int, temperature float64) request {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return request{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: max(temperature, 0),
	}
}

// complete posts req, retrying while the API is rate limited or overloaded.
func (s *LLMService) complete(ctx context.Context, req request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		text, err := s.post(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var retry *retryableError
		if !errors.As(err, &retry) || attempt == s.maxRetries {
			break
		}

		wait := s.retryDelay
		if retry.after > 0 {
			wait = retry.after
		}
		logger.Debug("anthropic: attempt %d failed, retrying in %s: %v", attempt, wait, err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

// post performs one request and extracts the reply text.
func (s *LLMService) post(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	s.authorise(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w: %w", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &retryableError{
			err:   fmt.Errorf("anthropic: %w", domain.ErrRateLimited),
			after: retryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == statusOverloaded:
		return "", &retryableError{
			err:   fmt.Errorf("anthropic: %w: %s", domain.ErrGenerationFailed, apiMessage(raw, resp.StatusCode)),
			after: retryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("anthropic: %w: %s", domain.ErrGenerationFailed, apiMessage(raw, resp.StatusCode))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w: empty reply", domain.ErrGenerationFailed)
	}
	if out.StopReason == "max_tokens" {
		logger.Warn("anthropic: reply from %s truncated at max_tokens", s.model)
	}

	return text.String(), nil
}

func (s *LLMService) authorise(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// apiMessage returns the error message of an API error body, or the raw
// body when it is not in the documented shape.
func apiMessage(raw []byte, status int) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return fmt.Sprintf("%s (status %d)", body.Error.Message, status)
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(raw)))
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(value string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the API key against the models endpoint without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	s.authorise(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anthropic: ping: %s", apiMessage(raw, resp.StatusCode))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
