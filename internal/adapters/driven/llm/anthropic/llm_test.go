package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{
		APIKey:     "ak",
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "ak", BaseURL: "http://example.test/"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, "http://example.test", svc.baseURL)
	assert.Equal(t, DefaultMaxRetries, svc.maxRetries)
	assert.Equal(t, DefaultRetryDelay, svc.retryDelay)
}

func TestLLMService_Chat_SplitsSystemPrompt(t *testing.T) {
	var got request
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "Part one. "}, {"type": "text", "text": "Part two."}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You are an expert academic writer."},
		{Role: driven.RoleUser, Content: "Write the Abstract."},
	}, driven.ChatOptions{Temperature: 0.7})

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", out)
	assert.Equal(t, "You are an expert academic writer.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
}

func TestLLMService_Chat_JoinsSystemMessages(t *testing.T) {
	var got request
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "First."},
		{Role: driven.RoleSystem, Content: "Second."},
		{Role: driven.RoleUser, Content: "Go."},
	}, driven.ChatOptions{MaxTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, "First.\n\nSecond.", got.System)
	assert.Equal(t, 200, got.MaxTokens)
}

func TestLLMService_Generate_StopSequences(t *testing.T) {
	var got request
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{StopWords: []string{"END"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"END"}, got.StopSequences)
	assert.Empty(t, got.System)
}

func TestLLMService_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "finally"}]}`))
	})

	out, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "finally", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLLMService_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, int32(DefaultMaxRetries), calls.Load())
}

func TestLLMService_RetriesOverloaded(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(statusOverloaded)
			_, _ = w.Write([]byte(`{"error": {"type": "overloaded_error", "message": "Overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	})

	out, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLLMService_APIErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad model"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "bad model")
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMService_EmptyReply(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": []}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestLLMService_CancelledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "ak", BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = svc.Generate(ctx, "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMService_Ping(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("x-api-key") != "ak" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))

	svc.apiKey = "wrong"
	assert.Error(t, svc.Ping(context.Background()))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("soon"))
	assert.Equal(t, time.Duration(0), retryAfter("-1"))
}
