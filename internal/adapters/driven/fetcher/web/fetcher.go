// Package web fetches source pages over HTTP and reduces them to text.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
	"github.com/custodia-labs/quill/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = time.Second
	DefaultRequestsPerSecond = 1.0
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxBodySize caps the bytes read from a single response.
	maxBodySize = 20 << 20
)

// errNoContent is returned when a page yields no text.
var errNoContent = errors.New("no content found")

// Config holds configuration for the web fetcher.
type Config struct {
	// Timeout bounds a single request (default: 10s).
	Timeout time.Duration

	// MaxRetries is the number of attempts per URL (default: 3).
	MaxRetries int

	// RetryDelay is the pause between attempts (default: 1s).
	RetryDelay time.Duration

	// RequestsPerSecond throttles requests across all URLs (default: 1).
	RequestsPerSecond float64

	// UserAgent is sent with every request.
	UserAgent string
}

// ConfigFromSettings builds a fetcher configuration from application settings.
func ConfigFromSettings(settings domain.FetchSettings) Config {
	return Config{
		Timeout:           settings.Timeout,
		MaxRetries:        settings.MaxRetries,
		RetryDelay:        settings.RetryDelay,
		RequestsPerSecond: settings.RequestsPerSecond,
	}
}

// Fetcher downloads pages and dispatches them to a normaliser by MIME type.
type Fetcher struct {
	client     *http.Client
	registry   driven.NormaliserRegistry
	limiter    *RateLimiter
	maxRetries int
	retryDelay time.Duration
	userAgent  string
}

// New creates a web fetcher using registry to extract page text.
func New(registry driven.NormaliserRegistry, cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		registry:   registry,
		limiter:    NewRateLimiter(cfg.RequestsPerSecond),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		userAgent:  cfg.UserAgent,
	}
}

// Fetch retrieves url and extracts its title and text.
// Transient failures are retried; unsupported content types are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.Page, error) {
	logger.Debug("fetching %s", url)

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		page, err := f.fetchOnce(ctx, url)
		if err == nil {
			logger.Info("fetched %s (%d chars)", url, len(page.Content))
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, url, ctx.Err())
		}
		if errors.Is(err, domain.ErrUnsupportedType) {
			break
		}

		logger.Warn("attempt %d failed for %s: %v", attempt, url, err)
		if attempt < f.maxRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, url, ctx.Err())
			case <-time.After(f.retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*domain.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if err := f.limiter.Wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.RecordRateLimitError(req.URL.Host, retryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	mimeType := mediaType(resp.Header.Get("Content-Type"), body)
	normaliser, err := f.registry.Get(mimeType)
	if err != nil {
		return nil, err
	}

	page, err := normaliser.Normalise(ctx, &domain.RawPage{
		URL:      url,
		MIMEType: mimeType,
		Content:  body,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, errNoContent
	}
	page.URL = url
	return page, nil
}

// mediaType returns the response MIME type without parameters,
// sniffing the body when the header is missing or malformed.
func mediaType(header string, body []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
