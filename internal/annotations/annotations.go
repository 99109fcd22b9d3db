// Package annotations loads overlay payloads from remote endpoints and from
// local files.
package annotations

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/voxel51/player51/internal/overlay"
)

// maxPayloadBytes caps how much annotation JSON a single fetch will read.
const maxPayloadBytes = 64 << 20

// FetchError represents a non-2xx response from an annotation endpoint.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("annotation fetch failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and network errors.
// Client errors (4xx) are considered permanent.
func (e *FetchError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Fetcher resolves an overlay locator to a parsed payload.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*overlay.Payload, error)
}

// HTTPFetcher retrieves annotation JSON over HTTP. Locators beginning with
// file:// or a bare path are delegated to the file loader so one fetcher can
// serve both kinds.
type HTTPFetcher struct {
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPFetcher(token string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (*overlay.Payload, error) {
	if !strings.HasPrefix(locator, "http://") && !strings.HasPrefix(locator, "https://") {
		return LoadFile(strings.TrimPrefix(locator, "file://"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Player51-Request-Id", generateRequestID())
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	if f.logger != nil {
		f.logger.Info("fetching annotations", "url", locator)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	p, err := overlay.ParsePayload(data)
	if err != nil {
		return nil, err
	}

	if f.logger != nil {
		f.logger.Info("annotations fetched",
			"url", locator,
			"body_bytes", len(data),
			"objects", len(p.Objects),
			"frames", len(p.Frames),
		)
	}
	return p, nil
}

// LoadFile reads and parses an annotation file from disk.
func LoadFile(path string) (*overlay.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotation file: %w", err)
	}
	return overlay.ParsePayload(data)
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
