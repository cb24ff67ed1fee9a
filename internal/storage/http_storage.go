package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fetchAttempts = 3

	// MaxDocumentSize caps how much of a catalog document is read.
	MaxDocumentSize = 1 << 20
)

// Fetcher reads a catalog document from a location. The meaning of
// location depends on the implementation: a path, a URL, or a blob name.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPFetcher downloads catalog documents over HTTP with a small retry budget.
type HTTPFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithBackoff sets the base delay between attempts. Attempt n waits n*d.
func WithBackoff(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.backoff = d
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// NewHTTPFetcher creates an HTTP fetcher
func NewHTTPFetcher(timeout time.Duration, opts ...HTTPOption) *HTTPFetcher {
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           4,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retries network errors and 5xx responses; 4xx responses fail at once.
func (h *HTTPFetcher) Fetch(ctx context.Context, documentURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch cancelled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		body, retry, err := h.fetchOnce(ctx, documentURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch catalog after %d attempts: %w", fetchAttempts, lastErr)
}

func (h *HTTPFetcher) fetchOnce(ctx context.Context, documentURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain, */*")
	req.Header.Set("User-Agent", "Go-Cover-Resolver/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := readDocument(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return body, false, nil
}

func readDocument(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog document: %w", err)
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("catalog document exceeds %d bytes", MaxDocumentSize)
	}
	return body, nil
}
