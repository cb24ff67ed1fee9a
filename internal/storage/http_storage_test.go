package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const catalogYAML = "images:\n  - https://example.com/a.jpg\n"

func TestHTTPFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
		{
			name:          "Unexpected 204 - no retry",
			responses:     []int{204},
			expectRetries: 1,
			expectError:   true,
			errorContains: "unexpected status code 204",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&requestCount, 1)) - 1
				if n >= len(tt.responses) {
					w.WriteHeader(500)
					w.Write([]byte("Unexpected request"))
					return
				}

				statusCode := tt.responses[n]
				if statusCode == 200 {
					w.Header().Set("Content-Type", "application/yaml")
					w.Write([]byte(catalogYAML))
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			fetcher := NewHTTPFetcher(5*time.Second, WithBackoff(time.Millisecond))
			body, err := fetcher.Fetch(context.Background(), server.URL)

			if got := int(atomic.LoadInt32(&requestCount)); got != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, got)
			}

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %s", err.Error())
			}
			if string(body) != catalogYAML {
				t.Errorf("Unexpected body: %q", body)
			}
		})
	}
}

func TestHTTPFetcher_NetworkError_Retry(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) < 3 {
			// Simulate network error by closing connection
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Write([]byte(catalogYAML))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, WithBackoff(50*time.Millisecond))

	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}
	if got := atomic.LoadInt32(&requestCount); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
	// 1*50ms + 2*50ms of backoff
	if duration < 150*time.Millisecond {
		t.Errorf("Expected at least 150ms due to backoff, took %v", duration)
	}
}

func TestHTTPFetcher_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPFetcher(5*time.Second, WithBackoff(10*time.Second))
	_, err := fetcher.Fetch(ctx, server.URL)
	if err == nil || !strings.Contains(err.Error(), "fetch cancelled") {
		t.Errorf("Expected cancellation error, got: %v", err)
	}
}

func TestHTTPFetcher_DocumentTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", MaxDocumentSize+1)))
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Expected size error, got: %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	body, err := NewFileFetcher().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(body) != catalogYAML {
		t.Errorf("Unexpected body: %q", body)
	}

	if _, err := NewFileFetcher().Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSplitBlobLocation(t *testing.T) {
	tests := []struct {
		location  string
		container string
		blob      string
		wantErr   bool
	}{
		{"covers/catalog.yaml", "covers", "catalog.yaml", false},
		{"/covers/2025/catalog.yaml", "covers", "2025/catalog.yaml", false},
		{"covers", "", "", true},
		{"covers/", "", "", true},
		{"/catalog.yaml", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			container, blob, err := splitBlobLocation(tt.location)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.location)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if container != tt.container || blob != tt.blob {
				t.Errorf("Got (%q, %q), want (%q, %q)", container, blob, tt.container, tt.blob)
			}
		})
	}
}

func TestNewAzureBlobFetcher_InvalidKey(t *testing.T) {
	if _, err := NewAzureBlobFetcher("coversaccount", "not base64!"); err == nil {
		t.Error("Expected error for a key that is not base64")
	}
}
