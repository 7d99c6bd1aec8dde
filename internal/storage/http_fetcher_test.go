package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Valid minimal PNG data for 1x1 transparent pixel
var minimalPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, // bit depth, color type, etc.
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41, // IDAT chunk start
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00, // compressed data
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, // compressed data end
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, // IEND chunk
	0x42, 0x60, 0x82,
}

func TestHTTPImageFetcher_FetchImage(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectError   bool
		errorContains string
	}{
		{
			name:        "Success returns body bytes",
			status:      200,
			expectError: false,
		},
		{
			name:          "Client error - 404",
			status:        404,
			expectError:   true,
			errorContains: "status code 404",
		},
		{
			name:          "Server error - 503",
			status:        503,
			expectError:   true,
			errorContains: "status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requestCount++
				if tt.status == 200 {
					w.Header().Set("Content-Type", "image/png")
					w.Write(minimalPNG)
					return
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(fmt.Sprintf("Error %d", tt.status)))
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(5 * time.Second)
			data, err := fetcher.FetchImage(context.Background(), server.URL)

			// Fetches are fail-fast: exactly one attempt regardless of outcome
			if requestCount != 1 {
				t.Errorf("Expected exactly 1 request, got %d", requestCount)
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
			if !bytes.Equal(data, minimalPNG) {
				t.Errorf("Expected fetched bytes to match served image, got %d bytes", len(data))
			}
		})
	}
}

func TestHTTPImageFetcher_NoRetryOnServerError(t *testing.T) {
	// A server that would succeed on a second attempt must never see one
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(minimalPNG)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5 * time.Second)
	_, err := fetcher.FetchImage(context.Background(), server.URL)

	if err == nil {
		t.Error("Expected error from 500 response, got none")
	}
	if requestCount != 1 {
		t.Errorf("Expected exactly 1 request, got %d", requestCount)
	}
}

func TestHTTPImageFetcher_RequestHeaders(t *testing.T) {
	var accept, userAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		userAgent = r.Header.Get("User-Agent")
		w.Write(minimalPNG)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5 * time.Second)
	if _, err := fetcher.FetchImage(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected no error, got: %s", err.Error())
	}

	if !strings.Contains(accept, "image/") {
		t.Errorf("Expected Accept header to request images, got: %s", accept)
	}
	if userAgent != "Design-Critic/0.1" {
		t.Errorf("Expected User-Agent 'Design-Critic/0.1', got: %s", userAgent)
	}
}

func TestHTTPImageFetcher_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/actual", http.StatusFound)
	})
	mux.HandleFunc("/actual", func(w http.ResponseWriter, r *http.Request) {
		w.Write(minimalPNG)
	})

	fetcher := NewHTTPImageFetcher(5 * time.Second)
	data, err := fetcher.FetchImage(context.Background(), server.URL+"/image")

	if err != nil {
		t.Fatalf("Expected redirect to be followed, got error: %s", err.Error())
	}
	if !bytes.Equal(data, minimalPNG) {
		t.Errorf("Expected image bytes from redirect target, got %d bytes", len(data))
	}
}

func TestHTTPImageFetcher_RejectsOversizedImage(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 1024)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5 * time.Second).(*HTTPImageFetcher)
	fetcher.maxBytes = 64

	_, err := fetcher.FetchImage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for oversized image, got none")
	}
	if !strings.Contains(err.Error(), "byte limit") {
		t.Errorf("Expected size limit error, got: %s", err.Error())
	}
}

func TestHTTPImageFetcher_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write(minimalPNG)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := fetcher.FetchImage(ctx, server.URL)
	duration := time.Since(start)

	if err == nil {
		t.Error("Expected error from cancelled context, got none")
	}
	if duration > time.Second {
		t.Errorf("Expected fetch to abort promptly on cancellation, took %v", duration)
	}
}
