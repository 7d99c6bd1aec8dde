// Package provider implements the critique capability once per AI vendor.
// Every variant resolves its own credential, shapes the vendor-specific
// request, and parses the free-form text response into a validated
// CritiqueResult.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-design-critic/internal/config"
	apperrors "go-design-critic/internal/errors"
	"go-design-critic/pkg/models"
)

// maxCompletionTokens caps the critique completion length on every provider
const maxCompletionTokens = 2000

// Options carries the per-request critique parameters shared by all variants
type Options struct {
	DesignType   string
	FocusAreas   []string
	CustomPrompt string

	// BYOK credential and optional overrides
	APIKey  string
	BaseURL string
	Model   string
}

// Critic generates a design critique from an optimized JPEG image
type Critic interface {
	ID() string
	DisplayName() string
	DefaultModel() string
	HasDefaultKey() bool
	Critique(ctx context.Context, imageBase64 string, opts Options) (*models.CritiqueResult, error)
}

// Registry maps provider identifiers to their implementations
type Registry struct {
	critics map[string]Critic
	order   []string
}

// NewRegistry builds the registry with all supported providers sharing one
// HTTP client
func NewRegistry(cfg *config.Config) *Registry {
	client := &http.Client{Transport: newTransport()}
	r := &Registry{critics: make(map[string]Critic)}
	for _, c := range []Critic{
		NewOpenAI(cfg, client),
		NewAnthropic(cfg, client),
		NewGoogle(cfg, client),
	} {
		r.critics[c.ID()] = c
		r.order = append(r.order, c.ID())
	}
	return r
}

// Lookup returns the provider for the given identifier. The identifier is
// validated at the request boundary, so a miss here is a wiring bug, not a
// client error.
func (r *Registry) Lookup(id string) (Critic, error) {
	c, ok := r.critics[id]
	if !ok {
		return nil, apperrors.NewInternalError(fmt.Sprintf("no provider registered for %q", id), nil)
	}
	return c, nil
}

// List returns provider metadata in registration order
func (r *Registry) List() []models.ProviderInfo {
	infos := make([]models.ProviderInfo, 0, len(r.order))
	for _, id := range r.order {
		c := r.critics[id]
		infos = append(infos, models.ProviderInfo{
			ID:            c.ID(),
			Name:          c.DisplayName(),
			HasDefaultKey: c.HasDefaultKey(),
		})
	}
	return infos
}

func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// resolveKey applies the credential resolution order: caller-supplied key,
// then the configured default, else a credential error naming the
// environment variable that would resolve it. No network call is made when
// resolution fails.
func resolveKey(requestKey, defaultKey, providerName, envVar string) (string, error) {
	if requestKey != "" {
		return requestKey, nil
	}
	if defaultKey != "" {
		return defaultKey, nil
	}
	return "", apperrors.NewCredentialError(
		fmt.Sprintf("%s API key required. Provide via api_key or %s env var.", providerName, envVar), nil)
}

func resolveBaseURL(override, configured, fallback string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func resolveModel(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// postJSON sends a JSON payload and returns the response body, failing on
// transport errors and non-200 statuses
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to marshal provider request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewProviderError("failed to create provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("provider request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProviderError("failed to read provider response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewProviderError(
			fmt.Sprintf("provider API error (status %d): %s", resp.StatusCode, apperrors.Excerpt(string(body), 200)), nil)
	}
	return body, nil
}

// buildResult parses raw model output and constructs the validated result.
// Structural failures carry a bounded excerpt of the offending text.
func buildResult(raw, providerID, model string) (*models.CritiqueResult, error) {
	data, err := ParseCritique(raw)
	if err != nil {
		return nil, err
	}
	result, err := models.NewCritiqueResult(data, providerID, model)
	if err != nil {
		return nil, apperrors.NewParseError("Invalid critique structure in provider response", raw, err)
	}
	return result, nil
}
