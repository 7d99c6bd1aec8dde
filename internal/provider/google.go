package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go-design-critic/internal/config"
	apperrors "go-design-critic/internal/errors"
	"go-design-critic/internal/prompt"
	"go-design-critic/pkg/models"
)

const (
	googleDefaultBaseURL = "https://generativelanguage.googleapis.com"
	googleDefaultModel   = "gemini-1.5-flash"
	googleKeyEnv         = "GOOGLE_API_KEY"
)

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Google is the Gemini Vision critique provider
type Google struct {
	defaultKey string
	client     *http.Client
}

func NewGoogle(cfg *config.Config, client *http.Client) *Google {
	return &Google{
		defaultKey: cfg.GoogleAPIKey,
		client:     client,
	}
}

func (g *Google) ID() string           { return models.ProviderGoogle }
func (g *Google) DisplayName() string  { return "Google Gemini" }
func (g *Google) DefaultModel() string { return googleDefaultModel }
func (g *Google) HasDefaultKey() bool  { return g.defaultKey != "" }

func (g *Google) Critique(ctx context.Context, imageBase64 string, opts Options) (*models.CritiqueResult, error) {
	key, err := resolveKey(opts.APIKey, g.defaultKey, "Google", googleKeyEnv)
	if err != nil {
		return nil, err
	}
	base := resolveBaseURL(opts.BaseURL, "", googleDefaultBaseURL)
	model := resolveModel(opts.Model, googleDefaultModel)

	// Gemini has no separate system role; the system instruction is
	// prepended to the critique prompt.
	fullPrompt := prompt.SystemPrompt + "\n\n" + prompt.Build(opts.DesignType, opts.FocusAreas, opts.CustomPrompt)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{
				{Text: fullPrompt},
				{InlineData: &geminiInlineData{MimeType: "image/jpeg", Data: imageBase64}},
			}},
		},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "application/json"},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(base, "/"), model, url.QueryEscape(key))

	body, err := postJSON(ctx, g.client, endpoint, nil, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewProviderError("failed to decode Gemini response", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, apperrors.NewProviderError("no candidates in Gemini response", nil)
	}

	var content strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}
	if content.Len() == 0 {
		return nil, apperrors.NewProviderError("no text content in Gemini response", nil)
	}

	return buildResult(content.String(), g.ID(), model)
}
