package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-design-critic/internal/config"
	apperrors "go-design-critic/internal/errors"
	"go-design-critic/internal/prompt"
	"go-design-critic/pkg/models"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-sonnet-4-20250514"
	anthropicKeyEnv         = "ANTHROPIC_API_KEY"
	anthropicVersion        = "2023-06-01"
)

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicImageBlock struct {
	Type   string               `json:"type"`
	Source anthropicImageSource `json:"source"`
}

type anthropicTextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    string        `json:"role"`
	Content []interface{} `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Anthropic is the Claude Vision critique provider
type Anthropic struct {
	defaultKey     string
	defaultBaseURL string
	client         *http.Client
}

func NewAnthropic(cfg *config.Config, client *http.Client) *Anthropic {
	return &Anthropic{
		defaultKey:     cfg.AnthropicAPIKey,
		defaultBaseURL: cfg.AnthropicBaseURL,
		client:         client,
	}
}

func (a *Anthropic) ID() string           { return models.ProviderAnthropic }
func (a *Anthropic) DisplayName() string  { return "Anthropic Claude" }
func (a *Anthropic) DefaultModel() string { return anthropicDefaultModel }
func (a *Anthropic) HasDefaultKey() bool  { return a.defaultKey != "" }

func (a *Anthropic) Critique(ctx context.Context, imageBase64 string, opts Options) (*models.CritiqueResult, error) {
	key, err := resolveKey(opts.APIKey, a.defaultKey, "Anthropic", anthropicKeyEnv)
	if err != nil {
		return nil, err
	}
	base := resolveBaseURL(opts.BaseURL, a.defaultBaseURL, anthropicDefaultBaseURL)
	model := resolveModel(opts.Model, anthropicDefaultModel)

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: maxCompletionTokens,
		System:    prompt.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: []interface{}{
				anthropicImageBlock{Type: "image", Source: anthropicImageSource{
					Type:      "base64",
					MediaType: "image/jpeg",
					Data:      imageBase64,
				}},
				anthropicTextBlock{Type: "text", Text: prompt.Build(opts.DesignType, opts.FocusAreas, opts.CustomPrompt)},
			}},
		},
	}

	body, err := postJSON(ctx, a.client, strings.TrimSuffix(base, "/")+"/v1/messages", map[string]string{
		"x-api-key":         key,
		"anthropic-version": anthropicVersion,
	}, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewProviderError("failed to decode Anthropic response", err)
	}

	var content strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, apperrors.NewProviderError("no text content in Anthropic response", nil)
	}

	return buildResult(content.String(), a.ID(), model)
}
