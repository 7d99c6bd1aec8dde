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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o"
	openAIKeyEnv         = "OPENAI_API_KEY"
)

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageURLRef struct {
	URL string `json:"url"`
}

type imageContent struct {
	Type     string      `json:"type"`
	ImageURL imageURLRef `json:"image_url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAI is the GPT-4 Vision critique provider
type OpenAI struct {
	defaultKey     string
	defaultBaseURL string
	client         *http.Client
}

func NewOpenAI(cfg *config.Config, client *http.Client) *OpenAI {
	return &OpenAI{
		defaultKey:     cfg.OpenAIAPIKey,
		defaultBaseURL: cfg.OpenAIBaseURL,
		client:         client,
	}
}

func (o *OpenAI) ID() string           { return models.ProviderOpenAI }
func (o *OpenAI) DisplayName() string  { return "OpenAI GPT-4o" }
func (o *OpenAI) DefaultModel() string { return openAIDefaultModel }
func (o *OpenAI) HasDefaultKey() bool  { return o.defaultKey != "" }

func (o *OpenAI) Critique(ctx context.Context, imageBase64 string, opts Options) (*models.CritiqueResult, error) {
	key, err := resolveKey(opts.APIKey, o.defaultKey, "OpenAI", openAIKeyEnv)
	if err != nil {
		return nil, err
	}
	base := resolveBaseURL(opts.BaseURL, o.defaultBaseURL, openAIDefaultBaseURL)
	model := resolveModel(opts.Model, openAIDefaultModel)

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemPrompt},
			{Role: "user", Content: []interface{}{
				textContent{Type: "text", Text: prompt.Build(opts.DesignType, opts.FocusAreas, opts.CustomPrompt)},
				imageContent{Type: "image_url", ImageURL: imageURLRef{URL: "data:image/jpeg;base64," + imageBase64}},
			}},
		},
		MaxTokens:      maxCompletionTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := postJSON(ctx, o.client, strings.TrimSuffix(base, "/")+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + key,
	}, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewProviderError("failed to decode OpenAI response", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, apperrors.NewProviderError("no choices in OpenAI response", nil)
	}

	return buildResult(parsed.Choices[0].Message.Content, o.ID(), model)
}
