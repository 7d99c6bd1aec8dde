package models

import (
	"fmt"
	"math"
	"strings"

	apperrors "go-design-critic/internal/errors"
)

// Supported provider identifiers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// DefaultDesignType is assumed when the request does not name one
const DefaultDesignType = "email"

// DefaultFocusAreas returns the canonical focus areas applied when the
// request names none
func DefaultFocusAreas() []string {
	return []string{
		"visual_hierarchy",
		"typography",
		"color_scheme",
		"whitespace",
		"cta_effectiveness",
		"readability",
	}
}

// CritiqueRequest represents a request for a design critique.
// Exactly one of ImageURL, ImageBase64 or HTML must be set.
type CritiqueRequest struct {
	ImageURL    string `json:"image_url,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	HTML        string `json:"html,omitempty"`

	// Provider configuration (BYOK: callers may supply their own key)
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	Model    string `json:"model,omitempty"`

	// Critique options
	DesignType   string   `json:"design_type,omitempty"`
	FocusAreas   []string `json:"focus_areas,omitempty"`
	CustomPrompt string   `json:"custom_prompt,omitempty"`
}

// Normalize fills in defaults for fields the caller omitted
func (r *CritiqueRequest) Normalize() {
	if r.Provider == "" {
		r.Provider = ProviderOpenAI
	}
	if r.DesignType == "" {
		r.DesignType = DefaultDesignType
	}
	if len(r.FocusAreas) == 0 {
		r.FocusAreas = DefaultFocusAreas()
	}
}

// Validate checks the request shape: exactly one input mode and a known
// provider identifier
func (r *CritiqueRequest) Validate() error {
	provided := 0
	for _, input := range []string{r.ImageURL, r.ImageBase64, r.HTML} {
		if input != "" {
			provided++
		}
	}
	if provided == 0 {
		return apperrors.NewValidationError("Must provide one of: image_url, image_base64, or html", nil)
	}
	if provided > 1 {
		return apperrors.NewValidationError("Provide only one of: image_url, image_base64, or html", nil)
	}

	switch r.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
	default:
		return apperrors.NewValidationError(
			fmt.Sprintf("Unsupported provider: %s (expected one of: openai, anthropic, google)", r.Provider), nil)
	}
	return nil
}

// ScoreItem is the critique score for a single focus area
type ScoreItem struct {
	Category    string   `json:"category"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// CritiqueResult is the validated critique returned to the caller. It is
// only ever constructed through NewCritiqueResult, so a populated value
// always satisfies the score bounds and required-field checks.
type CritiqueResult struct {
	OverallScore int         `json:"overall_score"`
	Summary      string      `json:"summary"`
	Scores       []ScoreItem `json:"scores"`
	Strengths    []string    `json:"strengths"`
	Improvements []string    `json:"improvements"`
	Provider     string      `json:"provider"`
	Model        string      `json:"model"`
}

// ProviderInfo describes a provider for the listing endpoint
type ProviderInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	HasDefaultKey bool   `json:"has_default_key"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewCritiqueResult builds a CritiqueResult from a parsed provider response,
// enforcing score bounds and required fields. The decoded JSON is expected in
// the generic form produced by encoding/json (numbers as float64).
func NewCritiqueResult(data map[string]interface{}, provider, model string) (*CritiqueResult, error) {
	overall, err := scoreValue(data["overall_score"], "overall_score")
	if err != nil {
		return nil, err
	}
	summary, err := textValue(data["summary"], "summary")
	if err != nil {
		return nil, err
	}

	rawScores, ok := data["scores"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("scores must be a list of score items")
	}
	scores := make([]ScoreItem, 0, len(rawScores))
	for i, raw := range rawScores {
		item, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("scores[%d] must be an object", i)
		}
		category, err := textValue(item["category"], fmt.Sprintf("scores[%d].category", i))
		if err != nil {
			return nil, err
		}
		score, err := scoreValue(item["score"], fmt.Sprintf("scores[%d].score", i))
		if err != nil {
			return nil, err
		}
		feedback, err := textValue(item["feedback"], fmt.Sprintf("scores[%d].feedback", i))
		if err != nil {
			return nil, err
		}
		suggestions, err := optionalStringList(item["suggestions"], fmt.Sprintf("scores[%d].suggestions", i))
		if err != nil {
			return nil, err
		}
		scores = append(scores, ScoreItem{
			Category:    category,
			Score:       score,
			Feedback:    feedback,
			Suggestions: suggestions,
		})
	}

	strengths, err := stringList(data["strengths"], "strengths")
	if err != nil {
		return nil, err
	}
	improvements, err := stringList(data["improvements"], "improvements")
	if err != nil {
		return nil, err
	}

	return &CritiqueResult{
		OverallScore: overall,
		Summary:      summary,
		Scores:       scores,
		Strengths:    strengths,
		Improvements: improvements,
		Provider:     provider,
		Model:        model,
	}, nil
}

func scoreValue(v interface{}, field string) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be an integer between 1 and 10", field)
	}
	score := int(f)
	if score < 1 || score > 10 {
		return 0, fmt.Errorf("%s out of range: %d (must be between 1 and 10)", field, score)
	}
	return score, nil
}

func textValue(v interface{}, field string) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s must be a non-empty string", field)
	}
	return s, nil
}

func stringList(v interface{}, field string) ([]string, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be a list of strings", field)
	}
	list := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", field, i)
		}
		list = append(list, s)
	}
	return list, nil
}

func optionalStringList(v interface{}, field string) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	return stringList(v, field)
}
