package provider

import (
	"encoding/json"
	"strings"

	apperrors "go-design-critic/internal/errors"
)

const codeFence = "```"

// ParseCritique recovers a JSON object from raw model output. Vision models
// return natural-language completions that may wrap the JSON in prose or
// markdown despite explicit schema instructions, so parsing is attempted in
// stages: a fenced code block interior, the text itself, then the first
// balanced {...} span in the original text.
func ParseCritique(raw string) (map[string]interface{}, error) {
	candidate := raw
	if block, ok := extractFromFence(raw); ok {
		candidate = block
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &data); err == nil {
		return data, nil
	}

	if span, ok := extractObject(raw); ok {
		if err := json.Unmarshal([]byte(span), &data); err == nil {
			return data, nil
		}
	}

	return nil, apperrors.NewParseError("Could not parse JSON from response", raw, nil)
}

// extractFromFence returns the interior of the first fenced code block,
// stripping a leading language tag line if present.
func extractFromFence(raw string) (string, bool) {
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	if idx := strings.Index(block, "\n"); idx != -1 {
		first := strings.TrimSpace(block[:idx])
		if first != "" && !strings.ContainsAny(first, "[{") {
			block = block[idx+1:]
		}
	}
	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}
	return block, true
}

// extractObject finds the first balanced {...} span, tracking string and
// escape state so braces inside JSON strings do not affect the depth count.
func extractObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[start : i+1]), true
			}
		}
	}
	return "", false
}
