// Package validation checks request inputs that name external resources
// before the service spends network or render time on them.
package validation

import (
	"net/url"
	"strings"

	apperrors "go-design-critic/internal/errors"
)

// URLValidator screens image_url inputs ahead of any fetch attempt. By
// default any http(s) host is acceptable; a host allowlist can be set for
// deployments that only serve images from known CDNs.
type URLValidator struct {
	allowedHosts map[string]struct{}
}

// NewURLValidator creates a validator that accepts any http(s) image URL.
func NewURLValidator() *URLValidator {
	return &URLValidator{}
}

// NewURLValidatorWithHosts creates a validator that additionally restricts
// image URLs to the given hosts. Matching ignores case and port.
func NewURLValidatorWithHosts(hosts []string) *URLValidator {
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		allowed[strings.ToLower(h)] = struct{}{}
	}
	return &URLValidator{allowedHosts: allowed}
}

// ValidateImageURL rejects image URLs that could never be fetched: blank
// input, unparseable URLs, non-http(s) schemes, missing hosts, and URLs
// carrying embedded credentials. Every rejection is a client input error.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("image_url cannot be empty", nil)
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("image_url is not a valid URL", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewValidationError("image_url must use http or https", nil)
	}

	if parsed.Host == "" {
		return apperrors.NewValidationError("image_url must include a host", nil)
	}

	if parsed.User != nil {
		return apperrors.NewValidationError("image_url must not embed credentials", nil)
	}

	if len(v.allowedHosts) > 0 {
		if _, ok := v.allowedHosts[strings.ToLower(parsed.Hostname())]; !ok {
			return apperrors.NewValidationError("image_url host is not allowed", nil)
		}
	}

	return nil
}
