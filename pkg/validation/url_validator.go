package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	apperrors "go-cover-resolver/internal/errors"
)

// URLValidator checks catalog entries before they are served to callers.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts any absolute http or https URL.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateImageURL validates a single catalog image URL.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewConfigurationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewConfigurationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewConfigurationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewConfigurationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewConfigurationError("URL host not allowed", nil)
	}

	return nil
}

// ValidateCatalog validates every entry and reports the first bad position.
func (v *URLValidator) ValidateCatalog(urls []string) error {
	if len(urls) == 0 {
		return apperrors.NewConfigurationError("catalog must contain at least one image", nil)
	}
	for i, u := range urls {
		if err := v.ValidateImageURL(u); err != nil {
			return fmt.Errorf("catalog entry %d (%q): %w", i, u, err)
		}
	}
	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, strings.ToLower(scheme))
}

// isHostAllowed returns true if no host restrictions are set.
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	return slices.Contains(v.allowedHosts, host)
}
