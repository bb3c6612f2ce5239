package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateID checks a path or query identifier (uuid or similar).
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidatePhotoURL accepts an empty value or an absolute http(s) URL.
func ValidatePhotoURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid photo URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid photo URL scheme: %q (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("photo URL must include a host")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// SanitizePtr applies SanitizeString to an optional value.
func SanitizePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := SanitizeString(*p)
	return &v
}
