package models

import (
	"regexp"
	"strings"
)

var (
	zipCodeRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonZipChars  = regexp.MustCompile(`[^\d-]`)
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidZipCode accepts US zip codes in 5-digit or ZIP+4 form.
func IsValidZipCode(zipCode string) bool {
	return zipCodeRegex.MatchString(strings.TrimSpace(zipCode))
}

// SanitizeZipCode drops everything except digits and hyphens and caps the
// result at 10 characters.
func SanitizeZipCode(zipCode string) string {
	s := nonZipChars.ReplaceAllString(zipCode, "")
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}
