package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxProjectNameLength = 128

var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateProjectName checks a project identifier before it is used as a
// file name, cache key or URL path segment.
//
// Rules:
//   - Not empty, at most 128 characters
//   - No control characters
//   - No path traversal sequences or separators
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "project name cannot be empty")
	}
	if len(name) > maxProjectNameLength {
		return New(ErrCodeInvalidInput, "project name too long (max %d characters)", maxProjectNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project name contains invalid control characters")
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidInput, "project name cannot contain path components: %q", name)
	}
	if !projectNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid project name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
