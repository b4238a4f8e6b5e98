package errors

import (
	"strings"
	"unicode"
)

// ValidateIdentifier checks a card, node, gate or mesh identifier supplied by a user.
//
// The rules are conservative because identifiers end up in file names,
// cache keys and Graphviz labels:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "identifier too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "identifier %q contains whitespace or control characters", id)
		}
	}
	if strings.ContainsAny(id, `/\`) {
		return New(ErrCodeInvalidInput, "identifier %q cannot contain path separators", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
