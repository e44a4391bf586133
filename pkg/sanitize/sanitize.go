// Package sanitize strips markup from user supplied free text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 4

// Text removes every HTML element from s and returns trimmed plain text.
// Entities are decoded so "a & b" survives unchanged, and decoded output is
// sanitized again so encoded markup cannot come back as live tags.
func Text(s string) string {
	if s == "" {
		return ""
	}
	current := s
	for i := 0; i < maxPasses; i++ {
		cleaned := strict.Sanitize(current)
		decoded := html.UnescapeString(cleaned)
		if decoded == current {
			return strings.TrimSpace(decoded)
		}
		current = decoded
	}
	return strings.TrimSpace(strict.Sanitize(current))
}

// Fields sanitizes each pointer in place.
func Fields(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = Text(*v)
		}
	}
}
