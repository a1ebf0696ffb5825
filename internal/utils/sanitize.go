package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The email provider may render payload values as HTML, so every free-text
// field is stripped of markup before it leaves this service.
var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeText removes all HTML/script content from a free-text value and
// collapses the surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(sanitizePolicy.Sanitize(s))
}
