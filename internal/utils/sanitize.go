package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-\s]+`)

// CleanFilename strips the extension and separators from an uploaded
// filename so it can serve as a fallback title.
func CleanFilename(filename string) string {
	ext := filepath.Ext(filename)
	clean := strings.TrimSuffix(filename, ext)
	clean = strings.ReplaceAll(clean, "_", " ")
	clean = strings.ReplaceAll(clean, "-", " ")
	return strings.TrimSpace(clean)
}

// Sanitize makes text safe for use inside a storage key.
func Sanitize(text, def string) string {
	if text == "" {
		return def
	}
	clean := unsafeChars.ReplaceAllString(text, "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return def
	}
	return strings.ReplaceAll(clean, " ", "_")
}
