package middleware

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// SanitizeConfig contains configuration for input sanitization
type SanitizeConfig struct {
	MaxRunes  int  // Maximum allowed length in runes
	KeepLines bool // Keep newlines and tabs
}

// DefaultSanitizeConfig returns default sanitization configuration
func DefaultSanitizeConfig() SanitizeConfig {
	return SanitizeConfig{
		MaxRunes:  10000,
		KeepLines: true,
	}
}

// SanitizeText cleans free text typed by the user:
// null bytes and control characters are removed and the result is truncated
// to MaxRunes. Surrounding whitespace is preserved.
func SanitizeText(input string, config SanitizeConfig) string {
	var result strings.Builder
	result.Grow(len(input))

	count := 0
	for _, r := range input {
		if r == 0 {
			continue
		}
		if unicode.IsControl(r) && !(config.KeepLines && (r == '\n' || r == '\t' || r == '\r')) {
			continue
		}
		if config.MaxRunes > 0 && count >= config.MaxRunes {
			break
		}
		result.WriteRune(r)
		count++
	}

	return result.String()
}

// SanitizeDescription sanitizes a single-line description
func SanitizeDescription(description string) string {
	config := DefaultSanitizeConfig()
	config.MaxRunes = 2000
	config.KeepLines = false

	return strings.TrimSpace(SanitizeText(description, config))
}

// SanitizeEmail trims, lower-cases and strips control characters
func SanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)
	return removeControlChars(email)
}

// SanitizeName sanitizes a first name
func SanitizeName(name string) string {
	config := DefaultSanitizeConfig()
	config.MaxRunes = 100
	config.KeepLines = false

	return strings.TrimSpace(SanitizeText(name, config))
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename sanitizes a filename by:
// - Removing path components
// - Replacing characters outside [a-zA-Z0-9._-]
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "..", "")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, "._")

	if filename == "" {
		return "export"
	}

	return filename
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
