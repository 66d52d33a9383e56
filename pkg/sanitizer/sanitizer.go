// Package sanitizer normalizes free-text input before validation and
// persistence: booking reasons, room names, building labels.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims surrounding whitespace, collapses internal
// whitespace runs to a single space, and drops control characters.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		// Tab and newline are control characters too; they must fall
		// through to the whitespace collapse, not get dropped.
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			continue
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeReason(reason string) string {
	return TrimAndNormalize(reason)
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeDay canonicalizes day labels so that "monday" and
// " Monday " compare equal as resource-scope keys.
func NormalizeDay(day string) string {
	day = TrimAndNormalize(day)
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + strings.ToLower(day[1:])
}
