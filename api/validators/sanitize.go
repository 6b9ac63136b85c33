package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace, drops control characters (spreadsheet
// imports carry strays), and truncates to maxLen bytes when maxLen > 0.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	trimmed := strings.TrimSpace(cleaned)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
