package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims input, folds runs of whitespace and control characters
// into single spaces and caps the result at maxLen runes. maxLen <= 0 means no
// cap.
func SanitizeString(input string, maxLen int) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	out := strings.Join(fields, " ")
	if maxLen <= 0 || utf8.RuneCountInString(out) <= maxLen {
		return out
	}
	runes := []rune(out)
	return strings.TrimSpace(string(runes[:maxLen]))
}
