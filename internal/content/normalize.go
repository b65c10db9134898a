package content

import (
	"regexp"
	"strings"
)

var (
	strippedRunes = regexp.MustCompile(`[^\w\s?]|_`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize folds text into the canonical comparison form: lowercased,
// newlines treated as spaces, every rune outside word characters, whitespace
// and `?` removed (underscore included), whitespace runs collapsed to a single
// space, and the result trimmed. Idempotent.
func Normalize(input string) string {
	text := strings.ToLower(input)
	text = strings.ReplaceAll(text, "\n", " ")
	text = strippedRunes.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
