package resolve

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`<(.*?)>`)

// Tokens that carry platform syntax rather than a query: user mentions,
// channel mentions, the two custom-emoji marker forms, links, and the
// reserved init literal.
var skipPrefixes = []string{"@", "#", "a:", ":", "http"}

const reservedToken = "init"

// Extraction is the outcome of scanning one message. Raw holds every
// bracketed token in source order; Queries holds the tokens left after skip
// filtering. The query-count limit is checked against Raw, never Queries.
type Extraction struct {
	Raw     []string
	Queries []string
}

// Extract scans raw message text for `<...>` tokens. Pairs are non-nested and
// non-overlapping: the first closing bracket terminates a token.
func Extract(rawText string) Extraction {
	var extraction Extraction
	for _, group := range tokenPattern.FindAllStringSubmatch(rawText, -1) {
		token := group[1]
		extraction.Raw = append(extraction.Raw, token)
		if skipped(token) {
			continue
		}
		extraction.Queries = append(extraction.Queries, token)
	}
	return extraction
}

func skipped(token string) bool {
	if token == reservedToken {
		return true
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
