package search

import (
	"strings"

	"github.com/kitobxon/kitobxon/pkg/identifiers"
)

const maxQueryLength = 100

// SanitizeFTSQuery quotes user input so FTS5 treats it as a literal phrase
// rather than query syntax (AND, OR, NOT, NEAR, column filters and so on).
func SanitizeFTSQuery(input string) string {
	input = strings.TrimSpace(input)
	if runes := []rune(input); len(runes) > maxQueryLength {
		input = strings.TrimSpace(string(runes[:maxQueryLength]))
	}
	if input == "" {
		return ""
	}

	input = strings.ReplaceAll(input, `"`, `""`)
	return `"` + input + `"`
}

// BuildPrefixQuery builds a typeahead query: the sanitized phrase with a
// trailing prefix wildcard, e.g. "user query"*.
func BuildPrefixQuery(userInput string) string {
	sanitized := SanitizeFTSQuery(userInput)
	if sanitized == "" {
		return ""
	}
	return sanitized + "*"
}

// isbnCandidates returns the canonical forms query could be stored under
// when it is a valid ISBN, and nil otherwise. An ISBN-10 also yields its
// ISBN-13 equivalent.
func isbnCandidates(query string) []string {
	isbn, kind := identifiers.ParseISBN(query)
	switch kind {
	case identifiers.KindISBN13:
		return []string{isbn}
	case identifiers.KindISBN10:
		if isbn13, ok := identifiers.ISBN10To13(isbn); ok {
			return []string{isbn, isbn13}
		}
		return []string{isbn}
	}
	return nil
}
