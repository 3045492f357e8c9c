// Package identifiers parses and validates book identifiers.
package identifiers

import (
	"strings"
)

// Kind is the ISBN format of a parsed identifier.
type Kind string

const (
	KindISBN10  Kind = "isbn10"
	KindISBN13  Kind = "isbn13"
	KindUnknown Kind = ""
)

// ParseISBN accepts an ISBN-10 or ISBN-13 with optional hyphens, spaces and
// an "ISBN" prefix, and returns it in canonical form: digits only, with an
// uppercase X check digit for ISBN-10. Input with any other characters or a
// bad check digit yields KindUnknown.
func ParseISBN(value string) (string, Kind) {
	value = strings.ToUpper(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "ISBN")
	value = strings.TrimPrefix(value, ":")

	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r == 'X':
			b.WriteRune(r)
		case r == '-', r == ' ':
		default:
			return "", KindUnknown
		}
	}
	isbn := b.String()

	switch {
	case ValidISBN13(isbn):
		return isbn, KindISBN13
	case ValidISBN10(isbn):
		return isbn, KindISBN10
	}
	return "", KindUnknown
}

// ValidISBN10 checks the modulo 11 check digit of a canonical ISBN-10.
func ValidISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		c := isbn[i]
		var digit int
		switch {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case c == 'X' && i == 9:
			digit = 10
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidISBN13 checks the alternating 1/3 weighted check digit of a canonical
// ISBN-13.
func ValidISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := isbn[i]
		if c < '0' || c > '9' {
			return false
		}
		if i%2 == 0 {
			sum += int(c - '0')
		} else {
			sum += int(c-'0') * 3
		}
	}
	return sum%10 == 0
}

// ISBN10To13 converts a valid canonical ISBN-10 to its 978-prefixed ISBN-13.
func ISBN10To13(isbn10 string) (string, bool) {
	if !ValidISBN10(isbn10) {
		return "", false
	}
	body := "978" + isbn10[:9]
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check)), true
}
