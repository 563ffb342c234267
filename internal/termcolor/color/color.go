// Package color validates the hex colors stored against terms.
package color

import (
	"regexp"
	"strings"
)

// Defaults shown when a term has no color. Forms use upper case, the list
// column lower case.
const (
	DefaultField  = "#FFFFFF"
	DefaultColumn = "#ffffff"
)

var hexPattern = regexp.MustCompile(`^([A-Fa-f0-9]{3}){1,2}$`)

// Sanitize strips any leading '#' characters and returns the remaining 3 or 6
// hex digits, or "" when the input is not a hex color. Surrounding whitespace
// is not trimmed. Case is preserved.
func Sanitize(input string) string {
	c := strings.TrimLeft(input, "#")
	if !hexPattern.MatchString(c) {
		return ""
	}
	return c
}

// WithHash prefixes a sanitized value with '#'. Empty stays empty.
func WithHash(c string) string {
	if c == "" {
		return ""
	}
	return "#" + c
}

// Or returns c, or fallback when c is empty.
func Or(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
