package util

import "strings"

// Ellipsis is appended by Truncate when text was cut.
const Ellipsis = "..."

// Truncate returns the first limit runes of s, followed by Ellipsis when s is
// longer than limit. Invalid UTF-8 is dropped first.
func Truncate(s string, limit int) string {
	s = strings.ToValidUTF8(s, "")
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + Ellipsis
}
