package mpesa

import "strings"

// Normalize collapses every whitespace run, including newlines, into a single space
// and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
