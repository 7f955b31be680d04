package values

import "strings"

// Normalize collapses every run of whitespace (spaces, tabs, newlines and other
// Unicode spaces) into a single space and trims the result. It is the only
// normalization applied anywhere canonical values are derived.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
