// Package normalize strips formatting characters from identifiers so that
// "john-doe", "john doe" and "(john)doe" compare equal.
package normalize

import "strings"

// IgnoreSet is an ordered set of characters removed during normalization.
// Order matters: the same order is used when the removal is expressed as a
// chain of column-level replace() calls, so both sides strip identically.
type IgnoreSet []rune

// DefaultIgnoreSet covers the separators people type into logins.
var DefaultIgnoreSet = IgnoreSet{'-', ' ', '(', ')'}

// Normalize removes every occurrence of every character in ignore from
// input, one character at a time in set order. Sequential single-character
// removal equals character-class removal because no member of the set is a
// substring of another.
func Normalize(ignore IgnoreSet, input string) string {
	result := input
	for _, r := range ignore {
		result = strings.ReplaceAll(result, string(r), "")
	}
	return result
}
