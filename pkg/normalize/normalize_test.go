package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		ignore IgnoreSet
		input  string
		want   string
	}{
		{"empty input", DefaultIgnoreSet, "", ""},
		{"nothing to strip", DefaultIgnoreSet, "johndoe", "johndoe"},
		{"hyphen", DefaultIgnoreSet, "john-doe", "johndoe"},
		{"space", DefaultIgnoreSet, "john doe", "johndoe"},
		{"parentheses", DefaultIgnoreSet, "(555) 123-4567", "5551234567"},
		{"adjacent separators", DefaultIgnoreSet, "jo- -(hn)", "john"},
		{"only separators", DefaultIgnoreSet, " -() ", ""},
		{"order preserved", IgnoreSet{' ', '-'}, "jo-hn doe", "johndoe"},
		{"empty set", IgnoreSet{}, "a-b c", "a-b c"},
		{"unicode survivors", DefaultIgnoreSet, "zoë-ångström", "zoëångström"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.ignore, tt.input))
		})
	}
}

func TestNormalize_Properties(t *testing.T) {
	inputs := []string{
		"", "a", "-", "john-doe", "John Doe", "(a)(b)(c)", "--  ((",
		"x-y z(w)", "plain", "  leading and trailing  ", "ünï-cödé (test)",
	}

	for _, in := range inputs {
		once := Normalize(DefaultIgnoreSet, in)

		for _, r := range DefaultIgnoreSet {
			assert.False(t, strings.ContainsRune(once, r), "input %q still contains %q", in, r)
		}

		assert.Equal(t, once, Normalize(DefaultIgnoreSet, once), "not idempotent for %q", in)
	}
}
