package logger

import (
	"net/url"
	"sort"
	"strings"
)

// Query parameters whose values never reach the request log. Filter text
// typed by an administrator can contain personal data.
var sensitiveParams = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
	"login":    true,
	"name":     true,
	"email":    true,
}

// MaskLogin masks a login for logging, keeping the first character
// (e.g., "j*******").
func MaskLogin(login string) string {
	if login == "" {
		return ""
	}
	r := []rune(login)
	return string(r[0]) + strings.Repeat("*", len(r)-1)
}

// SanitizeQuery re-encodes a raw query string with the values of sensitive
// parameters replaced. Paging, sorting and role parameters are kept.
func SanitizeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "[REDACTED]"
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			if sensitiveParams[strings.ToLower(k)] {
				v = "[REDACTED]"
			}
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
