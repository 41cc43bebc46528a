// Package normalize cleans user-supplied text before it reaches the store.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Email trims and lowercases an address. The result is only used as a
// comparison key; stored emails keep the casing the user typed.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// maxTextPasses bounds how many layers of entity encoding Text unwraps.
const maxTextPasses = 8

// Text strips all markup from free text and trims surrounding whitespace.
// Entities are decoded for readability, and the result is sanitized again
// until it no longer changes, so encoded markup cannot survive decoding.
func Text(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxTextPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
		if next == s {
			return s
		}
		s = next
	}
	// Still changing after maxTextPasses: keep the escaped form.
	return strings.TrimSpace(strict.Sanitize(s))
}

// Topics splits comma-separated free text into an ordered set: entries are
// sanitized, blanks dropped and case-insensitive duplicates removed.
func Topics(s string) []string {
	parts := strings.Split(s, ",")
	seen := make(map[string]struct{}, len(parts))
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		t := Text(p)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, t)
	}
	return topics
}
