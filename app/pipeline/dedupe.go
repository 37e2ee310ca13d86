package pipeline

import (
	"strings"

	"github.com/lysyi3m/trend-comb/app/normalize"
)

// Key is the identity of an article: its trimmed, lower-cased url
func Key(a normalize.Article) string {
	return strings.ToLower(strings.TrimSpace(a.URL))
}

// Dedupe keeps the first article for every key, preserving order.
// Articles with an empty key are dropped.
func Dedupe(articles []normalize.Article) []normalize.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]normalize.Article, 0, len(articles))

	for _, a := range articles {
		key := Key(a)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	return out
}
