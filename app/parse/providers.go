package parse

import (
	"math"
	"sort"
	"strings"
)

const maxItems = 200

// DefaultRules returns the built-in provider table in match order
func DefaultRules() []Rule {
	return []Rule{
		{Name: "gdelt", Domains: []string{"gdeltproject.org"}, Extract: extractGDELT},
		{Name: "reddit", Domains: []string{"reddit.com"}, Extract: extractReddit},
		{Name: "hn-algolia", Domains: []string{"algolia.com"}, Extract: extractAlgolia},
		{Name: "google-trends", Domains: []string{"trends.google.com"}, Extract: extractGoogleTrends},
		{Name: "app-store", Domains: []string{"apple.com"}, Extract: extractAppStore},
		{Name: "github", Domains: []string{"api.github.com"}, Extract: extractGitHub},
		{Name: "npm", Domains: []string{"registry.npmjs.org"}, Extract: extractNPM},
		{Name: "openalex", Domains: []string{"openalex.org"}, Extract: extractOpenAlex},
		{Name: "wikimedia", Domains: []string{"wikimedia.org"}, Extract: extractNothing},
	}
}

func extractGDELT(payload any) []Item {
	articles := list(either(field(payload, "articles"), field(payload, "results")))
	items := objects(articles, func(a map[string]any) Item {
		return Item{
			"title":   a["title"],
			"url":     a["url"],
			"seen":    either(a["seendate"], a["date"]),
			"source":  either(a["domain"], a["sourceCommonName"]),
			"summary": a["snippet"],
		}
	})
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func extractReddit(payload any) []Item {
	return objects(list(field(payload, "data", "children")), func(c map[string]any) Item {
		post := object(c["data"])
		return Item{
			"title":       post["title"],
			"url":         "https://www.reddit.com" + text(post["permalink"]),
			"created_utc": post["created_utc"],
			"author":      post["author"],
			"selftext":    post["selftext"],
			"subreddit":   post["subreddit"],
		}
	})
}

func extractAlgolia(payload any) []Item {
	return objects(list(field(payload, "hits")), func(h map[string]any) Item {
		return Item{
			"title":      either(h["title"], h["story_title"]),
			"url":        either(h["url"], h["story_url"]),
			"created_at": h["created_at"],
			"author":     h["author"],
			"summary":    either(h["story_text"], h["comment_text"]),
		}
	})
}

func extractGoogleTrends(payload any) []Item {
	var items []Item
	for _, day := range list(field(payload, "default", "trendingSearchesDays")) {
		for _, search := range list(field(day, "trendingSearches")) {
			items = append(items, objects(list(field(search, "articles")), func(a map[string]any) Item {
				return Item{
					"title":     a["title"],
					"url":       a["url"],
					"published": a["timeAgo"],
					"source":    a["source"],
				}
			})...)
		}
	}
	return items
}

// extractAppStore understands both the marketing tools feed (feed.results)
// and the legacy iTunes RSS JSON (feed.entry with im:* labels).
func extractAppStore(payload any) []Item {
	feed := field(payload, "feed")

	if results := list(field(feed, "results")); len(results) > 0 {
		return objects(results, func(r map[string]any) Item {
			return Item{
				"title":  r["name"],
				"url":    r["url"],
				"author": r["artistName"],
			}
		})
	}

	entries := list(field(feed, "entry"))
	if entries == nil {
		// a single-entry feed is encoded as an object
		if entry := object(field(feed, "entry")); entry != nil {
			entries = []any{entry}
		}
	}

	return objects(entries, func(e map[string]any) Item {
		return Item{
			"title":     field(e, "im:name", "label"),
			"url":       either(entryLink(e["link"]), field(e, "id", "label")),
			"author":    field(e, "im:artist", "label"),
			"published": field(e, "im:releaseDate", "label"),
			"summary":   field(e, "summary", "label"),
		}
	})
}

// entryLink picks the alternate href from an iTunes link value, which is
// either one link object or a list of them.
func entryLink(v any) any {
	if links := list(v); links != nil {
		var first any
		for _, l := range links {
			href := field(l, "attributes", "href")
			if first == nil {
				first = href
			}
			if text(field(l, "attributes", "rel")) == "alternate" {
				return href
			}
		}
		return first
	}
	return field(v, "attributes", "href")
}

func extractGitHub(payload any) []Item {
	return objects(list(field(payload, "items")), func(r map[string]any) Item {
		return Item{
			"title":      r["full_name"],
			"url":        r["html_url"],
			"created_at": r["created_at"],
			"author":     field(r, "owner", "login"),
			"summary":    r["description"],
		}
	})
}

func extractNPM(payload any) []Item {
	return objects(list(field(payload, "objects")), func(o map[string]any) Item {
		pkg := object(o["package"])
		return Item{
			"title":      pkg["name"],
			"url":        field(pkg, "links", "npm"),
			"created_at": pkg["date"],
			"summary":    pkg["description"],
			"author":     field(pkg, "publisher", "username"),
		}
	})
}

func extractOpenAlex(payload any) []Item {
	return objects(list(field(payload, "results")), func(w map[string]any) Item {
		location := w["primary_location"]

		var author any
		if authorships := list(w["authorships"]); len(authorships) > 0 {
			author = field(authorships[0], "author", "display_name")
		}

		item := Item{
			"title":      w["title"],
			"url":        either(field(location, "source", "homepage_url"), field(location, "landing_page_url")),
			"created_at": w["publication_date"],
			"author":     author,
			"summary":    nil,
		}
		if abstract := abstractWords(object(w["abstract_inverted_index"])); abstract != "" {
			item["summary"] = abstract
		}
		return item
	})
}

// abstractWords joins the distinct words of an inverted index in order
// of first appearance.
func abstractWords(index map[string]any) string {
	if len(index) == 0 {
		return ""
	}

	type word struct {
		text  string
		first float64
	}
	words := make([]word, 0, len(index))
	for w, positions := range index {
		first := math.Inf(1)
		for _, p := range list(positions) {
			if n, ok := p.(float64); ok && n < first {
				first = n
			}
		}
		words = append(words, word{text: w, first: first})
	}

	sort.SliceStable(words, func(i, j int) bool {
		if words[i].first != words[j].first {
			return words[i].first < words[j].first
		}
		return words[i].text < words[j].text
	})

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

// extractNothing serves providers whose payloads carry no articles
func extractNothing(any) []Item {
	return nil
}
