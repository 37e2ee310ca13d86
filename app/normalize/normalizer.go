package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lysyi3m/trend-comb/app/source"
)

// Field aliases, tried in order
var (
	titleKeys       = []string{"title", "name"}
	urlKeys         = []string{"url", "link"}
	publishedKeys   = []string{"published", "updated", "created_at", "created_utc", "seen", "date"}
	authorKeys      = []string{"author", "artistName"}
	descriptionKeys = []string{"summary", "selftext"}
	imageKeys       = []string{"urlToImage", "media_thumbnail"}
	contentKeys     = []string{"content"}
)

// endpointLabels names well-known API hosts when an item carries no
// usable source of its own. Matched by substring of the endpoint host.
var endpointLabels = []struct {
	fragment string
	label    string
}{
	{"reddit", "reddit"},
	{"algolia", "Hacker News"},
	{"gdelt", "GDELT"},
	{"youtube", "YouTube"},
}

// Normalize reduces a raw provider item to an Article. Items without a
// title or url report false.
func Normalize(item map[string]any, endpoint string) (Article, bool) {
	title := stringValue(FirstNonEmpty(item, titleKeys...))
	url := stringValue(FirstNonEmpty(item, urlKeys...))
	if strings.TrimSpace(title) == "" || strings.TrimSpace(url) == "" {
		return Article{}, false
	}

	article := Article{
		Title:       title,
		Source:      Source{Name: SourceName(item, endpoint)},
		Author:      optional(FirstNonEmpty(item, authorKeys...)),
		URL:         url,
		Description: optional(FirstNonEmpty(item, descriptionKeys...)),
		URLToImage:  optional(FirstNonEmpty(item, imageKeys...)),
		Content:     optional(FirstNonEmpty(item, contentKeys...)),
		Language:    Language,
		Sentiment:   Headline(title),
	}

	if ts, ok := ToISO(FirstNonEmpty(item, publishedKeys...)); ok {
		article.PublishedAt = &ts
	}

	return article, true
}

// FirstNonEmpty returns the first value under keys that is not nil, an
// empty string, an empty list or an empty object.
func FirstNonEmpty(item map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := item[k]; ok && !empty(v) {
			return v
		}
	}
	return nil
}

// SourceName picks the display name of an item's origin
func SourceName(item map[string]any, endpoint string) string {
	if name, ok := item["source"].(string); ok && name != "" {
		return name
	}

	for _, key := range []string{"link", "url"} {
		if raw := stringValue(item[key]); raw != "" {
			if domain := source.Domain(raw); domain != "" {
				return domain
			}
		}
	}

	domain := source.Domain(endpoint)
	for _, l := range endpointLabels {
		if strings.Contains(domain, l.fragment) {
			return l.label
		}
	}

	if domain != "" {
		return domain
	}
	return "unknown"
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// stringValue renders scalars as text; objects and lists yield ""
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func optional(v any) *string {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	return &s
}
