package fetch

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

// xssiPrefix is the JSON-hijacking guard some Google endpoints prepend
var xssiPrefix = regexp.MustCompile(`^\)\]\}',?\s*`)

// xssiHosts lists hosts known to emit the guard prefix
var xssiHosts = []string{"trends.google.com"}

// Classify decides how a body should be parsed. The returned body has
// any guard prefix removed. Rules are checked in order, first match wins:
// guarded JSON, declared JSON, XML feed, HTML, parseable JSON, plain text.
func Classify(rawURL, contentType string, body []byte) (Kind, []byte) {
	ct := strings.ToLower(contentType)
	host, path := splitURL(rawURL)

	if emitsXSSI(host) {
		trimmed := bytes.TrimLeft(body, " \t\r\n")
		if bytes.HasPrefix(trimmed, []byte(")]}'")) {
			stripped := xssiPrefix.ReplaceAll(trimmed, nil)
			if json.Valid(stripped) {
				return KindJSON, stripped
			}
		}
	}

	if strings.Contains(ct, "json") || strings.HasSuffix(path, ".json") {
		return KindJSON, body
	}

	if strings.Contains(ct, "xml") || strings.Contains(ct, "rss") ||
		bytes.HasPrefix(bytes.TrimSpace(body), []byte("<?xml")) ||
		bytes.Contains(body, []byte("<feed")) {
		return KindFeed, body
	}

	if strings.Contains(ct, "html") {
		return KindHTML, body
	}

	if json.Valid(body) {
		return KindJSON, body
	}

	return KindText, body
}

func emitsXSSI(host string) bool {
	for _, h := range xssiHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func splitURL(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname()), strings.ToLower(u.Path)
}
