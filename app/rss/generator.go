// Package rss renders a collected feed as an RSS 2.0 document.
package rss

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/pipeline"
)

const channelTitle = "trend-comb"

type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run writes feed as RSS. selfLink is the absolute URL the document is
// served from and is omitted when empty.
func (g *Generator) Run(feed pipeline.Feed, selfLink string) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", cmp.Or(selfLink, "http://localhost/"), 4)
	g.writeElement(&buf, "description", fmt.Sprintf("%d trending items", feed.Count), 4)

	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	lastBuildDate := time.Now().UTC()
	if t, ok := parseTime(feed.FetchedAt); ok {
		lastBuildDate = t
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("trend-comb/%s", g.version), 4)
	g.writeElement(&buf, "language", normalize.Language, 4)

	for _, item := range feed.Items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, a normalize.Article) {
	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", isURL(a.URL)))
	xml.EscapeText(buf, []byte(a.URL))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", a.Title, 6)
	g.writeElement(buf, "link", a.URL, 6)

	description := deref(a.Description)
	g.writeElement(buf, "description", cmp.Or(description, "No description available"), 6)

	if content := deref(a.Content); content != "" && content != description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if t, ok := parseTime(deref(a.PublishedAt)); ok {
		g.writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", deref(a.Author), 6)
	g.writeElement(buf, "category", a.Source.Name, 6)

	if image := deref(a.URLToImage); image != "" {
		buf.WriteString(fmt.Sprintf("      <media:thumbnail url=\"%s\" />\n", html.EscapeString(image)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// parseTime reads the canonical timestamps produced by normalize
func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
