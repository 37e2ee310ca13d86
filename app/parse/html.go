package parse

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// parseHTML treats a page as a single weak signal: its title plus the
// fetch URL. Readability fills in what the markup leaves out.
func parseHTML(body []byte, pageURL string) Outcome {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: StatusFailed, Rule: "html", Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	item := Item{"title": nil, "url": pageURL}

	if article, ok := readable(body, pageURL); ok {
		if title == "" {
			title = strings.TrimSpace(article.Title)
		}
		if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
			item["summary"] = excerpt
		}
		if article.Image != "" {
			item["urlToImage"] = article.Image
		}
	}

	if title == "" {
		return Outcome{Status: StatusEmpty, Rule: "html"}
	}
	item["title"] = title

	return Outcome{Status: StatusOK, Rule: "html", Items: []Item{item}}
}

func readable(body []byte, pageURL string) (readability.Article, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return readability.Article{}, false
	}
	return article, true
}
