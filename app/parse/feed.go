package parse

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func parseFeed(body []byte) Outcome {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return Outcome{Status: StatusFailed, Rule: "feed", Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	entries := feed.Items
	if len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		items = append(items, feedItem(e))
	}

	return itemsOutcome("feed", items)
}

func feedItem(e *gofeed.Item) Item {
	link := e.Link
	if link == "" && len(e.Links) > 0 {
		link = e.Links[0]
	}

	return Item{
		"title":           nonEmpty(e.Title),
		"link":            nonEmpty(link),
		"published":       feedPublished(e),
		"summary":         nonEmpty(e.Description),
		"author":          feedAuthor(e),
		"media_thumbnail": feedThumbnail(e),
	}
}

// feedPublished prefers the parsed timestamp and falls back to the raw
// string so the normalizer can still try its own layouts.
func feedPublished(e *gofeed.Item) any {
	switch {
	case e.PublishedParsed != nil:
		return e.PublishedParsed.UTC()
	case e.Published != "":
		return e.Published
	case e.UpdatedParsed != nil:
		return e.UpdatedParsed.UTC()
	case e.Updated != "":
		return e.Updated
	}
	return nil
}

func feedAuthor(e *gofeed.Item) any {
	if e.Author != nil && e.Author.Name != "" {
		return e.Author.Name
	}
	for _, a := range e.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return nil
}

// feedThumbnail reads media:thumbnail, either directly on the item or
// nested in media:group as YouTube emits it.
func feedThumbnail(e *gofeed.Item) any {
	if media, ok := e.Extensions["media"]; ok {
		if u := thumbnailURL(media["thumbnail"]); u != "" {
			return u
		}
		for _, group := range media["group"] {
			if u := thumbnailURL(group.Children["thumbnail"]); u != "" {
				return u
			}
		}
	}
	if e.Image != nil && e.Image.URL != "" {
		return e.Image.URL
	}
	return nil
}

func thumbnailURL(thumbs []ext.Extension) string {
	for _, t := range thumbs {
		if u := t.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
