package fetch

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		body        string
		wantKind    Kind
		wantBody    string
	}{
		{
			name:     "trends guard stripped",
			url:      "https://trends.google.com/trends/api/dailytrends?geo=IN",
			body:     ")]}',\n{\"default\": {}}",
			wantKind: KindJSON,
			wantBody: `{"default": {}}`,
		},
		{
			name:        "trends guard without comma",
			url:         "https://trends.google.com/trends/api/dailytrends",
			contentType: "application/javascript",
			body:        "  )]}'\n[1]",
			wantKind:    KindJSON,
			wantBody:    "[1]",
		},
		{
			name:     "guard ignored on other hosts",
			url:      "https://example.com/api",
			body:     ")]}',\n{}",
			wantKind: KindText,
		},
		{
			name:        "declared json",
			url:         "https://hn.algolia.com/api/v1/search",
			contentType: "application/json; charset=utf-8",
			body:        `{"hits": []}`,
			wantKind:    KindJSON,
		},
		{
			name:     "json path suffix",
			url:      "https://www.reddit.com/r/startups/search.json?q=x",
			body:     `{"data": {}}`,
			wantKind: KindJSON,
		},
		{
			name:        "rss content type",
			url:         "https://news.google.com/rss/search?q=x",
			contentType: "application/rss+xml",
			body:        "<rss></rss>",
			wantKind:    KindFeed,
		},
		{
			name:     "xml prolog",
			url:      "https://example.com/feed",
			body:     "\n<?xml version=\"1.0\"?><rss></rss>",
			wantKind: KindFeed,
		},
		{
			name:        "atom element",
			url:         "https://example.com/feed",
			contentType: "text/plain",
			body:        "<feed xmlns=\"http://www.w3.org/2005/Atom\"></feed>",
			wantKind:    KindFeed,
		},
		{
			name:        "html",
			url:         "https://example.com/",
			contentType: "text/html; charset=utf-8",
			body:        "<html><head><title>x</title></head></html>",
			wantKind:    KindHTML,
		},
		{
			name:     "undeclared json",
			url:      "https://example.com/data",
			body:     `{"items": []}`,
			wantKind: KindJSON,
		},
		{
			name:     "plain text",
			url:      "https://example.com/data",
			body:     "hello world",
			wantKind: KindText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, body := Classify(tt.url, tt.contentType, []byte(tt.body))
			if kind != tt.wantKind {
				t.Errorf("Expected kind '%s', got '%s'", tt.wantKind, kind)
			}
			want := tt.wantBody
			if want == "" {
				want = tt.body
			}
			if string(body) != want {
				t.Errorf("Expected body %q, got %q", want, body)
			}
		})
	}
}
