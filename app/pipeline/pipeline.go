package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/trend-comb/app/fetch"
	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/parse"
)

// Pipeline runs fetch, dispatch, normalization and dedup over a source
// list. It holds no state between runs and is safe for concurrent use.
type Pipeline struct {
	timeout    time.Duration
	userAgent  string
	client     *http.Client
	dispatcher *parse.Dispatcher
	observer   fetch.Observer
}

type Option func(*Pipeline)

// WithClient makes every run share client instead of building its own
func WithClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

func WithRules(rules *parse.Registry) Option {
	return func(p *Pipeline) {
		p.dispatcher = parse.NewDispatcher(rules)
	}
}

func WithObserver(o fetch.Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

func NewPipeline(timeout time.Duration, userAgent string, opts ...Option) *Pipeline {
	p := &Pipeline{
		timeout:   timeout,
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = parse.NewDispatcher(parse.DefaultRegistry())
	}
	return p
}

// Run collects every source and returns the deduplicated article list.
// Failing sources contribute nothing; the run itself never fails.
func (p *Pipeline) Run(ctx context.Context, opts Options) Feed {
	start := time.Now()
	results := p.fetchAll(ctx, opts)

	var articles []normalize.Article
	failed := 0
	for _, r := range results {
		outcome := p.dispatcher.Dispatch(r)
		if outcome.Status == parse.StatusFailed {
			failed++
		}
		if !outcome.Contributes() {
			continue
		}

		for _, item := range limitItems(outcome.Items, opts.LimitPerSource) {
			article, ok := normalize.Normalize(item, r.Source.Endpoint)
			if !ok {
				continue
			}
			if opts.RequirePublished && article.PublishedAt == nil {
				continue
			}
			articles = append(articles, article)
		}
	}

	items := Dedupe(articles)

	slog.Info("Collection completed",
		"sources", len(results),
		"failed", failed,
		"normalized", len(articles),
		"items", len(items),
		"duration", time.Since(start))

	return Feed{
		FetchedAt: normalize.FormatTime(time.Now()),
		Count:     len(items),
		Items:     items,
	}
}

// Diagnose fetches and parses every source and reports each result
// without normalizing. Item lists are trimmed to LimitPerSource when
// it is positive.
func (p *Pipeline) Diagnose(ctx context.Context, opts Options) Report {
	results := p.fetchAll(ctx, opts)

	reports := make([]SourceReport, 0, len(results))
	for _, r := range results {
		outcome := p.dispatcher.Dispatch(r)
		reports = append(reports, sourceReport(r, outcome, opts.LimitPerSource))
	}

	return Report{
		FetchedAt: normalize.FormatTime(time.Now()),
		Count:     len(reports),
		Results:   reports,
	}
}

func (p *Pipeline) fetchAll(ctx context.Context, opts Options) []fetch.Result {
	client := p.client
	if client == nil {
		client = fetch.NewClient(p.timeout, opts.Concurrency)
		defer client.CloseIdleConnections()
	}

	fetcher := fetch.NewFetcher(client, p.userAgent, fetch.WithObserver(p.observer))
	return fetcher.FetchAll(ctx, opts.Sources, opts.Concurrency)
}

func sourceReport(r fetch.Result, outcome parse.Outcome, limit int) SourceReport {
	report := SourceReport{
		Source:      r.Source,
		Status:      FetchStatus{Code: r.StatusCode, Failed: r.Failed()},
		ContentType: r.ContentType,
		Kind:        r.Kind,
		Outcome:     outcome.Status,
		Rule:        outcome.Rule,
		Parsed:      map[string]any{},
		DurationMS:  r.Duration.Milliseconds(),
	}

	if outcome.Err != nil {
		report.Error = outcome.Err.Error()
	}

	switch outcome.Status {
	case parse.StatusOK, parse.StatusEmpty:
		items := limitItems(outcome.Items, limit)
		if items == nil {
			items = []parse.Item{}
		}
		report.Parsed["items"] = items
	case parse.StatusOpaque:
		if r.Kind == fetch.KindText {
			report.Parsed["text"] = outcome.Payload
		} else {
			report.Parsed["json"] = outcome.Payload
		}
	}

	return report
}

func limitItems(items []parse.Item, limit int) []parse.Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
