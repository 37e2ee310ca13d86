package api

import (
	"context"

	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/rss"
	"github.com/lysyi3m/trend-comb/app/source"
)

type CollectorInterface interface {
	Run(ctx context.Context, opts pipeline.Options) pipeline.Feed
	Diagnose(ctx context.Context, opts pipeline.Options) pipeline.Report
}

var _ CollectorInterface = (*pipeline.Pipeline)(nil)

type Handler struct {
	collector   CollectorInterface
	sources     *source.Registry
	sourcesDir  string
	concurrency int
	version     string
	generator   *rss.Generator
}

// queryParams are the run options shared by /feed and /trends
type queryParams struct {
	LimitPerSource   int
	Concurrency      int
	RequirePublished bool
}
