package tasks

import (
	"context"

	"github.com/lysyi3m/trend-comb/app/pipeline"
)

// TaskSchedulerInterface runs collection tasks on a cron schedule.
//
//	scheduler, err := NewScheduler("*/30 * * * *", factory)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	RunOnce()
}

type CollectorInterface interface {
	Run(ctx context.Context, opts pipeline.Options) pipeline.Feed
}

// TaskFactory builds a fresh task for every scheduled run
type TaskFactory func() TaskInterface
