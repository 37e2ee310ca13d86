package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 5 * time.Minute

type Scheduler struct {
	cron    *cron.Cron
	newTask TaskFactory
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler validates spec (standard five-field cron syntax) and
// prepares a scheduler. A run still in progress when the next one is
// due causes that next run to be skipped.
func NewScheduler(spec string, newTask TaskFactory) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{
		cron:    c,
		newTask: newTask,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := c.AddFunc(spec, s.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Scheduler started", "entries", len(s.cron.Entries()))
}

// Stop cancels running tasks and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

// RunOnce executes one task synchronously
func (s *Scheduler) RunOnce() {
	s.executeTask(s.newTask())
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(),
			"duration", task.GetDuration(), "error", err)
	}
}

// cronLogger routes cron's own messages through slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("Cron "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("Cron "+msg, append(keysAndValues, "error", err)...)
}
