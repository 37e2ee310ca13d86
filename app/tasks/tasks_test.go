package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/source"
)

type recordingCollector struct {
	mu   sync.Mutex
	runs []pipeline.Options
}

func (c *recordingCollector) Run(ctx context.Context, opts pipeline.Options) pipeline.Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, opts)
	items := []normalize.Article{{Title: "t", URL: "https://example.com/a", Language: normalize.Language}}
	return pipeline.Feed{FetchedAt: "2025-01-31T12:00:00+00:00", Count: len(items), Items: items}
}

func testRegistry() *source.Registry {
	return source.NewRegistry([]source.Descriptor{
		{Name: "one", Endpoint: "https://one.example.com/rss", Method: "GET"},
	})
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeCollect)
	b := NewTask(TaskTypeCollect)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected unique task IDs, got '%s' and '%s'", a.ID, b.ID)
	}
	if a.GetType() != TaskTypeCollect {
		t.Errorf("Expected type collect, got '%s'", a.GetType())
	}
	if a.GetDuration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", a.GetDuration())
	}

	a.Start()
	if a.StartedAt == nil {
		t.Error("Expected StartedAt to be set")
	}
}

func TestCollectTaskWritesSnapshot(t *testing.T) {
	collector := &recordingCollector{}
	path := filepath.Join(t.TempDir(), "out", "feed.json")

	task := NewCollectTask(collector, testRegistry(), pipeline.Options{LimitPerSource: 50, Concurrency: 4, RequirePublished: true}, path)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(collector.runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(collector.runs))
	}
	opts := collector.runs[0]
	if len(opts.Sources) != 1 || opts.LimitPerSource != 50 || opts.Concurrency != 4 || !opts.RequirePublished {
		t.Errorf("Unexpected run options: %+v", opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected snapshot file, got: %v", err)
	}
	var feed pipeline.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		t.Fatalf("Expected JSON snapshot, got: %v", err)
	}
	if feed.Count != 1 || feed.Items[0].URL != "https://example.com/a" {
		t.Errorf("Unexpected snapshot contents: %+v", feed)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the snapshot in its directory, got %d entries", len(entries))
	}
}

func TestCollectTaskWithoutSnapshot(t *testing.T) {
	collector := &recordingCollector{}
	task := NewCollectTask(collector, testRegistry(), pipeline.Options{}, "")

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(collector.runs) != 1 {
		t.Errorf("Expected 1 run, got %d", len(collector.runs))
	}
}

func TestCollectTaskCancelled(t *testing.T) {
	collector := &recordingCollector{}
	task := NewCollectTask(collector, testRegistry(), pipeline.Options{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if len(collector.runs) != 0 {
		t.Errorf("Expected no runs, got %d", len(collector.runs))
	}
}

func TestWriteSnapshotReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	feed := pipeline.Feed{FetchedAt: "now", Items: []normalize.Article{}}
	if err := WriteSnapshot(path, feed); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, _ := os.ReadFile(path)
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected JSON snapshot, got: %s", data)
	}
	if decoded["fetched_at"] != "now" {
		t.Errorf("Expected new snapshot, got %v", decoded)
	}
}

func TestNewSchedulerRejectsInvalidSchedule(t *testing.T) {
	if _, err := NewScheduler("not a cron spec", func() TaskInterface { return nil }); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}

func TestSchedulerRunOnce(t *testing.T) {
	collector := &recordingCollector{}
	scheduler, err := NewScheduler("@every 1h", func() TaskInterface {
		return NewCollectTask(collector, testRegistry(), pipeline.Options{}, "")
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	scheduler.Start()
	scheduler.RunOnce()
	scheduler.RunOnce()
	scheduler.Stop()

	if len(collector.runs) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(collector.runs))
	}
}
