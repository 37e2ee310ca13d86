package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/source"
)

type CollectTask struct {
	Task
	collector    CollectorInterface
	sources      *source.Registry
	opts         pipeline.Options
	snapshotPath string
}

// NewCollectTask runs one collection over sources. opts.Sources is
// replaced by the registry contents at execution time.
func NewCollectTask(collector CollectorInterface, sources *source.Registry, opts pipeline.Options, snapshotPath string) *CollectTask {
	return &CollectTask{
		Task:         NewTask(TaskTypeCollect),
		collector:    collector,
		sources:      sources,
		opts:         opts,
		snapshotPath: snapshotPath,
	}
}

func (t *CollectTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	opts := t.opts
	opts.Sources = t.sources.All()

	feed := t.collector.Run(ctx, opts)

	if t.snapshotPath != "" {
		if err := WriteSnapshot(t.snapshotPath, feed); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration(),
		"sources", len(opts.Sources),
		"items", feed.Count,
		"snapshot", t.snapshotPath)

	return nil
}

// WriteSnapshot replaces path with the JSON encoding of feed. Readers
// see either the previous snapshot or the new one, never a partial file.
func WriteSnapshot(path string, feed pipeline.Feed) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(feed); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
