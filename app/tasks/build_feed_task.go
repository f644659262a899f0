package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/changelog-rss/app/changelog"
	"github.com/lysyi3m/changelog-rss/app/feed"
)

// BuildFeedTask runs the whole pipeline: fetch, locate, extract, render, write.
type BuildFeedTask struct {
	Task
	URL         string
	ContainerID string
	fetcher     *changelog.Fetcher
	extractor   *changelog.Extractor
	generator   *feed.Generator
	writer      *feed.Writer
}

func NewBuildFeedTask(url, containerID string, fetcher *changelog.Fetcher, extractor *changelog.Extractor, generator *feed.Generator, writer *feed.Writer) *BuildFeedTask {
	return &BuildFeedTask{
		Task:        NewTask(TaskTypeBuildFeed),
		URL:         url,
		ContainerID: containerID,
		fetcher:     fetcher,
		extractor:   extractor,
		generator:   generator,
		writer:      writer,
	}
}

func (t *BuildFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	page, err := t.fetcher.Run(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch changelog: %w", err)
	}

	container, err := changelog.Locate(page, t.ContainerID)
	if err != nil {
		return fmt.Errorf("failed to locate changelog content: %w", err)
	}

	updates, err := t.extractor.Run(container)
	if err != nil {
		return fmt.Errorf("failed to extract updates: %w", err)
	}

	rss, err := t.generator.Run(updates)
	if err != nil {
		return changelog.NewError(changelog.KindOutput, err, "failed to render feed")
	}

	if err := t.writer.Run(rss, updates); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"url", t.URL,
		"duration", t.GetDuration(),
		"updates", len(updates))

	return nil
}
