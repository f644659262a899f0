package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/changelog-rss/app/cfg"
	"github.com/lysyi3m/changelog-rss/app/changelog"
	"github.com/lysyi3m/changelog-rss/app/feed"
	"github.com/lysyi3m/changelog-rss/app/tasks"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load(args)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 2
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupLogging(appCfg.Debug)

	slog.Debug("Configuration loaded",
		"url", appCfg.URL,
		"output", appCfg.OutputPath,
		"max_entries", appCfg.MaxEntries,
		"min_sections", appCfg.MinSections,
		"version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{}

	task := tasks.NewBuildFeedTask(appCfg.URL, appCfg.ContainerID,
		changelog.NewFetcher(httpClient, appCfg.UserAgent, appCfg.GetTimeout()),
		changelog.NewExtractor(changelog.Options{
			BaseURL:     appCfg.URL,
			MaxEntries:  appCfg.MaxEntries,
			MinSections: appCfg.MinSections,
		}),
		feed.NewGenerator(appCfg.Channel, appCfg.SelfURL, appCfg.Version),
		feed.NewWriter(appCfg.OutputPath),
	)

	if err := tasks.Run(ctx, task); err != nil {
		return exitCode(err)
	}

	return 0
}

// exitCode reports err and maps it to the process exit status.
// Anticipated failures print their message to stdout and exit with 1.
func exitCode(err error) int {
	var e *changelog.Error
	if errors.As(err, &e) && e.Kind.ExitCode() == 1 {
		fmt.Println(e.Msg)
		slog.Debug("Run failed", "kind", e.Kind.String(), "error", err)
		return 1
	}

	slog.Error("Run failed", "kind", changelog.KindOf(err).String(), "error", err)
	return 2
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
