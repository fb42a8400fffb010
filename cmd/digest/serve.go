package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/lecture-digest/internal/httpapi"
	"github.com/nguyentantai21042004/lecture-digest/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server (and the inbox watcher when configured)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	log.Info(ctx, "========================================")
	log.Info(ctx, "Lecture Digest")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Gemini model: %s (%d configured keys)", cfg.Gemini.Model, len(cfg.Gemini.APIKeys))
	log.Info(ctx, "Max concurrent jobs: %d", cfg.Performance.MaxConcurrent)
	log.Info(ctx, "Database: %s", cfg.DatabasePath())

	if err := os.MkdirAll(cfg.Paths.Temp, 0755); err != nil {
		return err
	}

	watchErr := make(chan error, 1)

	if cfg.Paths.Inbox != "" {
		w, err := watcher.New(cfg.Paths.Inbox, watcher.SubmitTo(a.jobs), log)
		if err != nil {
			return err
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				watchErr <- err
			}
		}()
		log.Info(ctx, "Inbox: %s", cfg.Paths.Inbox)
	}

	srv := httpapi.New(cfg, httpapi.Deps{
		Extractor:   a.extractor,
		Summarizer:  a.summarizer,
		Transcriber: a.transcriber,
		Fetcher:     a.fetcher,
		Store:       a.store,
		Pipeline:    a.pipeline,
		Jobs:        a.jobs,
		Metrics:     a.metrics,
	}, log)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run(ctx)
	}()

	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	select {
	case <-ctx.Done():
		log.Info(ctx, "Shutdown signal received")
		err = <-srvErr
	case err = <-watchErr:
		log.Error(ctx, "Watcher error: %v", err)
		stop()
		<-srvErr
	case err = <-srvErr:
		if err != nil {
			log.Error(ctx, "Server error: %v", err)
		}
		stop()
	}

	log.Info(ctx, "Waiting for running jobs...")
	a.jobs.Wait()
	log.Info(ctx, "Lecture Digest stopped")
	return err
}
