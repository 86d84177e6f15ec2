package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"meeting-secretary/internal/acquire"
	"meeting-secretary/internal/analyze"
	"meeting-secretary/internal/artifact"
	"meeting-secretary/internal/bot"
	"meeting-secretary/internal/config"
	"meeting-secretary/internal/denoise"
	"meeting-secretary/internal/logger"
	"meeting-secretary/internal/pipeline"
	"meeting-secretary/internal/transcribe"
	"meeting-secretary/internal/watcher"
	"meeting-secretary/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	ctx := context.Background()

	// Secrets may come from a .env file in development; a missing file
	// is fine as long as the environment itself carries them.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Meeting Secretary")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Whisper model: %s", cfg.Whisper.ModelPath)
	log.Info(ctx, "Gemini model: %s", cfg.Gemini.Model)
	log.Info(ctx, "Cache directory: %s", cfg.Paths.Cache)
	log.Info(ctx, "Max concurrent runs: %d", cfg.Pipeline.MaxConcurrentRuns)

	store, err := artifact.NewStore(cfg.Paths.Cache, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize artifact store: %v", err)
		os.Exit(1)
	}

	exec := executor.New()

	analysis, err := analyze.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize LLM client: %v", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(
		store,
		acquire.New(cfg, store, exec, log),
		denoise.New(store, log),
		transcribe.New(cfg, exec, log),
		analysis,
		analysis,
		cfg.Pipeline.MaxConcurrentRuns,
		log,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := bot.New(ctx, cfg, runner, log)
	if err != nil {
		log.Error(ctx, "Failed to start bot: %v", err)
		os.Exit(1)
	}

	errChan := make(chan error, 2)

	go func() {
		if err := b.Run(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	if cfg.Paths.Inbox != "" {
		w, err := watcher.New(cfg.Paths.Inbox, cfg.Paths.Outbox, runner, log)
		if err != nil {
			log.Error(ctx, "Failed to create inbox watcher: %v", err)
			os.Exit(1)
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				errChan <- err
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info(ctx, "Meeting Secretary is ready")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Fatal: %v", err)
	}

	cancel()
	log.Info(ctx, "Meeting Secretary stopped")
}
