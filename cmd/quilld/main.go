package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quill/internal/archive"
	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/daemon"
	"quill/internal/dispatch"
	"quill/internal/ingest"
	"quill/internal/journaldate"
	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/pipeline"
	"quill/internal/services/notion"
	"quill/internal/services/openai"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatalf("quilld: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, cfgPath, exists, err := config.Load(os.Getenv("QUILL_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if exists {
		logger.Info("configuration loaded", logging.String("path", cfgPath))
	} else {
		logger.Info("no config file found; using defaults and environment",
			logging.String("searched", cfgPath))
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}

	resolver, err := journaldate.NewResolver(cfg.Journal.Timezone, cfg.Journal.DayCutoff)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("journal date resolver: %w", err)
	}

	openaiClient := openai.NewClient(openai.Config{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		PolishModel:        cfg.OpenAI.PolishModel,
		Temperature:        cfg.OpenAI.Temperature,
		TimeoutSeconds:     cfg.OpenAI.TimeoutSeconds,
	})
	notionClient := notion.NewClient(notion.Config{
		APIKey:         cfg.Notion.APIKey,
		DatabaseID:     cfg.Notion.DatabaseID,
		BaseURL:        cfg.Notion.BaseURL,
		TimeoutSeconds: cfg.Notion.TimeoutSeconds,
	})
	archiver := archive.NewArchiver(cfg.Paths.ArchiveDir)
	notifier := notifications.NewService(cfg)

	orchestrator := pipeline.NewOrchestrator(resolver, openaiClient, openaiClient, notionClient, archiver, logger)
	dispatcher := dispatch.New(orchestrator, store, notifier, logger, cfg.Pipeline.Workers)
	watcher := ingest.NewWatcher(cfg, store, dispatcher, logger)

	d, err := daemon.New(cfg, store, dispatcher, watcher, notionClient, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-ctx.Done()
	logger.Info("quilld shutting down")
	d.Stop()
	return nil
}
