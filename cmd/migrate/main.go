package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"assetbazaar/internal/infrastructure/datastore"
	"assetbazaar/pkg/config"
	"assetbazaar/pkg/logger"
)

const usage = `usage: migrate <command> [args]

commands:
  up            apply all pending migrations
  up-to V       apply migrations up to version V
  down          roll back the latest migration
  down-to V     roll back to version V
  redo          roll back and re-apply the latest migration
  status        print the state of every migration
  version       print the current schema version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.Environment)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := datastore.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect: %v", err)
	}
	defer store.Close()

	if err := datastore.Migrate(ctx, store.DB().DB, os.Args[1], os.Args[2:]...); err != nil {
		logger.Error("%v", err)
		store.Close()
		os.Exit(1)
	}
}
