package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/cvkeeper/internal/client/cli"
	"github.com/dmitrijs2005/cvkeeper/internal/client/config"
	"github.com/dmitrijs2005/cvkeeper/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error(ctx, "client exited with error", "error", err)
		os.Exit(1)
	}
}
