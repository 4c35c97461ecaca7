package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrijs2005/cvkeeper/internal/devserver"
	"github.com/dmitrijs2005/cvkeeper/internal/devserver/users"
	"github.com/dmitrijs2005/cvkeeper/internal/logging"
)

func main() {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := devserver.LoadConfig()
	if err != nil {
		log.Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}

	var store users.Store
	if cfg.DatabaseDSN != "" {
		pg, err := users.NewPostgresStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Error(ctx, "database init failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		log.Info(ctx, "using postgres store")
	} else {
		store = users.NewMemoryStore()
		log.Info(ctx, "using in-memory store")
	}

	srv := devserver.New(cfg, store, log)
	log.Info(ctx, "dev identity server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
