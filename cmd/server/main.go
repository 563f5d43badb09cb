package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/amahle/discus-manager/internal/config"
	"github.com/amahle/discus-manager/internal/roster"
	"github.com/amahle/discus-manager/internal/server"
	"github.com/amahle/discus-manager/internal/service"
	"github.com/amahle/discus-manager/internal/storage/csvfile"
	"github.com/amahle/discus-manager/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "./config.yaml"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := csvfile.New(cfg.SnapshotPath)
	if err != nil {
		slog.Error("Failed to initialize snapshot store", "error", err)
		os.Exit(1)
	}
	slog.Info("Snapshot store initialized", "path", cfg.SnapshotPath)

	svc := service.NewEventService(roster.New(), store, cfg)
	svc.RestoreSnapshot(context.Background())

	srv := server.New(svc)

	slog.Info("Discus manager starting", "address", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
