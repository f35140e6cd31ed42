package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-confirm/pkg/bootstrap"
	"github.com/tendant/simple-confirm/pkg/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	services, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to start confirmation service", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	mountPath := cfg.Confirmation.PathPrefix
	if mountPath == "" {
		mountPath = "/"
	}
	server.R.Mount(mountPath, services.Handler())

	slog.Info("Email confirmation service ready",
		"mount", mountPath,
		"persistence", cfg.Storage.Persistence,
		"ttl", cfg.Confirmation.TTL(),
		"unique_email", cfg.Confirmation.UniqueEmail,
		"transport", cfg.Email.Transport,
	)

	server.Run()
}

// loadEnvFile loads a .env next to the binary, or in the working directory, when present
func loadEnvFile() {
	envFile := ".env"
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(candidate); err == nil {
			envFile = candidate
		}
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)")
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
