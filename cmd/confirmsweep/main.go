// confirmsweep deletes unverified confirmation keys that are past their TTL.
// Run it from cron against the same environment as confirmd.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-confirm/pkg/bootstrap"
	"github.com/tendant/simple-confirm/pkg/config"
)

func main() {
	envFile := flag.String("env", "", "optional .env file to load before reading the environment")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this long")
	quiet := flag.Bool("quiet", false, "skip the summary report")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("Failed to load .env file", "path", *envFile, "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	services, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open confirmation store", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	result, err := services.Sweep(ctx)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		services.Close()
		os.Exit(1)
	}

	if !*quiet {
		bootstrap.PrintSweepResult(os.Stdout, result)
	}
}
