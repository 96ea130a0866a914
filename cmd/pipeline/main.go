package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vodeneev/vodeneevprops/internal/decoder"
	"github.com/Vodeneev/vodeneevprops/internal/export"
	"github.com/Vodeneev/vodeneevprops/internal/hotstreak"
	pkgconfig "github.com/Vodeneev/vodeneevprops/internal/pkg/config"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/logging"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/notify"
	"github.com/Vodeneev/vodeneevprops/internal/pkg/storage"
	"github.com/Vodeneev/vodeneevprops/internal/pipeline"
)

const defaultConfigPath = "configs/local.yaml"

type flags struct {
	configPath string
	interval   time.Duration // 0 = single run
}

func main() {
	if err := run(); err != nil {
		slog.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.SetupLogger(&appConfig.Logging, "pipeline")
	slog.Info("Config loaded", "path", cfg.configPath)

	// Decoder options are the only fatal validation: a bad stride or range
	// must stop the process before any payload is touched.
	opts := pipeline.OptionsFromConfig(&appConfig.Decoder)
	dec, err := decoder.New(opts, nil)
	if err != nil {
		return fmt.Errorf("invalid decoder config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := hotstreak.NewClient(&appConfig.HotStreak)
	if appConfig.HotStreak.BrowserAuth {
		token, err := hotstreak.FetchPrivyToken(ctx, appConfig.HotStreak.AppURL, appConfig.HotStreak.RequestTimeout())
		if err != nil {
			return fmt.Errorf("browser auth: %w", err)
		}
		client.SetToken(token)
	}

	var writer *export.Writer
	if appConfig.Pipeline.WriteCSV || appConfig.Pipeline.WriteJSON {
		writer = export.NewWriter(appConfig.Pipeline.OutputDir, appConfig.Pipeline.WriteCSV, appConfig.Pipeline.WriteJSON)
	}

	var store storage.LinesStorage
	if appConfig.Postgres.DSN != "" {
		pgStore, err := storage.NewPostgresLinesStorage(&appConfig.Postgres)
		if err != nil {
			return fmt.Errorf("failed to init postgres storage: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
	}

	var notifier *notify.TelegramNotifier
	if appConfig.Telegram.Enabled {
		notifier, err = notify.NewTelegramNotifier(appConfig.Telegram.BotToken, appConfig.Telegram.ChatID)
		if err != nil {
			slog.Warn("Failed to init telegram notifier, continuing without notifications", "error", err)
		}
	}

	runner := pipeline.NewRunner(&appConfig.Pipeline, client, dec, writer, store, notifier)

	if cfg.interval <= 0 {
		_, err := runner.Run(ctx)
		return err
	}

	// Interval mode: rerun until the process is signalled. A failed run
	// is logged and the next tick tries again.
	slog.Info("Running in interval mode", "interval", cfg.interval)
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		if _, err := runner.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("Run failed, waiting for next interval", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func parseFlags() flags {
	var cfg flags

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file")
	flag.DurationVar(&cfg.interval, "interval", 0, "Rerun the pipeline every interval (0 = run once)")
	flag.Parse()

	return cfg
}
