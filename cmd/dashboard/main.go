package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/StockDashboard/internal/alert"
	"github.com/Alias1177/StockDashboard/internal/api/backend"
	"github.com/Alias1177/StockDashboard/internal/chart"
	"github.com/Alias1177/StockDashboard/internal/config"
	"github.com/Alias1177/StockDashboard/internal/dashboard"
	"github.com/Alias1177/StockDashboard/internal/scheduler"
	"github.com/Alias1177/StockDashboard/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting Stock Anomaly Dashboard")
	printConfig(cfg)

	// 3. Backend client
	api := backend.NewClient(backend.ClientOptions{
		BaseURL:        cfg.APIBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})

	// 4. Chart pipeline: panel -> payload widget -> websocket hub
	resize := chart.NewResizeBroadcaster()
	hub := server.NewHub(resize)

	panel := chart.NewPanel(chart.NewPayloadFactory(hub), resize, chart.Options{Width: cfg.ChartWidth})
	defer func() {
		if err := panel.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing chart panel")
		}
	}()

	// 5. Alerts
	var listeners []dashboard.AnomalyListener
	if cfg.TelegramEnabled() {
		notifier, err := alert.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram alerts disabled")
		} else {
			listeners = append(listeners, alert.NewWatcher(notifier))
			log.Info().Int64("chat_id", cfg.TelegramChatID).Msg("Telegram alerts enabled")
		}
	}

	// 6. Dashboard state
	dash := dashboard.New(api, panel, dashboard.Options{
		Symbol:       cfg.Symbol,
		LookbackDays: cfg.LookbackDays,
	}, listeners...)

	if err := dash.LoadStocks(ctx); err != nil {
		log.Warn().Err(err).Msg("Continuing without stock list")
	}
	settings := dash.LoadSettings(ctx)
	if err := dash.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial refresh failed")
	}

	// 7. Periodic refresh
	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.New(dash)
		if err := sched.Start(ctx, settings.UpdateFrequency); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
		defer sched.Stop()
	}

	// 8. HTTP surface
	var rescheduler server.Rescheduler
	if sched != nil {
		rescheduler = sched
	}
	srv := server.New(dash, hub, rescheduler)
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Stock Anomaly Dashboard stopped")
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("APIBaseURL", cfg.APIBaseURL).
		Str("Symbol", cfg.Symbol).
		Int("LookbackDays", cfg.LookbackDays).
		Int("RequestTimeout", cfg.RequestTimeout).
		Int("RequestsPerSec", cfg.RequestsPerSec).
		Int("MaxRetries", cfg.MaxRetries).
		Str("ListenAddr", cfg.ListenAddr).
		Int("ChartWidth", cfg.ChartWidth).
		Bool("TelegramAlerts", cfg.TelegramEnabled()).
		Bool("EnableScheduler", cfg.EnableScheduler).
		Msg("Configuration loaded")
}
