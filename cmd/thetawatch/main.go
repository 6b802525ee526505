package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thetawatch/thetawatch/internal/config"
	"github.com/thetawatch/thetawatch/internal/logger"
	"github.com/thetawatch/thetawatch/internal/notify"
	"github.com/thetawatch/thetawatch/internal/queue"
	"github.com/thetawatch/thetawatch/internal/schedule"
	"github.com/thetawatch/thetawatch/internal/storage"
	"github.com/thetawatch/thetawatch/internal/strategy"
	"github.com/thetawatch/thetawatch/internal/thetagang"
	"github.com/thetawatch/thetawatch/internal/trade"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

// app bundles everything a polling cycle needs.
type app struct {
	cfg           *config.Config
	client        *thetagang.Client
	store         *storage.Store
	queue         *queue.Queue
	classifier    *trade.Classifier
	builder       *notify.PayloadBuilder
	discordTrades *notify.Discord
	discordTrends *notify.Discord
	telegram      *notify.Telegram
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	// Initialize persistent state store
	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to open state store: %v", err)
	}
	defer store.Close()

	// Initialize thetagang.com client
	client := thetagang.NewClient(
		cfg.ThetaGang.APIBaseURL,
		cfg.ThetaGang.TradesAPIKey,
		cfg.ThetaGang.Timeout,
		cfg.ThetaGang.MaxRetries,
		cfg.ThetaGang.RetryDelayBase,
	)

	// Initialize trade classification
	registry, err := tradespec.NewRegistry()
	if err != nil {
		logger.Fatal("Failed to load trade specs: %v", err)
	}
	classifier := trade.NewClassifier(registry, strategy.NewFactory())

	// Initialize change-detection queue
	q := queue.New(store, registry, cfg.Queue.AllowedRoles, cfg.Queue.SkippedUsers, cfg.Queue.MaxTradeAge)

	a := &app{
		cfg:        cfg,
		client:     client,
		store:      store,
		queue:      q,
		classifier: classifier,
		builder: &notify.PayloadBuilder{
			OpeningIconURL: cfg.Discord.OpeningIconURL,
			ClosingIconURL: cfg.Discord.ClosingIconURL,
			ColorWinner:    cfg.Discord.ColorWinner,
			ColorLoser:     cfg.Discord.ColorLoser,
			ColorAssigned:  cfg.Discord.ColorAssigned,
			TransparentPNG: cfg.Discord.TransparentPNG,
		},
	}

	if cfg.Discord.Enabled {
		a.discordTrades = notify.NewDiscord(cfg.Discord.TradesWebhookURL, cfg.Discord.Username, cfg.Discord.MaxRetries)
		if cfg.Discord.TrendsWebhookURL != "" {
			a.discordTrends = notify.NewDiscord(cfg.Discord.TrendsWebhookURL, cfg.Discord.Username, cfg.Discord.MaxRetries)
		}
		logger.Info("Discord notifications enabled")
	}

	if cfg.Telegram.Enabled {
		a.telegram, err = notify.NewTelegram(
			cfg.Telegram.BotToken,
			cfg.Telegram.ChatID,
			cfg.Telegram.MaxRetries,
			cfg.Telegram.RetryDelayBase,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram notifications enabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	logger.Info("Starting thetawatch (trades: every %v, trends: every %v)",
		cfg.ThetaGang.TradePollInterval,
		cfg.ThetaGang.TrendPollInterval,
	)

	runner := schedule.New(ctx)
	if _, err := runner.Add(fmt.Sprintf("@every %s", cfg.ThetaGang.TradePollInterval), a.runTradeCycle); err != nil {
		logger.Fatal("Failed to schedule trade polling: %v", err)
	}
	if _, err := runner.Add(fmt.Sprintf("@every %s", cfg.ThetaGang.TrendPollInterval), a.runTrendCycle); err != nil {
		logger.Fatal("Failed to schedule trend polling: %v", err)
	}

	// Run initial polls immediately
	a.runTradeCycle(ctx)
	a.runTrendCycle(ctx)

	runner.Start()
	<-ctx.Done()
	runner.Stop()

	logger.Info("Service stopped")
}

// runTradeCycle polls the patron trade feed and announces new or
// status-changed trades.
func (a *app) runTradeCycle(ctx context.Context) {
	startTime := time.Now()
	logger.Debug("Starting trade cycle")

	batch, err := a.client.Trades(ctx)
	if err != nil {
		logger.Error("Trade cycle failed: %v", err)
		return
	}
	logger.Debug("Fetched %d trades", len(batch))

	detections, err := a.queue.Process(batch)
	if err != nil {
		logger.Error("Trade cycle failed: %v", err)
		return
	}

	for _, detection := range detections {
		t, err := a.classifier.Classify(detection.Record)
		if err != nil {
			logger.Error("Failed to classify trade %s: %v", detection.Record.GUID, err)
			continue
		}

		payload := a.builder.Trade(t)
		logger.Info("Announcing trade %s: %s %s %s", t.Data.GUID, t.Data.Symbol, t.Data.Type, detection.Status)

		if a.discordTrades != nil {
			if err := a.discordTrades.Send(ctx, payload); err != nil {
				logger.Error("Failed to send Discord notification for %s: %v", t.Data.GUID, err)
			}
		}
		if a.telegram != nil {
			if err := a.telegram.Send(payload); err != nil {
				logger.Error("Failed to send Telegram notification for %s: %v", t.Data.GUID, err)
			}
		}
	}

	tracked, err := a.store.CountTrades()
	if err != nil {
		logger.Error("Failed to count tracked trades: %v", err)
	}
	logger.Debug("Trade cycle completed in %v (%d announced, %d tracked)", time.Since(startTime), len(detections), tracked)
}

// runTrendCycle polls the trending symbols list and announces tickers that
// were not trending on the previous cycle.
func (a *app) runTrendCycle(ctx context.Context) {
	startTime := time.Now()
	logger.Debug("Starting trend cycle")

	current, err := a.client.Trends(ctx)
	if err != nil {
		logger.Error("Trend cycle failed: %v", err)
		return
	}

	previous, err := a.store.SeenTrends()
	if err != nil {
		logger.Error("Trend cycle failed: %v", err)
		return
	}

	seen := make(map[string]bool, len(previous))
	for _, symbol := range previous {
		seen[symbol] = true
	}

	var fresh []string
	for _, symbol := range current {
		if !seen[symbol] {
			fresh = append(fresh, symbol)
		}
	}

	if err := a.store.ReplaceTrends(current); err != nil {
		logger.Error("Failed to store trends: %v", err)
		return
	}

	for _, symbol := range fresh {
		logger.Info("Announcing new trending ticker: %s", symbol)
		if a.discordTrends != nil {
			if err := a.discordTrends.Send(ctx, a.builder.Trend(symbol)); err != nil {
				logger.Error("Failed to send trend notification for %s: %v", symbol, err)
			}
		}
	}

	logger.Debug("Trend cycle completed in %v (%d new)", time.Since(startTime), len(fresh))
}
