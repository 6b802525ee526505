// tradefetch fetches one trade by guid and prints the notification that
// would be sent for it. Useful for checking formatting against the live
// feed without posting anything.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/thetawatch/thetawatch/internal/config"
	"github.com/thetawatch/thetawatch/internal/logger"
	"github.com/thetawatch/thetawatch/internal/notify"
	"github.com/thetawatch/thetawatch/internal/strategy"
	"github.com/thetawatch/thetawatch/internal/thetagang"
	"github.com/thetawatch/thetawatch/internal/trade"
	"github.com/thetawatch/thetawatch/internal/tradespec"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	guid       = flag.String("guid", "", "Trade guid to fetch")
)

func main() {
	flag.Parse()

	if *guid == "" {
		log.Fatal("Usage: tradefetch -guid <trade-guid> [-config <path>]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	client := thetagang.NewClient(
		cfg.ThetaGang.APIBaseURL,
		cfg.ThetaGang.TradesAPIKey,
		cfg.ThetaGang.Timeout,
		cfg.ThetaGang.MaxRetries,
		cfg.ThetaGang.RetryDelayBase,
	)

	registry, err := tradespec.NewRegistry()
	if err != nil {
		logger.Fatal("Failed to load trade specs: %v", err)
	}
	classifier := trade.NewClassifier(registry, strategy.NewFactory())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record, err := client.Trade(ctx, *guid)
	if err != nil {
		logger.Fatal("Failed to fetch trade: %v", err)
	}

	t, err := classifier.Classify(record)
	if err != nil {
		logger.Fatal("Failed to classify trade: %v", err)
	}

	builder := &notify.PayloadBuilder{
		OpeningIconURL: cfg.Discord.OpeningIconURL,
		ClosingIconURL: cfg.Discord.ClosingIconURL,
		ColorWinner:    cfg.Discord.ColorWinner,
		ColorLoser:     cfg.Discord.ColorLoser,
		ColorAssigned:  cfg.Discord.ColorAssigned,
		TransparentPNG: cfg.Discord.TransparentPNG,
	}
	payload := builder.Trade(t)

	fmt.Printf("Trade:       %s %s (%s)\n", t.Data.Symbol, t.Data.Type, t.Status)
	fmt.Printf("URL:         %s\n", t.URL())
	fmt.Printf("Author:      %s\n", payload.AuthorName)
	fmt.Printf("Title:       %s\n", payload.Title)
	if payload.Description != "" {
		fmt.Printf("Description: %s\n", payload.Description)
	}
	if payload.Color != "" {
		fmt.Printf("Color:       #%s\n", payload.Color)
	}
	if payload.FooterText != "" {
		fmt.Printf("Note:        %s\n", payload.FooterText)
	}
}
