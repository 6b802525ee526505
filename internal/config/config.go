package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	ThetaGang ThetaGangConfig `mapstructure:"thetagang"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Discord   DiscordConfig   `mapstructure:"discord"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ThetaGangConfig holds upstream thetagang.com API configuration
type ThetaGangConfig struct {
	APIBaseURL        string        `mapstructure:"api_base_url"`
	TradesAPIKey      string        `mapstructure:"trades_api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelayBase    time.Duration `mapstructure:"retry_delay_base"`
	TradePollInterval time.Duration `mapstructure:"trade_poll_interval"`
	TrendPollInterval time.Duration `mapstructure:"trend_poll_interval"`
}

// QueueConfig holds change-detection queue configuration
type QueueConfig struct {
	AllowedRoles []string      `mapstructure:"allowed_roles"`
	SkippedUsers []string      `mapstructure:"skipped_users"`
	MaxTradeAge  time.Duration `mapstructure:"max_trade_age"`
}

// StorageConfig holds persistent state store configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// DiscordConfig holds Discord webhook notification configuration
type DiscordConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	TradesWebhookURL string `mapstructure:"trades_webhook_url"`
	TrendsWebhookURL string `mapstructure:"trends_webhook_url"`
	Username         string `mapstructure:"username"`
	OpeningIconURL   string `mapstructure:"opening_icon_url"`
	ClosingIconURL   string `mapstructure:"closing_icon_url"`
	ColorWinner      string `mapstructure:"color_winner"`
	ColorLoser       string `mapstructure:"color_loser"`
	ColorAssigned    string `mapstructure:"color_assigned"`
	TransparentPNG   string `mapstructure:"transparent_png"`
	MaxRetries       int    `mapstructure:"max_retries"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("THETAWATCH")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// thetagang.com defaults
	v.SetDefault("thetagang.api_base_url", "https://api3.thetagang.com")
	v.SetDefault("thetagang.timeout", "15s")
	v.SetDefault("thetagang.max_retries", 3)
	v.SetDefault("thetagang.retry_delay_base", "1s")
	v.SetDefault("thetagang.trade_poll_interval", "15s")
	v.SetDefault("thetagang.trend_poll_interval", "60s")

	// Queue defaults
	v.SetDefault("queue.allowed_roles", []string{"patron", "joonie"})
	v.SetDefault("queue.skipped_users", []string{})
	v.SetDefault("queue.max_trade_age", "24h")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/thetawatch.db")

	// Discord defaults
	v.SetDefault("discord.enabled", true)
	v.SetDefault("discord.username", "🤠 🤖")
	v.SetDefault("discord.opening_icon_url", "https://images.emojiterra.com/google/noto-emoji/v2.034/512px/1f680.png")
	v.SetDefault("discord.closing_icon_url", "https://images.emojiterra.com/google/noto-emoji/v2.034/512px/1f3c1.png")
	v.SetDefault("discord.color_winner", "008000")
	v.SetDefault("discord.color_loser", "D42020")
	v.SetDefault("discord.color_assigned", "FFBF00")
	v.SetDefault("discord.transparent_png", "https://major.io/transparent.png")
	v.SetDefault("discord.max_retries", 3)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate thetagang config
	if c.ThetaGang.APIBaseURL == "" {
		return fmt.Errorf("thetagang.api_base_url is required")
	}
	if c.ThetaGang.TradePollInterval < 5*time.Second {
		return fmt.Errorf("thetagang.trade_poll_interval must be at least 5 seconds")
	}
	if c.ThetaGang.TrendPollInterval < 5*time.Second {
		return fmt.Errorf("thetagang.trend_poll_interval must be at least 5 seconds")
	}
	if c.ThetaGang.Timeout < 1*time.Second {
		return fmt.Errorf("thetagang.timeout must be at least 1 second")
	}

	// Validate queue config
	if len(c.Queue.AllowedRoles) == 0 {
		return fmt.Errorf("queue.allowed_roles must contain at least one role")
	}
	if c.Queue.MaxTradeAge < 1*time.Hour {
		return fmt.Errorf("queue.max_trade_age must be at least 1 hour")
	}

	// Validate storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	// Validate Discord config
	if c.Discord.Enabled {
		if c.Discord.TradesWebhookURL == "" {
			return fmt.Errorf("discord.trades_webhook_url is required when discord is enabled")
		}
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return nil
}
