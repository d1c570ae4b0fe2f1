// Package config loads bot configuration from a YAML file with
// environment overrides and validates it before the process serves.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ikorka/orderbot/internal/database"
)

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// TelegramConfig holds Telegram bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// OperatorConfig identifies the channel that receives order summaries.
// ChannelID stays raw here so Normalize can report a precise error for
// non-numeric values; the parsed id is exposed via Config.OperatorChannelID.
type OperatorConfig struct {
	ChannelID string `yaml:"channel_id" envconfig:"CHANNEL_ID"`
}

// SessionConfig selects the conversation session store.
// Empty RedisURL means the in-memory store.
type SessionConfig struct {
	RedisURL string `yaml:"redis_url" envconfig:"REDIS_URL"`
}

// OrderConfig holds the intake flow policy knobs.
type OrderConfig struct {
	// StrictQuantity requires the quantity step to be a positive integer
	// and switches prompts to the single-product menu.
	StrictQuantity bool `yaml:"strict_quantity" envconfig:"ORDER_STRICT_QUANTITY"`
	// ForwardOnly disables order persistence: summaries are forwarded to
	// the operator channel without a database row.
	ForwardOnly bool `yaml:"forward_only" envconfig:"ORDER_FORWARD_ONLY"`
	// IdleTimeoutSeconds expires abandoned conversations; 0 -> 540.
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds" envconfig:"ORDER_IDLE_TIMEOUT_SECONDS"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	File    string `yaml:"file"`
	Profile string `yaml:"profile"`
}

// RateLimitConfig holds settings for per-user rate limiting.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Operator  OperatorConfig  `yaml:"operator"`
	Database  database.Config `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Order     OrderConfig     `yaml:"order"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// OperatorChannelID is the parsed operator destination, set by Normalize.
	OperatorChannelID int64 `yaml:"-"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and adjusts defaults. The process
// must refuse to serve on any error here rather than run half-configured.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}

	rawChannel := strings.TrimSpace(cfg.Operator.ChannelID)
	if rawChannel == "" {
		return fmt.Errorf("operator.channel_id is required")
	}
	channelID, err := strconv.ParseInt(rawChannel, 10, 64)
	if err != nil {
		return fmt.Errorf("operator.channel_id must be an integer like -1001234567890, got %q", rawChannel)
	}
	cfg.OperatorChannelID = channelID

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if !cfg.Order.ForwardOnly {
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required unless order.forward_only is set")
		}
		if strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.name is required unless order.forward_only is set")
		}
	}

	if cfg.Order.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("order.idle_timeout_seconds must be >= 0")
	}
	if cfg.Order.IdleTimeoutSeconds == 0 {
		cfg.Order.IdleTimeoutSeconds = 540
	}

	return nil
}
