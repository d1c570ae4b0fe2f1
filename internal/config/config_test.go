package config

import (
	"strings"
	"testing"

	"github.com/ikorka/orderbot/internal/database"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		Operator: OperatorConfig{ChannelID: "-1001234567890"},
		Database: database.Config{Host: "localhost", Port: "5432", Name: "orders"},
	}
}

func TestNormalizeValid(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OperatorChannelID != -1001234567890 {
		t.Fatalf("channel id = %d", cfg.OperatorChannelID)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Order.IdleTimeoutSeconds != 540 {
		t.Fatalf("idle timeout default = %d", cfg.Order.IdleTimeoutSeconds)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Telegram.Token = "" },
			wantErr: "token is required",
		},
		{
			name:    "missing channel",
			mutate:  func(c *Config) { c.Operator.ChannelID = "" },
			wantErr: "channel_id is required",
		},
		{
			name:    "non numeric channel",
			mutate:  func(c *Config) { c.Operator.ChannelID = "@ops" },
			wantErr: "must be an integer",
		},
		{
			name:    "bad run mode",
			mutate:  func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" },
			wantErr: "invalid telegram.run_mode",
		},
		{
			name: "webhook without url",
			mutate: func(c *Config) {
				c.Telegram.RunMode = RunModeWebhook
				c.Webhook.Listen = "0.0.0.0"
				c.Webhook.Port = 8443
			},
			wantErr: "webhook.url is required",
		},
		{
			name:    "missing db without forward_only",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeForwardOnlySkipsDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database = database.Config{}
	cfg.Order.ForwardOnly = true
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("alias not normalized: %q", cfg.Telegram.RunMode)
	}
}
