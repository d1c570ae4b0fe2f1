package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/bot"
	"github.com/ikorka/orderbot/internal/config"
	"github.com/ikorka/orderbot/internal/database"
	"github.com/ikorka/orderbot/internal/logger"
	"github.com/ikorka/orderbot/internal/order"
	"github.com/ikorka/orderbot/internal/repository"
	"github.com/ikorka/orderbot/internal/session"
	"github.com/ikorka/orderbot/internal/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("orderbot: %v", err)
	}
}

func run() error {
	// Missing .env is fine, env vars may come from the environment.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		File:    cfg.Logging.File,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	var inserter order.Inserter
	if !cfg.Order.ForwardOnly {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.RunMigrations(cfg.Database); err != nil {
			return err
		}
		inserter = repository.NewOrders(db)
	} else {
		logger.Orders.Info("forward-only mode, orders are not persisted",
			slog.String("event", "mode"),
		)
	}

	store, closeStore := buildSessionStore(cfg)
	defer closeStore()

	notifier := telegram.NewChannelNotifier(nil, cfg.OperatorChannelID)

	flow := bot.NewFlow(bot.FlowOptions{
		Store:     store,
		Submitter: order.NewSubmitter(inserter, notifier),
		Policy: order.Policy{
			StrictQuantity: cfg.Order.StrictQuantity,
		},
		IdleTimeout: time.Duration(cfg.Order.IdleTimeoutSeconds) * time.Second,
	})

	handlers := bot.NewHandlers(flow)
	reg := telegram.NewRegistry()
	handlers.Register(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()
	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: telegram.DefaultMiddlewares(cfg, handlers.OnPanic),
		OnStart: func(ctx context.Context, b *tele.Bot) error {
			notifier.Bind(b)
			logger.L.With("component", "app").Info("app ready",
				slog.String("event", "ready"),
				slog.Duration("duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, b *tele.Bot) error {
			logger.L.With("component", "app").Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			return nil
		},
	})
}

// buildSessionStore prefers Redis when configured and falls back to the
// in-memory store so a missing Redis never blocks startup.
func buildSessionStore(cfg *config.Config) (session.Store, func()) {
	if cfg.Session.RedisURL == "" {
		logger.Sessions.Info("using in-memory session store",
			slog.String("event", "session.store"),
		)
		return session.NewMemoryStore(), func() {}
	}

	redisStore, err := session.NewRedisStore(cfg.Session.RedisURL)
	if err != nil {
		logger.Sessions.Warn("redis unavailable, falling back to memory store",
			slog.String("event", "session.store"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return session.NewMemoryStore(), func() {}
	}

	logger.Sessions.Info("using redis session store",
		slog.String("event", "session.store"),
	)
	return redisStore, func() {
		if err := redisStore.Close(); err != nil {
			logger.Sessions.Warn("redis close failed",
				slog.String("event", "session.store"),
				slog.String("err", err.Error()),
			)
		}
	}
}
