package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/config"
	"github.com/ikorka/orderbot/internal/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: recover first,
// then rate limiting, then request logging and message metrics.
func DefaultMiddlewares(cfg *config.Config, onPanic tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware(onPanic)},
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use:  middleware.RateLimitMiddleware(middleware.RateLimitOptions{Interval: interval}),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return mws
}
