// Package middleware holds the global bot middleware chain.
package middleware

import (
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/logger"
)

// RecoverMiddleware catches panics in handlers so one poisoned update
// cannot crash the bot. onPanic, if set, runs after logging and usually
// resets the user's conversation and sends an apology.
func RecoverMiddleware(onPanic tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.TG.Error("panic recovered",
						slog.String("event", "tg.panic"),
						slog.Int("update_id", c.Update().ID),
						slog.Any("err", r),
						slog.String("stack", string(debug.Stack())),
					)
					if onPanic != nil {
						_ = onPanic(c)
					}
				}
			}()
			return next(c)
		}
	}
}
