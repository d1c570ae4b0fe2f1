package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/logger"
)

// ChannelNotifier delivers order summaries to the operator channel.
// Delivery is synchronous: the submit protocol must know whether the
// operators actually received the summary.
type ChannelNotifier struct {
	bot       *tele.Bot
	channelID int64
}

// NewChannelNotifier builds a notifier bound to the operator channel id.
// The bot may be nil at construction and attached later via Bind.
func NewChannelNotifier(bot *tele.Bot, channelID int64) *ChannelNotifier {
	return &ChannelNotifier{bot: bot, channelID: channelID}
}

// Bind attaches the live bot. Must happen before updates flow.
func (n *ChannelNotifier) Bind(bot *tele.Bot) {
	n.bot = bot
}

// Notify sends plain text to the channel. Telegram-side retries are
// handled by the bot's HTTP client.
func (n *ChannelNotifier) Notify(ctx context.Context, text string) error {
	if n.bot == nil {
		return fmt.Errorf("notifier: bot is not ready")
	}

	start := time.Now()
	_, err := n.bot.Send(&tele.Chat{ID: n.channelID}, text)
	if err != nil {
		return fmt.Errorf("send to channel %d: %w", n.channelID, err)
	}

	logger.TG.Debug("summary delivered",
		slog.String("event", "notify.channel"),
		slog.Int64("chat_id", n.channelID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
