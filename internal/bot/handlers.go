package bot

import (
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/logger"
	"github.com/ikorka/orderbot/internal/order"
	"github.com/ikorka/orderbot/internal/telegram"
	tghelpers "github.com/ikorka/orderbot/internal/telegram/helpers"
	"github.com/ikorka/orderbot/internal/telegram/keyboard"
	"github.com/ikorka/orderbot/internal/telegram/middleware"
)

// Handlers binds the conversation flow to telebot endpoints.
type Handlers struct {
	flow *Flow
}

// NewHandlers wraps the flow for transport registration.
func NewHandlers(flow *Flow) *Handlers {
	return &Handlers{flow: flow}
}

// Register wires the command, text and contact endpoints.
func (h *Handlers) Register(reg *telegram.Registry) {
	reg.RegisterCommand("/start", telegram.Command{
		Handler:     h.onStart,
		Description: "Начать оформление заказа",
	})
	reg.SetTextFallback(h.onText)
	reg.SetContactHandler(h.onContact)
}

// OnPanic resets the sender's conversation and apologizes. Wired as the
// recover middleware callback.
func (h *Handlers) OnPanic(c tele.Context) error {
	if user := c.Sender(); user != nil {
		h.flow.Reset(tghelpers.BuildContext(c), user.ID)
	}
	return tghelpers.SendText(c, order.TextInternalError, keyboard.Remove())
}

func (h *Handlers) onStart(c tele.Context) error {
	return h.handle(c, "start", Incoming{Command: "/start"})
}

func (h *Handlers) onText(c tele.Context) error {
	text := c.Text()
	in := Incoming{Text: text}
	if strings.HasPrefix(text, "/") {
		in.Command = strings.Fields(text)[0]
	}
	return h.handle(c, "text", in)
}

func (h *Handlers) onContact(c tele.Context) error {
	in := Incoming{}
	if msg := c.Message(); msg != nil && msg.Contact != nil {
		in.Contact = &order.Contact{
			PhoneNumber: msg.Contact.PhoneNumber,
			UserID:      msg.Contact.UserID,
		}
	}
	return h.handle(c, "contact", in)
}

func (h *Handlers) handle(c tele.Context, name string, in Incoming) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	in.UserID = user.ID
	in.FullName = strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	in.Username = user.Username

	ctx := tghelpers.WithHandler(c, name)
	start := time.Now()

	replies := h.flow.HandleMessage(ctx, in)

	var err error
	for _, r := range replies {
		markup := keyboard.ForMachine(r.Keyboard)
		if r.HTML {
			err = tghelpers.SendHTML(c, r.Text, markup)
		} else {
			err = tghelpers.SendText(c, r.Text, markup)
		}
		if err != nil {
			break
		}
	}

	messages, kb := middleware.GetCounters(c)
	logger.LogEvent(ctx, nil, slog.LevelInfo, "handler.done",
		slog.String("handler", name),
		slog.String("status", logger.Status(err)),
		slog.Int("messages", messages),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}
