package telegram

import (
	"context"
	"log/slog"
	"sort"

	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/logger"
)

// Command represents a bot command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
}

// Registry holds slash commands and the catch-all handlers for text and
// contact updates.
type Registry struct {
	commands     map[string]Command
	textFallback tele.HandlerFunc
	contact      tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// RegisterCommand adds a new slash command.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil || name == "" || cmd.Handler == nil {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("event", "register.command"),
			slog.String("payload", name),
		)
		return
	}
	if name[0] != '/' {
		name = "/" + name
	}
	if _, exists := r.commands[name]; exists {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("event", "register.command"),
			slog.String("payload", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// ListCommands returns the visible command menu sorted by name.
func (r *Registry) ListCommands() []tele.Command {
	var list []tele.Command
	for name, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// SetTextFallback sets the handler for text messages no command claims.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// SetContactHandler sets the handler for shared-contact messages.
func (r *Registry) SetContactHandler(h tele.HandlerFunc) {
	r.contact = h
}

// ContactHandler returns the current contact handler.
func (r *Registry) ContactHandler() tele.HandlerFunc {
	return r.contact
}

// InitBotCommands publishes the command menu to Telegram and binds every
// registered handler plus the text and contact catch-alls.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	for name, cmd := range reg.Commands() {
		bot.Handle(name, cmd.Handler)
	}
	if h := reg.TextFallback(); h != nil {
		bot.Handle(tele.OnText, h)
	}
	if h := reg.ContactHandler(); h != nil {
		bot.Handle(tele.OnContact, h)
	}

	if list := reg.ListCommands(); len(list) > 0 {
		if err := bot.SetCommands(list); err != nil {
			logger.TG.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
				slog.String("event", "register.command"),
				slog.String("err", err.Error()),
			)
		}
	}
}
