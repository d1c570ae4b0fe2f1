// Package bot orchestrates the order conversation: it owns the session
// lifecycle around the pure transition machine and adapts the result to
// the Telegram transport.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/ikorka/orderbot/internal/logger"
	"github.com/ikorka/orderbot/internal/order"
	"github.com/ikorka/orderbot/internal/session"
)

// Incoming is one normalized update from the transport.
type Incoming struct {
	UserID   int64
	FullName string
	Username string

	Command string
	Text    string
	Contact *order.Contact
}

// Flow drives one user's conversation per incoming message.
type Flow struct {
	store     session.Store
	locks     *session.Locks
	submitter *order.Submitter

	policy      order.Policy
	idleTimeout time.Duration

	now func() time.Time
}

// FlowOptions configures NewFlow.
type FlowOptions struct {
	Store       session.Store
	Submitter   *order.Submitter
	Policy      order.Policy
	IdleTimeout time.Duration
}

// NewFlow constructs the conversation orchestrator.
func NewFlow(opts FlowOptions) *Flow {
	return &Flow{
		store:       opts.Store,
		locks:       session.NewLocks(),
		submitter:   opts.Submitter,
		policy:      opts.Policy,
		idleTimeout: opts.IdleTimeout,
		now:         time.Now,
	}
}

func isRestart(in Incoming) bool {
	return in.Command == "/start" || in.Text == order.BtnNewOrder
}

// HandleMessage processes one update under the user's lock and returns
// the replies to send. Session store failures degrade to a fresh idle
// session rather than dropping the update.
func (f *Flow) HandleMessage(ctx context.Context, in Incoming) []order.Reply {
	unlock := f.locks.Lock(in.UserID)
	defer unlock()

	now := f.now()

	s, err := f.store.Get(ctx, in.UserID)
	if err != nil {
		logger.Sessions.Warn("session load failed",
			slog.String("event", "session.load"),
			slog.String("status", "fail"),
			slog.Int64("user_id", in.UserID),
			slog.String("err", err.Error()),
		)
		s = session.NewSession(in.UserID)
	}

	// An abandoned conversation gets one notice and a clean slate. A
	// restart input skips the notice, the user is starting over anyway.
	if s.State != session.StateIdle && session.Expired(s, now, f.idleTimeout) && !isRestart(in) {
		f.clear(ctx, in.UserID)
		logger.Sessions.Info("idle session expired",
			slog.String("event", "session.expire"),
			slog.Int64("user_id", in.UserID),
			slog.Int("idle_s", int(now.Sub(s.LastActivity)/time.Second)),
		)
		return []order.Reply{{Text: order.TextIdleNotice, Keyboard: order.KeyboardRemove}}
	}

	res := order.Advance(s.State, s.Fields, order.Input{
		Command: in.Command,
		Text:    in.Text,
		Contact: in.Contact,
	}, f.policy)

	if res.Next != s.State {
		logger.Orders.Debug("state transition",
			slog.String("event", "flow.transition"),
			slog.Int64("user_id", in.UserID),
			slog.String("from_state", string(s.State)),
			slog.String("to_state", string(res.Next)),
		)
	}

	if res.Submit {
		return f.submit(ctx, in, res, now)
	}

	if res.Next == session.StateIdle {
		f.clear(ctx, in.UserID)
	} else {
		f.put(ctx, &session.Session{
			UserID:       in.UserID,
			State:        res.Next,
			Fields:       res.Fields,
			LastActivity: now,
		})
	}

	return res.Replies
}

// submit runs the accept protocol and updates the session to match the
// outcome: success clears it, a failure keeps the collected fields so
// the user's next message retries the final step.
func (f *Flow) submit(ctx context.Context, in Incoming, res order.Result, now time.Time) []order.Reply {
	req := order.Requester{ID: in.UserID, FullName: in.FullName, Username: in.Username}
	sub := f.submitter.Submit(ctx, req, res.Fields)

	switch sub.Outcome {
	case order.SubmitOK:
		f.clear(ctx, in.UserID)
	case order.SubmitDispatchFailed:
		fields := res.Fields
		fields.PendingOrderID = sub.OrderID
		fields.PendingMoscow = sub.Moscow
		fields.PendingKhabarovsk = sub.Khabarovsk
		f.put(ctx, &session.Session{
			UserID:       in.UserID,
			State:        res.Next,
			Fields:       fields,
			LastActivity: now,
		})
	default: // SubmitPersistFailed
		f.put(ctx, &session.Session{
			UserID:       in.UserID,
			State:        res.Next,
			Fields:       res.Fields,
			LastActivity: now,
		})
	}

	return order.RepliesFor(sub.Outcome)
}

// Reset drops the user's conversation, used by the panic recovery path.
func (f *Flow) Reset(ctx context.Context, userID int64) {
	unlock := f.locks.Lock(userID)
	defer unlock()
	f.clear(ctx, userID)
}

func (f *Flow) clear(ctx context.Context, userID int64) {
	if err := f.store.Clear(ctx, userID); err != nil {
		logger.Sessions.Warn("session clear failed",
			slog.String("event", "session.clear"),
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (f *Flow) put(ctx context.Context, s *session.Session) {
	if err := f.store.Put(ctx, s); err != nil {
		logger.Sessions.Warn("session save failed",
			slog.String("event", "session.save"),
			slog.String("status", "fail"),
			slog.Int64("user_id", s.UserID),
			slog.String("err", err.Error()),
		)
	}
}
