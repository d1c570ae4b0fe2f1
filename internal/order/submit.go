package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ikorka/orderbot/internal/logger"
	"github.com/ikorka/orderbot/internal/repository"
	"github.com/ikorka/orderbot/internal/session"
)

// Outcome classifies a submission attempt. The flow keeps or clears the
// session based on it, so the two failure modes must stay distinct.
type Outcome int

const (
	// SubmitOK means the order is persisted (unless forward-only) and
	// the operator channel received the summary.
	SubmitOK Outcome = iota
	// SubmitPersistFailed means the insert failed. Nothing was sent to
	// operators and no order id exists yet.
	SubmitPersistFailed
	// SubmitDispatchFailed means the row exists but the operator
	// message was not delivered. The pending id must be kept so a retry
	// does not insert a duplicate.
	SubmitDispatchFailed
)

// RepliesFor maps a submission outcome to the user-facing replies.
func RepliesFor(outcome Outcome) []Reply {
	if outcome == SubmitOK {
		return []Reply{{Text: textOrderAccepted, Keyboard: KeyboardNewOrder}}
	}
	return []Reply{{Text: textSubmitFailed}}
}

// Inserter persists one order row and returns its id.
type Inserter interface {
	Insert(ctx context.Context, o repository.Order) (int64, error)
}

// Notifier delivers the summary to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Submitter runs the two-step accept protocol: persist, then dispatch.
type Submitter struct {
	orders   Inserter // nil in forward-only mode
	notifier Notifier
	now      func() time.Time
}

// NewSubmitter constructs a submitter. Pass a nil Inserter to run
// forward-only, summaries go to operators without a database row.
func NewSubmitter(orders Inserter, notifier Notifier) *Submitter {
	return &Submitter{orders: orders, notifier: notifier, now: time.Now}
}

// Submission is the result of one attempt. Moscow and Khabarovsk are the
// timestamps the attempt used; on a dispatch failure the flow stores them
// with the pending order so a retry renders the same time.
type Submission struct {
	Outcome    Outcome
	OrderID    int64
	Moscow     string
	Khabarovsk string
	Err        error
}

// Submit persists the collected fields and dispatches the operator
// summary. A non-zero f.PendingOrderID skips the insert and retries only
// the dispatch, so a user resending the last answer after a delivery
// failure cannot create duplicate rows.
func (s *Submitter) Submit(ctx context.Context, req Requester, f session.Fields) Submission {
	start := s.now()
	// A retry after a dispatch failure keeps the stamps of the original
	// attempt, the summary must show the time of the persisted row.
	moscow, khabarovsk := f.PendingMoscow, f.PendingKhabarovsk
	if moscow == "" || khabarovsk == "" {
		moscow, khabarovsk = CaptureStamps(start)
	}

	orderID := f.PendingOrderID
	if orderID == 0 && s.orders != nil {
		id, err := s.orders.Insert(ctx, repository.Order{
			TgUserID:           req.ID,
			FullName:           req.FullName,
			Username:           req.Username,
			ProfileLink:        req.ProfileLink(),
			PhoneContact:       f.PhoneContact,
			PhoneManual:        f.PhoneManual,
			FioReceiver:        f.FullName,
			Address:            f.Address,
			Quantity:           f.Quantity,
			ExtraInfo:          f.ExtraInfo,
			DatetimeMoscow:     moscow,
			DatetimeKhabarovsk: khabarovsk,
		})
		if err != nil {
			logger.Orders.Error("order persist failed",
				slog.String("event", "order.submit"),
				slog.String("status", "fail"),
				slog.Int64("user_id", req.ID),
				slog.String("err", err.Error()),
			)
			return Submission{
				Outcome: SubmitPersistFailed,
				Err:     fmt.Errorf("persist order: %w", err),
			}
		}
		orderID = id
	}

	summary := Summary(orderID, req, f, moscow, khabarovsk)
	if err := s.notifier.Notify(ctx, summary); err != nil {
		logger.Orders.Error("operator dispatch failed",
			slog.String("event", "order.dispatch"),
			slog.String("status", "fail"),
			slog.Int64("order_id", orderID),
			slog.Int64("user_id", req.ID),
			slog.String("err", err.Error()),
		)
		return Submission{
			Outcome:    SubmitDispatchFailed,
			OrderID:    orderID,
			Moscow:     moscow,
			Khabarovsk: khabarovsk,
			Err:        fmt.Errorf("dispatch order summary: %w", err),
		}
	}

	logger.Orders.Info("order accepted",
		slog.String("event", "order.submit"),
		slog.String("status", "ok"),
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", req.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return Submission{Outcome: SubmitOK, OrderID: orderID}
}
