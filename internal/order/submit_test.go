package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ikorka/orderbot/internal/repository"
	"github.com/ikorka/orderbot/internal/session"
)

type fakeInserter struct {
	nextID int64
	err    error
	calls  int
	last   repository.Order
}

func (f *fakeInserter) Insert(_ context.Context, o repository.Order) (int64, error) {
	f.calls++
	f.last = o
	if f.err != nil {
		return 0, f.err
	}
	return f.nextID, nil
}

type fakeNotifier struct {
	err   error
	calls int
	last  string
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	f.calls++
	f.last = text
	if f.err != nil {
		return f.err
	}
	return nil
}

func TestSubmitHappyPath(t *testing.T) {
	ins := &fakeInserter{nextID: 42}
	not := &fakeNotifier{}
	s := NewSubmitter(ins, not)

	req := Requester{ID: 7, FullName: "Иван", Username: "ivan"}
	sub := s.Submit(context.Background(), req, session.Fields{Quantity: "2", ExtraInfo: ""})

	if sub.Outcome != SubmitOK || sub.OrderID != 42 {
		t.Fatalf("submission = %+v", sub)
	}
	if ins.calls != 1 || not.calls != 1 {
		t.Fatalf("calls: insert=%d notify=%d", ins.calls, not.calls)
	}
	if ins.last.TgUserID != 7 || ins.last.ProfileLink != "tg://user?id=7" {
		t.Fatalf("stored order: %+v", ins.last)
	}
	if ins.last.ExtraInfo != "" {
		t.Fatalf("extra info must be stored raw, got %q", ins.last.ExtraInfo)
	}
	if !strings.Contains(not.last, "Новый заказ № 42") {
		t.Fatalf("summary:\n%s", not.last)
	}
	// Stored stamps must equal the ones rendered into the summary.
	if !strings.Contains(not.last, ins.last.DatetimeMoscow) ||
		!strings.Contains(not.last, ins.last.DatetimeKhabarovsk) {
		t.Fatalf("summary and row stamps differ:\n%s\nrow: %q %q",
			not.last, ins.last.DatetimeMoscow, ins.last.DatetimeKhabarovsk)
	}
}

func TestSubmitPersistFailure(t *testing.T) {
	ins := &fakeInserter{err: errors.New("db down")}
	not := &fakeNotifier{}
	s := NewSubmitter(ins, not)

	sub := s.Submit(context.Background(), Requester{ID: 7}, session.Fields{})

	if sub.Outcome != SubmitPersistFailed {
		t.Fatalf("outcome = %v", sub.Outcome)
	}
	if sub.OrderID != 0 {
		t.Fatalf("order id = %d, want 0", sub.OrderID)
	}
	if not.calls != 0 {
		t.Fatal("operator must not be notified when persist fails")
	}
}

func TestSubmitDispatchFailureKeepsOrderID(t *testing.T) {
	ins := &fakeInserter{nextID: 42}
	not := &fakeNotifier{err: errors.New("channel unreachable")}
	s := NewSubmitter(ins, not)

	sub := s.Submit(context.Background(), Requester{ID: 7}, session.Fields{})

	if sub.Outcome != SubmitDispatchFailed || sub.OrderID != 42 {
		t.Fatalf("submission = %+v", sub)
	}
	if sub.Moscow == "" || sub.Khabarovsk == "" {
		t.Fatalf("dispatch failure must carry the attempt stamps: %+v", sub)
	}
	if sub.Moscow != ins.last.DatetimeMoscow || sub.Khabarovsk != ins.last.DatetimeKhabarovsk {
		t.Fatalf("submission stamps %q %q differ from row %q %q",
			sub.Moscow, sub.Khabarovsk, ins.last.DatetimeMoscow, ins.last.DatetimeKhabarovsk)
	}
}

func TestSubmitRetryKeepsOriginalStamps(t *testing.T) {
	ins := &fakeInserter{nextID: 99}
	not := &fakeNotifier{}
	s := NewSubmitter(ins, not)

	// The summary of a dispatch retry must show the time of the persisted
	// row, not the time of the retry.
	sub := s.Submit(context.Background(), Requester{ID: 7}, session.Fields{
		PendingOrderID:    42,
		PendingMoscow:     "2026-01-01 00:30",
		PendingKhabarovsk: "2026-01-01 07:30",
	})

	if sub.Outcome != SubmitOK || sub.OrderID != 42 {
		t.Fatalf("submission = %+v", sub)
	}
	if !strings.Contains(not.last, "2026-01-01 00:30") ||
		!strings.Contains(not.last, "2026-01-01 07:30") {
		t.Fatalf("retry summary lost the original stamps:\n%s", not.last)
	}
}

func TestSubmitRetrySkipsInsert(t *testing.T) {
	ins := &fakeInserter{nextID: 99}
	not := &fakeNotifier{}
	s := NewSubmitter(ins, not)

	// A pending id from a failed dispatch must be reused, not re-inserted.
	sub := s.Submit(context.Background(), Requester{ID: 7}, session.Fields{PendingOrderID: 42})

	if ins.calls != 0 {
		t.Fatalf("insert called %d times on retry", ins.calls)
	}
	if sub.Outcome != SubmitOK || sub.OrderID != 42 {
		t.Fatalf("submission = %+v", sub)
	}
	if !strings.Contains(not.last, "Новый заказ № 42") {
		t.Fatalf("summary:\n%s", not.last)
	}
}

func TestSubmitForwardOnly(t *testing.T) {
	not := &fakeNotifier{}
	s := NewSubmitter(nil, not)

	sub := s.Submit(context.Background(), Requester{ID: 7}, session.Fields{Quantity: "1"})

	if sub.Outcome != SubmitOK || sub.OrderID != 0 {
		t.Fatalf("submission = %+v", sub)
	}
	if strings.Contains(not.last, "№") {
		t.Fatalf("forward-only summary must not carry a number:\n%s", not.last)
	}
}
