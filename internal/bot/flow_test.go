package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ikorka/orderbot/internal/order"
	"github.com/ikorka/orderbot/internal/repository"
	"github.com/ikorka/orderbot/internal/session"
)

type stubInserter struct {
	nextID int64
	err    error
	calls  int
	last   repository.Order
}

func (s *stubInserter) Insert(_ context.Context, o repository.Order) (int64, error) {
	s.calls++
	s.last = o
	if s.err != nil {
		return 0, s.err
	}
	return s.nextID, nil
}

type stubNotifier struct {
	err   error
	calls int
	last  string
}

func (s *stubNotifier) Notify(_ context.Context, text string) error {
	s.calls++
	s.last = text
	return s.err
}

type fixture struct {
	flow  *Flow
	store *session.MemoryStore
	ins   *stubInserter
	not   *stubNotifier
	clock time.Time
}

func newFixture(t *testing.T, pol order.Policy) *fixture {
	t.Helper()
	fx := &fixture{
		store: session.NewMemoryStore(),
		ins:   &stubInserter{nextID: 42},
		not:   &stubNotifier{},
		clock: time.Unix(1_700_000_000, 0),
	}
	fx.flow = NewFlow(FlowOptions{
		Store:       fx.store,
		Submitter:   order.NewSubmitter(fx.ins, fx.not),
		Policy:      pol,
		IdleTimeout: 540 * time.Second,
	})
	fx.flow.now = func() time.Time { return fx.clock }
	return fx
}

func (fx *fixture) send(t *testing.T, in Incoming) []order.Reply {
	t.Helper()
	if in.UserID == 0 {
		in.UserID = 7
	}
	if in.FullName == "" {
		in.FullName = "Иван Петров"
	}
	if in.Username == "" {
		in.Username = "ivan"
	}
	return fx.flow.HandleMessage(context.Background(), in)
}

func (fx *fixture) state(t *testing.T) *session.Session {
	t.Helper()
	s, err := fx.store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	return s
}

func TestFlowHappyPath(t *testing.T) {
	fx := newFixture(t, order.Policy{StrictQuantity: true})

	replies := fx.send(t, Incoming{Command: "/start"})
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardMain {
		t.Fatalf("greeting: %+v", replies)
	}

	fx.send(t, Incoming{Text: order.BtnStartOrder})
	if st := fx.state(t).State; st != order.StateAwaitingContact {
		t.Fatalf("state = %q", st)
	}

	// Plain text instead of the contact button must not advance.
	replies = fx.send(t, Incoming{Text: "+79990000000"})
	if st := fx.state(t).State; st != order.StateAwaitingContact {
		t.Fatalf("state after text = %q", st)
	}
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardContact {
		t.Fatalf("want contact reprompt, got %+v", replies)
	}

	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+79990000000", UserID: 7}})
	fx.send(t, Incoming{Text: "2"})
	fx.send(t, Incoming{Text: "Иванов И.И."})
	fx.send(t, Incoming{Text: "Москва, Тверская 1"})
	fx.send(t, Incoming{Text: "+7 999 111-22-33"})

	replies = fx.send(t, Incoming{Text: "-"})
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardNewOrder {
		t.Fatalf("confirmation: %+v", replies)
	}

	if fx.ins.calls != 1 {
		t.Fatalf("insert calls = %d", fx.ins.calls)
	}
	if fx.ins.last.ExtraInfo != "" {
		t.Fatalf("dash answer must store empty extra info, got %q", fx.ins.last.ExtraInfo)
	}
	if fx.ins.last.Quantity != "2" || fx.ins.last.FioReceiver != "Иванов И.И." {
		t.Fatalf("stored order: %+v", fx.ins.last)
	}
	if !strings.Contains(fx.not.last, "Новый заказ № 42") {
		t.Fatalf("summary:\n%s", fx.not.last)
	}

	if st := fx.state(t).State; st != session.StateIdle {
		t.Fatalf("session not cleared after accept: %q", st)
	}
}

func TestFlowIdleExpiry(t *testing.T) {
	fx := newFixture(t, order.Policy{})

	fx.send(t, Incoming{Command: "/start"})
	fx.send(t, Incoming{Text: order.BtnStartOrder})
	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})

	fx.clock = fx.clock.Add(600 * time.Second)

	// "5" arrives after the timeout, it must not become the quantity.
	replies := fx.send(t, Incoming{Text: "5"})
	if len(replies) != 1 || replies[0].Text != order.TextIdleNotice {
		t.Fatalf("want idle notice, got %+v", replies)
	}
	s := fx.state(t)
	if s.State != session.StateIdle || s.Fields.Quantity != "" {
		t.Fatalf("session not reset: %+v", s)
	}
	if fx.ins.calls != 0 {
		t.Fatal("nothing must be submitted on expiry")
	}
}

func TestFlowRestartSkipsIdleNotice(t *testing.T) {
	fx := newFixture(t, order.Policy{})

	fx.send(t, Incoming{Command: "/start"})
	fx.send(t, Incoming{Text: order.BtnStartOrder})

	fx.clock = fx.clock.Add(600 * time.Second)

	replies := fx.send(t, Incoming{Command: "/start"})
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardMain {
		t.Fatalf("restart after expiry must greet, got %+v", replies)
	}
}

func TestFlowPersistFailureKeepsFields(t *testing.T) {
	fx := newFixture(t, order.Policy{})
	fx.ins.err = errors.New("db down")

	fx.send(t, Incoming{Command: "/start"})
	fx.send(t, Incoming{Text: order.BtnStartOrder})
	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})
	fx.send(t, Incoming{Text: "2 банки"})
	fx.send(t, Incoming{Text: "Иванов И.И."})
	fx.send(t, Incoming{Text: "адрес"})
	fx.send(t, Incoming{Text: "+7999"})

	replies := fx.send(t, Incoming{Text: "позвоните вечером"})
	if len(replies) != 1 || replies[0].Keyboard == order.KeyboardNewOrder {
		t.Fatalf("failure reply: %+v", replies)
	}
	if fx.not.calls != 0 {
		t.Fatal("operator must not be notified when persist fails")
	}

	s := fx.state(t)
	if s.State != order.StateAwaitingExtraInfo {
		t.Fatalf("state = %q, want retry position", s.State)
	}
	if s.Fields.Quantity != "2 банки" || s.Fields.ExtraInfo != "позвоните вечером" {
		t.Fatalf("fields lost: %+v", s.Fields)
	}

	// The database recovers, resending the last answer completes the order.
	fx.ins.err = nil
	replies = fx.send(t, Incoming{Text: "позвоните вечером"})
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardNewOrder {
		t.Fatalf("retry reply: %+v", replies)
	}
	if fx.ins.calls != 2 || fx.not.calls != 1 {
		t.Fatalf("calls: insert=%d notify=%d", fx.ins.calls, fx.not.calls)
	}
}

func TestFlowDispatchFailureRetriesWithoutDuplicate(t *testing.T) {
	fx := newFixture(t, order.Policy{})
	fx.not.err = errors.New("channel unreachable")

	fx.send(t, Incoming{Command: "/start"})
	fx.send(t, Incoming{Text: order.BtnStartOrder})
	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})
	fx.send(t, Incoming{Text: "1"})
	fx.send(t, Incoming{Text: "Иванов"})
	fx.send(t, Incoming{Text: "адрес"})
	fx.send(t, Incoming{Text: "+7999"})
	fx.send(t, Incoming{Text: "-"})

	s := fx.state(t)
	if s.Fields.PendingOrderID != 42 {
		t.Fatalf("pending order id = %d", s.Fields.PendingOrderID)
	}
	if s.Fields.PendingMoscow != fx.ins.last.DatetimeMoscow ||
		s.Fields.PendingKhabarovsk != fx.ins.last.DatetimeKhabarovsk {
		t.Fatalf("pending stamps %q %q differ from row %q %q",
			s.Fields.PendingMoscow, s.Fields.PendingKhabarovsk,
			fx.ins.last.DatetimeMoscow, fx.ins.last.DatetimeKhabarovsk)
	}
	if fx.ins.calls != 1 {
		t.Fatalf("insert calls = %d", fx.ins.calls)
	}

	// The channel recovers, the retry must reuse the persisted row and
	// render the summary with the timestamps of that row.
	fx.not.err = nil
	replies := fx.send(t, Incoming{Text: "-"})
	if len(replies) != 1 || replies[0].Keyboard != order.KeyboardNewOrder {
		t.Fatalf("retry reply: %+v", replies)
	}
	if fx.ins.calls != 1 {
		t.Fatalf("retry inserted a duplicate, calls = %d", fx.ins.calls)
	}
	if !strings.Contains(fx.not.last, "Новый заказ № 42") {
		t.Fatalf("summary:\n%s", fx.not.last)
	}
	if !strings.Contains(fx.not.last, fx.ins.last.DatetimeMoscow) {
		t.Fatalf("retry summary time differs from the persisted row:\n%s", fx.not.last)
	}
}

func TestFlowContactMidFlowResets(t *testing.T) {
	fx := newFixture(t, order.Policy{})

	fx.send(t, Incoming{Command: "/start"})
	fx.send(t, Incoming{Text: order.BtnStartOrder})
	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})
	fx.send(t, Incoming{Text: "2 банки"})

	// A second shared contact is not an answer to the name question. It
	// must not be captured as an empty name, the conversation resets.
	replies := fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "/start") {
		t.Fatalf("want restart hint, got %+v", replies)
	}
	s := fx.state(t)
	if s.State != session.StateIdle || s.Fields != (session.Fields{}) {
		t.Fatalf("session not reset: %+v", s)
	}
	if fx.ins.calls != 0 {
		t.Fatalf("insert calls = %d, nothing must be persisted", fx.ins.calls)
	}
}

func TestFlowFAQOnlyWhenIdle(t *testing.T) {
	fx := newFixture(t, order.Policy{})

	fx.send(t, Incoming{Command: "/start"})
	replies := fx.send(t, Incoming{Text: order.BtnFAQ})
	if len(replies) != 1 || !replies[0].HTML {
		t.Fatalf("faq reply: %+v", replies)
	}
	if st := fx.state(t).State; st != session.StateIdle {
		t.Fatalf("faq must not change state, got %q", st)
	}

	// Mid-conversation the same text is just a field value.
	fx.send(t, Incoming{Text: order.BtnStartOrder})
	fx.send(t, Incoming{Contact: &order.Contact{PhoneNumber: "+7999", UserID: 7}})
	fx.send(t, Incoming{Text: order.BtnFAQ})
	if got := fx.state(t).Fields.Quantity; got != order.BtnFAQ {
		t.Fatalf("quantity = %q", got)
	}
}
