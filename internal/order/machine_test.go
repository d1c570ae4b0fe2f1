package order

import (
	"strings"
	"testing"

	"github.com/ikorka/orderbot/internal/session"
)

func TestStartClearsEverything(t *testing.T) {
	f := session.Fields{Quantity: "3", FullName: "someone"}
	res := Advance(StateAwaitingAddress, f, Input{Command: "/start"}, Policy{})

	if res.Next != session.StateIdle {
		t.Fatalf("next = %q, want idle", res.Next)
	}
	if res.Fields != (session.Fields{}) {
		t.Fatalf("fields not cleared: %+v", res.Fields)
	}
	if len(res.Replies) != 1 || res.Replies[0].Keyboard != KeyboardMain {
		t.Fatalf("want greeting with main keyboard, got %+v", res.Replies)
	}
}

func TestNewOrderButtonRestartsMidFlow(t *testing.T) {
	res := Advance(StateAwaitingPhone, session.Fields{Quantity: "2"}, Input{Text: BtnNewOrder}, Policy{})
	if res.Next != session.StateIdle || res.Fields != (session.Fields{}) {
		t.Fatalf("restart did not reset: next=%q fields=%+v", res.Next, res.Fields)
	}
}

func TestIdleStartOrder(t *testing.T) {
	res := Advance(session.StateIdle, session.Fields{}, Input{Text: BtnStartOrder}, Policy{})
	if res.Next != StateAwaitingContact {
		t.Fatalf("next = %q", res.Next)
	}
	if len(res.Replies) != 1 || res.Replies[0].Keyboard != KeyboardContact {
		t.Fatalf("want contact keyboard, got %+v", res.Replies)
	}
}

func TestIdleFAQStaysIdle(t *testing.T) {
	res := Advance(session.StateIdle, session.Fields{}, Input{Text: BtnFAQ}, Policy{})
	if res.Next != session.StateIdle {
		t.Fatalf("next = %q", res.Next)
	}
	if len(res.Replies) != 1 || !res.Replies[0].HTML {
		t.Fatalf("FAQ reply must be HTML, got %+v", res.Replies)
	}
}

func TestIdleUnrecognizedText(t *testing.T) {
	res := Advance(session.StateIdle, session.Fields{}, Input{Text: "hello?"}, Policy{})
	if res.Next != session.StateIdle {
		t.Fatalf("next = %q", res.Next)
	}
	if len(res.Replies) != 1 || !strings.Contains(res.Replies[0].Text, "/start") {
		t.Fatalf("want restart hint, got %+v", res.Replies)
	}
}

func TestContactStepRepromptsWithoutContact(t *testing.T) {
	f := session.Fields{}
	res := Advance(StateAwaitingContact, f, Input{Text: "my phone is 123"}, Policy{})
	if res.Next != StateAwaitingContact {
		t.Fatalf("text instead of contact must not advance, next = %q", res.Next)
	}
	if res.Fields.PhoneContact != "" {
		t.Fatalf("phone stored from plain text: %+v", res.Fields)
	}
	if len(res.Replies) != 1 || res.Replies[0].Keyboard != KeyboardContact {
		t.Fatalf("want contact reprompt, got %+v", res.Replies)
	}
}

func TestContactStepAccepts(t *testing.T) {
	res := Advance(StateAwaitingContact, session.Fields{},
		Input{Contact: &Contact{PhoneNumber: " +79990000000 ", UserID: 7}}, Policy{})
	if res.Next != StateAwaitingQuantity {
		t.Fatalf("next = %q", res.Next)
	}
	if res.Fields.PhoneContact != "+79990000000" {
		t.Fatalf("phone = %q", res.Fields.PhoneContact)
	}
	if len(res.Replies) != 1 || res.Replies[0].Keyboard != KeyboardRemove {
		t.Fatalf("menu must remove the keyboard, got %+v", res.Replies)
	}
}

func TestStrictMenuVariant(t *testing.T) {
	in := Input{Contact: &Contact{PhoneNumber: "+7999", UserID: 1}}

	loose := Advance(StateAwaitingContact, session.Fields{}, in, Policy{})
	strict := Advance(StateAwaitingContact, session.Fields{}, in, Policy{StrictQuantity: true})

	if loose.Replies[0].Text == strict.Replies[0].Text {
		t.Fatal("menu text must depend on the quantity policy")
	}
	if !strings.Contains(strict.Replies[0].Text, "количество упаковок") {
		t.Fatalf("strict menu text: %q", strict.Replies[0].Text)
	}
}

func TestQuantityPermissiveAcceptsFreeText(t *testing.T) {
	res := Advance(StateAwaitingQuantity, session.Fields{},
		Input{Text: "  икра 500г x2 и краб  "}, Policy{})
	if res.Next != StateAwaitingName {
		t.Fatalf("next = %q", res.Next)
	}
	if res.Fields.Quantity != "икра 500г x2 и краб" {
		t.Fatalf("quantity = %q, want trimmed text", res.Fields.Quantity)
	}
}

func TestQuantityStrict(t *testing.T) {
	pol := Policy{StrictQuantity: true}
	for _, bad := range []string{"two", "0", "-1", "+2", "2.5"} {
		res := Advance(StateAwaitingQuantity, session.Fields{}, Input{Text: bad}, pol)
		if res.Next != StateAwaitingQuantity {
			t.Fatalf("input %q advanced to %q", bad, res.Next)
		}
		if res.Fields.Quantity != "" {
			t.Fatalf("input %q stored quantity %q", bad, res.Fields.Quantity)
		}
	}

	res := Advance(StateAwaitingQuantity, session.Fields{}, Input{Text: " 2 "}, pol)
	if res.Next != StateAwaitingName || res.Fields.Quantity != "2" {
		t.Fatalf("valid quantity rejected: next=%q fields=%+v", res.Next, res.Fields)
	}
}

func TestContactMidFlowResets(t *testing.T) {
	in := Input{Contact: &Contact{PhoneNumber: "+7999", UserID: 7}}
	f := session.Fields{PhoneContact: "+7999", Quantity: "2"}

	for _, st := range []session.State{
		StateAwaitingQuantity, StateAwaitingName, StateAwaitingAddress,
		StateAwaitingPhone, StateAwaitingExtraInfo,
	} {
		res := Advance(st, f, in, Policy{})
		if res.Next != session.StateIdle || res.Fields != (session.Fields{}) {
			t.Fatalf("contact at %q: next=%q fields=%+v", st, res.Next, res.Fields)
		}
		if res.Submit {
			t.Fatalf("contact at %q must not submit", st)
		}
		if len(res.Replies) != 1 || !strings.Contains(res.Replies[0].Text, "/start") {
			t.Fatalf("contact at %q: want restart hint, got %+v", st, res.Replies)
		}
	}
}

func TestTextlessMessageMidFlowResets(t *testing.T) {
	for _, st := range []session.State{
		StateAwaitingQuantity, StateAwaitingName, StateAwaitingAddress,
		StateAwaitingPhone, StateAwaitingExtraInfo,
	} {
		res := Advance(st, session.Fields{Quantity: "2"}, Input{Text: "   "}, Policy{})
		if res.Next != session.StateIdle || res.Fields != (session.Fields{}) {
			t.Fatalf("empty text at %q: next=%q fields=%+v", st, res.Next, res.Fields)
		}
	}
}

func TestNameAddressPhoneChain(t *testing.T) {
	f := session.Fields{PhoneContact: "+7999", Quantity: "2"}

	res := Advance(StateAwaitingName, f, Input{Text: " Иванов И.И. "}, Policy{})
	if res.Next != StateAwaitingAddress || res.Fields.FullName != "Иванов И.И." {
		t.Fatalf("name step: %+v", res)
	}

	res = Advance(StateAwaitingAddress, res.Fields, Input{Text: "Москва, Тверская 1"}, Policy{})
	if res.Next != StateAwaitingPhone || res.Fields.Address != "Москва, Тверская 1" {
		t.Fatalf("address step: %+v", res)
	}

	res = Advance(StateAwaitingPhone, res.Fields, Input{Text: "+7 999 000-00-00"}, Policy{})
	if res.Next != StateAwaitingExtraInfo || res.Fields.PhoneManual != "+7 999 000-00-00" {
		t.Fatalf("phone step: %+v", res)
	}
	// Earlier answers must survive each step.
	if res.Fields.Quantity != "2" || res.Fields.FullName != "Иванов И.И." {
		t.Fatalf("earlier fields lost: %+v", res.Fields)
	}
}

func TestExtraInfoTriggersSubmit(t *testing.T) {
	res := Advance(StateAwaitingExtraInfo, session.Fields{Quantity: "2"},
		Input{Text: "позвоните после 18:00"}, Policy{})
	if !res.Submit {
		t.Fatal("last step must request submission")
	}
	if res.Fields.ExtraInfo != "позвоните после 18:00" {
		t.Fatalf("extra info = %q", res.Fields.ExtraInfo)
	}
}

func TestExtraInfoDashMeansEmpty(t *testing.T) {
	res := Advance(StateAwaitingExtraInfo, session.Fields{}, Input{Text: " - "}, Policy{})
	if !res.Submit {
		t.Fatal("dash answer must still submit")
	}
	if res.Fields.ExtraInfo != "" {
		t.Fatalf("extra info = %q, want empty", res.Fields.ExtraInfo)
	}
}

func TestUnknownStateFallsBackToIdle(t *testing.T) {
	res := Advance(session.State("waiting_for_something"), session.Fields{}, Input{Text: "hi"}, Policy{})
	if res.Next != session.StateIdle {
		t.Fatalf("next = %q", res.Next)
	}
}
