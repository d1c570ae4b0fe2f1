package order

import (
	"strconv"
	"strings"

	"github.com/ikorka/orderbot/internal/session"
)

// Keyboard selects the reply markup attached to an outgoing message.
type Keyboard int

const (
	// KeyboardKeep leaves whatever keyboard the user currently has.
	KeyboardKeep Keyboard = iota
	// KeyboardMain shows the start-order and FAQ buttons.
	KeyboardMain
	// KeyboardContact shows the single share-contact button.
	KeyboardContact
	// KeyboardRemove hides the reply keyboard.
	KeyboardRemove
	// KeyboardNewOrder shows the single new-order button.
	KeyboardNewOrder
)

// Contact is a shared Telegram contact attached to a message.
type Contact struct {
	PhoneNumber string
	UserID      int64
}

// Input is one normalized incoming message. Command carries a leading
// slash command if present, Text the message text, Contact a shared
// contact. At most one of Command and Contact is set alongside Text.
type Input struct {
	Command string
	Text    string
	Contact *Contact
}

// Policy carries the configuration knobs that change machine behavior.
type Policy struct {
	// StrictQuantity requires the quantity answer to be a positive
	// integer and switches the menu to the single-product variant.
	StrictQuantity bool
}

// Reply is one outgoing message the machine wants sent.
type Reply struct {
	Text     string
	Keyboard Keyboard
	HTML     bool
}

// Result of advancing the machine by one input.
type Result struct {
	Next    session.State
	Fields  session.Fields
	Replies []Reply
	// Submit is set when the conversation collected its last field and
	// the caller must run the submission protocol before persisting the
	// session.
	Submit bool
}

func reply(next session.State, f session.Fields, r ...Reply) Result {
	return Result{Next: next, Fields: f, Replies: r}
}

// Advance applies one input to the conversation. It is a pure function:
// no I/O, no clock, no randomness. The caller owns locking, idle expiry,
// persistence and the submission that a Submit result demands.
func Advance(st session.State, f session.Fields, in Input, pol Policy) Result {
	// Restart wins over everything, including a half-finished order.
	if in.Command == "/start" || in.Text == BtnNewOrder {
		return reply(session.StateIdle, session.Fields{},
			Reply{Text: textGreeting, Keyboard: KeyboardMain})
	}

	if !KnownState(st) {
		st = session.StateIdle
	}

	switch st {
	case session.StateIdle:
		return advanceIdle(f, in)
	case StateAwaitingContact:
		return advanceContact(f, in, pol)
	}

	// The remaining states capture free text. A shared contact or a
	// text-less payload is not an answer to any of them; treat it as
	// unrecognized so a blank value never lands in a required field.
	text := strings.TrimSpace(in.Text)
	if in.Contact != nil || text == "" {
		return unrecognized()
	}

	switch st {
	case StateAwaitingQuantity:
		return advanceQuantity(f, text, pol)
	case StateAwaitingName:
		f.FullName = text
		return reply(StateAwaitingAddress, f,
			Reply{Text: textAddressPrompt})
	case StateAwaitingAddress:
		f.Address = text
		return reply(StateAwaitingPhone, f,
			Reply{Text: textPhonePrompt, Keyboard: KeyboardRemove})
	case StateAwaitingPhone:
		f.PhoneManual = text
		return reply(StateAwaitingExtraInfo, f,
			Reply{Text: textExtraInfoPrompt, Keyboard: KeyboardRemove})
	case StateAwaitingExtraInfo:
		f.ExtraInfo = NormalizeExtraInfo(text)
		return Result{Next: StateAwaitingExtraInfo, Fields: f, Submit: true}
	}

	// Unreachable, KnownState covered every case.
	return unrecognized()
}

func advanceIdle(f session.Fields, in Input) Result {
	switch in.Text {
	case BtnStartOrder:
		return reply(StateAwaitingContact, session.Fields{},
			Reply{Text: textContactPrompt, Keyboard: KeyboardContact})
	case BtnFAQ:
		return reply(session.StateIdle, f,
			Reply{Text: textFAQ, HTML: true})
	}
	return unrecognized()
}

func advanceContact(f session.Fields, in Input, pol Policy) Result {
	if in.Contact == nil || strings.TrimSpace(in.Contact.PhoneNumber) == "" {
		return reply(StateAwaitingContact, f,
			Reply{Text: textContactRetry, Keyboard: KeyboardContact})
	}
	f.PhoneContact = strings.TrimSpace(in.Contact.PhoneNumber)
	menu := textMenuPermissive
	if pol.StrictQuantity {
		menu = textMenuStrict
	}
	return reply(StateAwaitingQuantity, f,
		Reply{Text: menu, Keyboard: KeyboardRemove, HTML: true})
}

func advanceQuantity(f session.Fields, text string, pol Policy) Result {
	if pol.StrictQuantity && !positiveInt(text) {
		return reply(StateAwaitingQuantity, f,
			Reply{Text: textQuantityRetry})
	}
	f.Quantity = text
	return reply(StateAwaitingName, f,
		Reply{Text: textNamePrompt})
}

func unrecognized() Result {
	return reply(session.StateIdle, session.Fields{},
		Reply{Text: textUnrecognized})
}

func positiveInt(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0 && !strings.HasPrefix(s, "+")
}
