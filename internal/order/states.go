// Package order implements the intake conversation: the transition
// machine over collected fields, operator summary formatting, and the
// submission protocol. The machine is a pure function so it can be
// exercised without any Telegram transport.
package order

import "github.com/ikorka/orderbot/internal/session"

// Conversation states in required order. StateIdle comes from the
// session package; the rest are owned by the flow.
const (
	StateAwaitingContact   session.State = "awaiting_contact"
	StateAwaitingQuantity  session.State = "awaiting_quantity"
	StateAwaitingName      session.State = "awaiting_name"
	StateAwaitingAddress   session.State = "awaiting_address"
	StateAwaitingPhone     session.State = "awaiting_phone"
	StateAwaitingExtraInfo session.State = "awaiting_extra_info"
)

// KnownState reports whether st belongs to the conversation state set.
func KnownState(st session.State) bool {
	switch st {
	case session.StateIdle,
		StateAwaitingContact,
		StateAwaitingQuantity,
		StateAwaitingName,
		StateAwaitingAddress,
		StateAwaitingPhone,
		StateAwaitingExtraInfo:
		return true
	}
	return false
}
