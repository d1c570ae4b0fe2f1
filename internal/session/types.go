// Package session stores per-user conversation state: the FSM step, the
// collected order fields, and the last-activity timestamp used for idle
// expiry. Implementations must behave identically whether the backing
// store is process memory or Redis.
package session

import (
	"context"
	"sync"
	"time"
)

// State identifies a step of the order conversation.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Fields holds the values collected so far. Keys are only ever populated
// for states the conversation has already passed.
type Fields struct {
	PhoneContact string `json:"phone_contact,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Address      string `json:"address,omitempty"`
	PhoneManual  string `json:"phone_manual,omitempty"`
	ExtraInfo    string `json:"extra_info,omitempty"`
	// PendingOrderID is set when an order row was persisted but the
	// operator dispatch failed, so a retry reuses the same id instead of
	// inserting a duplicate. PendingMoscow and PendingKhabarovsk carry the
	// timestamps of that attempt so the retried summary shows the same
	// time as the persisted row.
	PendingOrderID    int64  `json:"pending_order_id,omitempty"`
	PendingMoscow     string `json:"pending_moscow,omitempty"`
	PendingKhabarovsk string `json:"pending_khabarovsk,omitempty"`
}

// Session is the conversation state of one user.
type Session struct {
	UserID       int64     `json:"user_id"`
	State        State     `json:"state"`
	Fields       Fields    `json:"fields"`
	LastActivity time.Time `json:"last_activity"`
}

// Store persists sessions keyed by user id. Get never fails on absence:
// a missing session yields a fresh idle one with a zero LastActivity.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Clear(ctx context.Context, userID int64) error
}

// NewSession returns a fresh idle session for the user.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, State: StateIdle}
}

// Expired reports whether the session has been idle for at least timeout.
// A zero LastActivity (first message ever, or a migrated session) never
// counts as expired.
func Expired(s *Session, now time.Time, timeout time.Duration) bool {
	if s == nil || timeout <= 0 || s.LastActivity.IsZero() {
		return false
	}
	return now.Sub(s.LastActivity) >= timeout
}

// Locks serializes the read-modify-write cycle per user so two updates
// for the same user cannot race on one session.
type Locks struct {
	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewLocks constructs an empty per-user lock set.
func NewLocks() *Locks {
	return &Locks{users: make(map[int64]*sync.Mutex)}
}

// Lock acquires the per-user mutex and returns its unlock function.
func (l *Locks) Lock(userID int64) func() {
	l.mu.Lock()
	m, ok := l.users[userID]
	if !ok {
		m = &sync.Mutex{}
		l.users[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
