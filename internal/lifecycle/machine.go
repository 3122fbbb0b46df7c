package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
)

const (
	// UnblockGraceWindow is how long after blocking an on-demand unblock is allowed.
	UnblockGraceWindow = 2 * time.Hour

	MinBlockDays = 1
	MaxBlockDays = 365
)

type EventKind string

const (
	EventBlocked     EventKind = "blocked"
	EventUnblocked   EventKind = "unblocked"
	EventClosed      EventKind = "closed"
	EventReactivated EventKind = "reactivated"
)

// Event describes a committed transition. Account is a copy taken after the change.
type Event struct {
	Kind    EventKind
	Account *domain.Account
	Owner   domain.Owner
	At      time.Time
}

// Change is a requested status change as received from a caller.
type Change struct {
	Target       domain.AccountStatus
	Reason       string
	DurationDays int
}

// Machine applies status transitions to accounts and runs the post-commit hooks.
type Machine struct {
	now   func() time.Time
	hooks []Hook
	log   *logrus.Logger
}

func NewMachine(log *logrus.Logger, hooks ...Hook) *Machine {
	return &Machine{
		now:   func() time.Time { return time.Now().UTC() },
		hooks: hooks,
		log:   log,
	}
}

// WithClock replaces the time source.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}

func (m *Machine) Now() time.Time {
	return m.now()
}

// AddHook appends a post-commit hook.
func (m *Machine) AddHook(h Hook) {
	m.hooks = append(m.hooks, h)
}

// Apply dispatches a requested target status to the matching transition.
func (m *Machine) Apply(a *domain.Account, change Change) (Event, error) {
	switch change.Target {
	case domain.AccountStatusBlocked:
		return m.Block(a, change.Reason, change.DurationDays)
	case domain.AccountStatusClosed:
		return m.Close(a)
	case domain.AccountStatusActive:
		switch a.Status {
		case domain.AccountStatusBlocked:
			return m.Unblock(a)
		case domain.AccountStatusClosed:
			return m.Reactivate(a)
		}
		return Event{}, domain.InvalidTransition("activate", "account is already active")
	}
	return Event{}, domain.InvalidTransition("apply", fmt.Sprintf("unknown target status %q", change.Target))
}

// Block moves an active savings account to BLOCKED for durationDays days.
func (m *Machine) Block(a *domain.Account, reason string, durationDays int) (Event, error) {
	if a.Type != domain.AccountTypeSavings {
		return Event{}, domain.InvalidTransition("block", "only savings accounts can be blocked")
	}
	if a.Status != domain.AccountStatusActive {
		return Event{}, domain.InvalidTransition("block", "the account must be active to be blocked")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Event{}, domain.InvalidTransition("block", "a block reason is required")
	}
	if durationDays < MinBlockDays || durationDays > MaxBlockDays {
		return Event{}, domain.InvalidTransition("block",
			fmt.Sprintf("block duration must be between %d and %d days", MinBlockDays, MaxBlockDays))
	}

	now := m.now()
	end := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	a.Status = domain.AccountStatusBlocked
	a.BlockReason = &reason
	a.BlockStart = &now
	a.BlockEnd = &end
	return m.committed(a, EventBlocked, now), nil
}

// Unblock returns a BLOCKED account to ACTIVE while the grace window is open.
func (m *Machine) Unblock(a *domain.Account) (Event, error) {
	if a.Status != domain.AccountStatusBlocked {
		return Event{}, domain.InvalidTransition("unblock", "the account is not blocked")
	}
	now := m.now()
	if a.BlockStart == nil || now.After(a.BlockStart.Add(UnblockGraceWindow)) {
		return Event{}, domain.UnblockWindowExpired("the 2 hour unblock window has passed")
	}

	m.clearBlock(a)
	a.Status = domain.AccountStatusActive
	return m.committed(a, EventUnblocked, now), nil
}

// Close moves an ACTIVE account to CLOSED. Blocked accounts can never be closed directly.
func (m *Machine) Close(a *domain.Account) (Event, error) {
	switch a.Status {
	case domain.AccountStatusBlocked:
		return Event{}, domain.InvalidTransition("close", "a blocked account cannot be closed")
	case domain.AccountStatusClosed:
		return Event{}, domain.InvalidTransition("close", "the account is already closed")
	}
	now := m.now()
	a.Status = domain.AccountStatusClosed
	return m.committed(a, EventClosed, now), nil
}

// Reactivate moves a CLOSED account back to ACTIVE.
func (m *Machine) Reactivate(a *domain.Account) (Event, error) {
	if a.Status != domain.AccountStatusClosed {
		return Event{}, domain.InvalidTransition("reactivate", "only a closed account can be reactivated")
	}
	now := m.now()
	a.Status = domain.AccountStatusActive
	return m.committed(a, EventReactivated, now), nil
}

// Release clears an expired block when the restoration job brings an account back.
// It does not check the grace window and emits no event.
func (m *Machine) Release(a *domain.Account) {
	m.clearBlock(a)
	a.Status = domain.AccountStatusActive
	a.ColdTransferredAt = nil
	now := m.now()
	a.Metadata.Touch(now)
	a.UpdatedAt = now
}

func (m *Machine) clearBlock(a *domain.Account) {
	a.BlockReason = nil
	a.BlockStart = nil
	a.BlockEnd = nil
}

func (m *Machine) committed(a *domain.Account, kind EventKind, now time.Time) Event {
	a.Metadata.Touch(now)
	a.UpdatedAt = now
	return Event{Kind: kind, Account: a.Clone(), At: now}
}
