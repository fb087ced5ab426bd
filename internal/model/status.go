package model

import "fmt"

// ItemStatus tags where an item sits in its lifecycle.
//
// The status set is closed but the lifecycle is deliberately loose: any
// simulation stage may move a non-terminal item to any non-pending status
// (resolution completes it, overflow defers/escalates/rejects/outsources it,
// decay completes it). The only hard rules are that terminal statuses admit
// no further transitions and nothing returns to pending.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusDeferred   ItemStatus = "deferred"
	StatusEscalated  ItemStatus = "escalated"
	StatusRejected   ItemStatus = "rejected"
	StatusOutsourced ItemStatus = "outsourced"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusDeferred,
		StatusEscalated, StatusRejected, StatusOutsourced:
		return true
	}
	return false
}

// Terminal reports whether s removes an item from the live backlog.
// Deferred and escalated items stay live; completed, rejected, and
// outsourced items are gone for good.
func (s ItemStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusOutsourced:
		return true
	}
	return false
}

// CanTransition reports whether an item in status s may move to status to.
// Self-transitions are allowed for non-terminal statuses (an item can be
// deferred on consecutive days).
func (s ItemStatus) CanTransition(to ItemStatus) bool {
	if !s.Valid() || !to.Valid() {
		return false
	}
	if s.Terminal() {
		return false
	}
	return to != StatusPending
}

// TransitionError reports a status change the lifecycle does not allow.
// Seeing one means an engine stage has a bug; it is never a caller error.
type TransitionError struct {
	ItemID string
	From   ItemStatus
	To     ItemStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("item %s: invalid status transition %s -> %s", e.ItemID, e.From, e.To)
}
