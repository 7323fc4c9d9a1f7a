package domain

import (
	"context"
	"time"
)

// LedgerStore persists the impact ledger.
type LedgerStore interface {
	// Ledger returns the stored ledger including every receipt, newest first.
	// A store that has never been written returns its seed ledger.
	Ledger(ctx context.Context) (*ImpactLedger, error)
	// UpdateLedger runs fn under the store's write lock and persists the result.
	// Receipts prepended by fn are stored. SQL stores hand fn the totals only,
	// with Receipts empty, so fn must not depend on earlier receipts.
	UpdateLedger(ctx context.Context, fn func(*ImpactLedger) error) (*ImpactLedger, error)
}

// CommissionStore records affiliate commissions.
type CommissionStore interface {
	CreateCommission(ctx context.Context, c *Commission) error
	ListCommissions(ctx context.Context, filter CommissionFilter) ([]Commission, error)
}

// PinQueue holds pins scheduled for publishing.
type PinQueue interface {
	EnqueuePins(ctx context.Context, pins []ScheduledPin) error
	// ClaimDuePins moves up to limit queued pins scheduled at or before now
	// into PinPublishing and returns them. A pin is claimed at most once.
	ClaimDuePins(ctx context.Context, now time.Time, limit int) ([]ScheduledPin, error)
	MarkPinPublished(ctx context.Context, id, remoteID, url string, at time.Time) error
	MarkPinFailed(ctx context.Context, id, reason string) error
	// RequeuePin returns a claimed pin to PinQueued so a later poll retries it.
	RequeuePin(ctx context.Context, id string) error
	GetPin(ctx context.Context, id string) (*ScheduledPin, error)
	ListPins(ctx context.Context, filter PinFilter) ([]ScheduledPin, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	LedgerStore
	CommissionStore
	PinQueue
	Close() error
}
