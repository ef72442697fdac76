package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the state of a settlement.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "PENDING"
	SettlementStatusCompleted SettlementStatus = "COMPLETED"
	SettlementStatusFailed    SettlementStatus = "FAILED"
)

// IsValid reports whether s is a known settlement status.
func (s SettlementStatus) IsValid() bool {
	switch s {
	case SettlementStatusPending, SettlementStatusCompleted, SettlementStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible from s.
func (s SettlementStatus) IsTerminal() bool {
	switch s {
	case SettlementStatusCompleted, SettlementStatusFailed:
		return true
	case SettlementStatusPending:
		return false
	default:
		return false
	}
}

// Settlement tracks the movement of a completed transfer across an
// external rail.
type Settlement struct {
	ScheduledFor  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	ID            string
	TransferID    string
	FromAccountID string
	ToAccountID   string
	Currency      string
	LastError     string
	Status        SettlementStatus
	Amount        decimal.Decimal
	RetryCount    int
}

// SettlementRequest describes a completed transfer to be settled.
type SettlementRequest struct {
	TransferID    string
	FromAccountID string
	ToAccountID   string
	Currency      string
	Amount        decimal.Decimal
}

// SettlementPolicy decides when a new settlement becomes due.
type SettlementPolicy struct {
	// Amounts above LargeThreshold wait for the next window boundary.
	LargeThreshold decimal.Decimal
	WindowHours    int
	Location       *time.Location
}

// DefaultSettlementPolicy returns the 100000 / 4h policy in UTC.
func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		LargeThreshold: decimal.NewFromInt(100000),
		WindowHours:    4,
		Location:       time.UTC,
	}
}

// ScheduleFor returns the due time for a settlement of amount created at now.
func (p SettlementPolicy) ScheduleFor(amount decimal.Decimal, now time.Time) time.Time {
	if amount.LessThanOrEqual(p.LargeThreshold) {
		return now
	}
	return p.NextWindow(now)
}

// NextWindow returns the first window boundary strictly after now.
// Boundaries fall on local wall-clock hours that are multiples of
// WindowHours, so DST shifts do not move them.
func (p SettlementPolicy) NextWindow(now time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	hours := p.WindowHours
	if hours <= 0 {
		hours = 4
	}

	local := now.In(loc)
	y, m, d := local.Date()

	for day := 0; day <= 1; day++ {
		for h := 0; h < 24; h += hours {
			boundary := time.Date(y, m, d+day, h, 0, 0, 0, loc)
			if boundary.After(local) {
				return boundary
			}
		}
	}
	return time.Date(y, m, d+2, 0, 0, 0, 0, loc)
}
