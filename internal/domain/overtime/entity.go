package overtime

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Request struct {
	ID          string
	EmployeeID  string
	Date        time.Time
	StartTime   time.Time
	EndTime     time.Time
	Hours       decimal.Decimal
	Status      Status
	WorkContent *string
	Amount      decimal.Decimal
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	EmployeeName *string
}

// CanTransitionTo reports whether the status machine allows moving to next.
// Only pending requests can be decided.
func (r Request) CanTransitionTo(next Status) bool {
	return r.Status == StatusPending && (next == StatusApproved || next == StatusRejected)
}

func (r Request) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
