package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusResigned Status = "resigned"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusResigned
}

// Employee is owned by the HR directory; timekeeping and payroll only read it.
type Employee struct {
	ID          string
	Code        string
	Name        string
	BasicSalary decimal.Decimal
	Dependents  int
	Status      Status
	JoinedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JoinedBy reports whether the employee had started on or before date.
// Employees without a join date are treated as always employed.
func (e Employee) JoinedBy(date time.Time) bool {
	if e.JoinedAt == nil {
		return true
	}
	return !e.JoinedAt.After(date)
}
