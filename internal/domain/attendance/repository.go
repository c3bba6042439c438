package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// LockEmployeeDate serializes work on one (employee, work date) for the
	// rest of the current transaction.
	LockEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) error
	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	// CreateIfAbsent inserts unless a record already exists for the
	// employee and date, reporting whether a row was written.
	CreateIfAbsent(ctx context.Context, record Record) (bool, error)
	Update(ctx context.Context, record Record) error
	ListByDate(ctx context.Context, workDate time.Time) ([]Record, error)
	ListOpenByDate(ctx context.Context, workDate time.Time) ([]Record, error)
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
