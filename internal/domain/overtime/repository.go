package overtime

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OvertimeRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// GetActiveByEmployeeAndDate returns the pending or approved request for
	// the date, or nil, nil.
	GetActiveByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Request, error)
	Update(ctx context.Context, req Request) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter OvertimeFilter) ([]Request, int64, error)
	ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Request, error)
	UpdateAmount(ctx context.Context, id string, amount decimal.Decimal) error
}
