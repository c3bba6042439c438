package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ConfigurationRepository interface {
	Get(ctx context.Context) (Configuration, error)
	// Replace swaps every configuration table in one transaction.
	Replace(ctx context.Context, cfg Configuration) error
}

type SalaryRecordRepository interface {
	// LockEmployeePeriod serializes payroll work for one employee and month
	// until the current transaction ends.
	LockEmployeePeriod(ctx context.Context, employeeID string, period Period) error
	// GetByEmployeePeriod returns nil, nil when no record exists.
	GetByEmployeePeriod(ctx context.Context, employeeID string, period Period) (*SalaryRecord, error)
	GetByID(ctx context.Context, id string) (SalaryRecord, error)
	// Replace deletes any record for the employee and period, then inserts record.
	Replace(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	ListByPeriod(ctx context.Context, period Period) ([]SalaryRecord, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
}

type AdvanceRepository interface {
	Create(ctx context.Context, req AdvanceRequest) (AdvanceRequest, error)
	GetByID(ctx context.Context, id string) (AdvanceRequest, error)
	Update(ctx context.Context, req AdvanceRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AdvanceFilter) ([]AdvanceRequest, int64, error)
	SumByEmployeePeriod(ctx context.Context, employeeID string, period Period, statuses ...AdvanceStatus) (decimal.Decimal, error)
}
