package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	// Upsert inserts or updates by employee code and returns the stored row.
	Upsert(ctx context.Context, e Employee) (Employee, error)
}
