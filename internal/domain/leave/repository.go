package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, req Request) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter LeaveFilter) ([]Request, int64, error)
	// ListApprovedEmployeeIDsCovering returns the set of employees with an
	// approved leave whose range contains date.
	ListApprovedEmployeeIDsCovering(ctx context.Context, date time.Time) (map[string]struct{}, error)
}
