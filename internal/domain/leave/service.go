package leave

import "context"

type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	Review(ctx context.Context, req ReviewLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	List(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
}
