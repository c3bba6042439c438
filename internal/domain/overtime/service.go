package overtime

import "context"

type OvertimeService interface {
	Create(ctx context.Context, req CreateOvertimeRequest) (OvertimeResponse, error)
	Update(ctx context.Context, req UpdateOvertimeRequest) (OvertimeResponse, error)
	Review(ctx context.Context, req ReviewOvertimeRequest) (OvertimeResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (OvertimeResponse, error)
	List(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
}
