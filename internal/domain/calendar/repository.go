package calendar

import (
	"context"
	"time"
)

type ShiftRepository interface {
	// Get returns nil, nil when no shift has been configured.
	Get(ctx context.Context) (*Shift, error)
	// Create fails with ErrShiftAlreadyExists when a shift row is present.
	Create(ctx context.Context, shift Shift) (Shift, error)
	Update(ctx context.Context, shift Shift) (Shift, error)
}

type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)
	// ListCandidates returns annual holidays plus dated holidays that
	// intersect [from, to]; callers narrow with Holiday.Covers.
	ListCandidates(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
