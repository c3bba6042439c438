package calendar

import (
	"context"
	"time"
)

// Reference is the read side consumed by attendance, overtime,
// reconciliation and payroll.
type Reference interface {
	Location() *time.Location
	Now() time.Time
	IsWorkingDay(ctx context.Context, date time.Time) (bool, error)
	ShiftWindow(ctx context.Context) (Shift, error)
	HolidayCovering(ctx context.Context, date time.Time) (*Holiday, error)
	DayTypeOf(ctx context.Context, date time.Time) (DayType, error)
}

type CalendarService interface {
	Reference
	GetShift(ctx context.Context) (ShiftResponse, error)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, filter HolidayFilter) ([]HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
}
