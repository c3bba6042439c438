package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*3600)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (calendar.CalendarService, *fixtures.Store) {
	t.Helper()
	store := fixtures.NewStore()
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, ict)
	return NewCalendarService(store.ShiftRepository(), store.HolidayRepository(), ict, func() time.Time { return now }), store
}

func TestCalendarService_ShiftLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ShiftWindow(ctx)
	assert.ErrorIs(t, err, calendar.ErrShiftNotConfigured)

	created, err := svc.UpdateShift(ctx, calendar.UpdateShiftRequest{StartTime: "08:00", EndTime: "17:00"})
	require.NoError(t, err)
	assert.Equal(t, "08:00", created.StartTime)

	updated, err := svc.UpdateShift(ctx, calendar.UpdateShiftRequest{StartTime: "08:30", EndTime: "17:30"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.GetShift(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:30", got.StartTime)
	assert.Equal(t, "17:30", got.EndTime)
}

func TestCalendarService_UpdateShift_RejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateShift(context.Background(), calendar.UpdateShiftRequest{StartTime: "17:00", EndTime: "08:00"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestCalendarService_DayTypeOf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHoliday(ctx, calendar.CreateHolidayRequest{Name: "Reunification Day", StartDate: "2025-04-30", EndDate: "2025-05-01"})
	require.NoError(t, err)
	_, err = svc.CreateHoliday(ctx, calendar.CreateHolidayRequest{Name: "New Year", StartDate: "2020-01-01", EndDate: "2020-01-01", IsAnnual: true})
	require.NoError(t, err)

	tests := []struct {
		name string
		date time.Time
		want calendar.DayType
	}{
		{"weekday", date(2025, 3, 10), calendar.DayTypeWeekday},
		{"saturday", date(2025, 3, 15), calendar.DayTypeWeekend},
		{"sunday", date(2025, 3, 16), calendar.DayTypeWeekend},
		{"holiday range start", date(2025, 4, 30), calendar.DayTypeHoliday},
		{"holiday range end", date(2025, 5, 1), calendar.DayTypeHoliday},
		{"after holiday", date(2025, 5, 2), calendar.DayTypeWeekday},
		{"annual holiday recurs", date(2025, 1, 1), calendar.DayTypeHoliday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.DayTypeOf(ctx, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			working, err := svc.IsWorkingDay(ctx, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want == calendar.DayTypeWeekday, working)
		})
	}
}

func TestCalendarService_HolidayDeleteAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.CreateHoliday(ctx, calendar.CreateHolidayRequest{Name: "Company day", StartDate: "2025-06-02", EndDate: "2025-06-02"})
	require.NoError(t, err)

	year := 2025
	list, err := svc.ListHolidays(ctx, calendar.HolidayFilter{Year: &year})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Company day", list[0].Name)

	require.NoError(t, svc.DeleteHoliday(ctx, h.ID))
	assert.ErrorIs(t, svc.DeleteHoliday(ctx, h.ID), calendar.ErrHolidayNotFound)
	assert.ErrorIs(t, svc.DeleteHoliday(ctx, "bogus"), calendar.ErrHolidayNotFound)
}

func TestCalendarService_NowIsInCompanyZone(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, ict, svc.Location())
	assert.Equal(t, date(2025, 3, 10), calendar.DateOf(svc.Now(), svc.Location()))
}
