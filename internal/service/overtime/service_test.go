package overtime

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	calendarservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*3600)

const (
	monday   = "2025-03-10"
	saturday = "2025-03-15"
	sunday   = "2025-03-16"
)

type testEnv struct {
	store *fixtures.Store
	svc   overtime.OvertimeService
	emp   employee.Employee
}

func newTestEnv(t *testing.T, withShift bool) *testEnv {
	t.Helper()

	store := fixtures.NewStore()
	if withShift {
		store.PutShift(fixtures.DefaultShiftStart, fixtures.DefaultShiftEnd)
	}
	now := time.Date(2025, 3, 9, 9, 0, 0, 0, ict)
	cal := calendarservice.NewCalendarService(store.ShiftRepository(), store.HolidayRepository(), ict, func() time.Time { return now })

	return &testEnv{
		store: store,
		svc:   NewOvertimeService(store.Transactor(), store.OvertimeRepository(), store.EmployeeRepository(), cal),
		emp:   store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Tran Thi Binh"}),
	}
}

func (e *testEnv) create(date, start, end string) (overtime.OvertimeResponse, error) {
	return e.svc.Create(context.Background(), overtime.CreateOvertimeRequest{
		EmployeeID: e.emp.ID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
	})
}

func TestOvertimeService_Create_AfterShift(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := env.create(monday, "17:00", "19:30")
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2.50", resp.Hours)
	assert.Equal(t, "0.00", resp.Amount)
	assert.Equal(t, "2025-03-10T17:00:00+07:00", resp.StartTime)
	assert.Equal(t, "2025-03-10T19:30:00+07:00", resp.EndTime)
}

func TestOvertimeService_Create_RejectsShiftOverlap(t *testing.T) {
	env := newTestEnv(t, true)

	_, err := env.create(monday, "16:00", "18:00")
	assert.ErrorIs(t, err, overtime.ErrOverlapViolation)

	_, err = env.create(monday, "06:00", "08:30")
	assert.ErrorIs(t, err, overtime.ErrOverlapViolation)
}

func TestOvertimeService_Create_OffDayAllowsShiftHours(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := env.create(saturday, "09:00", "12:00")
	require.NoError(t, err)
	assert.Equal(t, "3.00", resp.Hours)
}

func TestOvertimeService_Create_HolidayAllowsShiftHours(t *testing.T) {
	env := newTestEnv(t, true)
	env.store.PutHoliday(calendar.Holiday{
		Name:      "Hung Kings Festival",
		StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	_, err := env.create(monday, "09:00", "12:00")
	assert.NoError(t, err)
}

func TestOvertimeService_Create_CrossesMidnight(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := env.create(sunday, "22:00", "02:00")
	require.NoError(t, err)
	assert.Equal(t, "4.00", resp.Hours)
	assert.Equal(t, "2025-03-17T02:00:00+07:00", resp.EndTime)
}

func TestOvertimeService_Create_CrossesMidnightIntoNextShift(t *testing.T) {
	env := newTestEnv(t, true)

	_, err := env.create(sunday, "22:00", "09:00")
	assert.ErrorIs(t, err, overtime.ErrOverlapViolation)
}

func TestOvertimeService_Create_NoShiftConfigured(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.create(monday, "10:00", "12:00")
	assert.NoError(t, err)
}

func TestOvertimeService_Create_OneActiveRequestPerDay(t *testing.T) {
	env := newTestEnv(t, true)

	first, err := env.create(monday, "17:00", "19:00")
	require.NoError(t, err)

	_, err = env.create(monday, "19:00", "21:00")
	assert.ErrorIs(t, err, overtime.ErrActiveRequestExists)

	_, err = env.svc.Review(context.Background(), overtime.ReviewOvertimeRequest{ID: first.ID, Status: "rejected"})
	require.NoError(t, err)

	_, err = env.create(monday, "19:00", "21:00")
	assert.NoError(t, err)
}

func TestOvertimeService_Create_Validation(t *testing.T) {
	env := newTestEnv(t, true)

	_, err := env.create(monday, "18:00", "18:00")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_time")

	_, err = env.svc.Create(context.Background(), overtime.CreateOvertimeRequest{
		EmployeeID: "3f1a2b3c-0000-4000-8000-000000000000",
		Date:       monday,
		StartTime:  "18:00",
		EndTime:    "20:00",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestOvertimeService_Review(t *testing.T) {
	env := newTestEnv(t, true)

	created, err := env.create(monday, "17:00", "19:00")
	require.NoError(t, err)

	approved, err := env.svc.Review(context.Background(), overtime.ReviewOvertimeRequest{ID: created.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ReviewedAt)

	_, err = env.svc.Review(context.Background(), overtime.ReviewOvertimeRequest{ID: created.ID, Status: "rejected"})
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)

	err = env.svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)

	_, err = env.svc.Update(context.Background(), overtime.UpdateOvertimeRequest{ID: created.ID, EndTime: strPtr("20:00")})
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)
}

func TestOvertimeService_Review_RechecksOverlap(t *testing.T) {
	env := newTestEnv(t, true)
	holiday := env.store.PutHoliday(calendar.Holiday{
		Name:      "Company day",
		StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	created, err := env.create(monday, "09:00", "12:00")
	require.NoError(t, err)

	require.NoError(t, env.store.HolidayRepository().Delete(context.Background(), holiday.ID))

	_, err = env.svc.Review(context.Background(), overtime.ReviewOvertimeRequest{ID: created.ID, Status: "approved"})
	assert.ErrorIs(t, err, overtime.ErrOverlapViolation)

	// Rejection is always possible.
	rejected, err := env.svc.Review(context.Background(), overtime.ReviewOvertimeRequest{ID: created.ID, Status: "rejected"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
}

func TestOvertimeService_Update(t *testing.T) {
	env := newTestEnv(t, true)

	created, err := env.create(monday, "17:00", "19:00")
	require.NoError(t, err)

	updated, err := env.svc.Update(context.Background(), overtime.UpdateOvertimeRequest{
		ID:          created.ID,
		EndTime:     strPtr("21:00"),
		WorkContent: strPtr("Quarter close"),
	})
	require.NoError(t, err)
	assert.Equal(t, "4.00", updated.Hours)
	assert.Equal(t, "2025-03-10T17:00:00+07:00", updated.StartTime)
	require.NotNil(t, updated.WorkContent)
	assert.Equal(t, "Quarter close", *updated.WorkContent)

	_, err = env.svc.Update(context.Background(), overtime.UpdateOvertimeRequest{ID: created.ID, StartTime: strPtr("15:00")})
	assert.ErrorIs(t, err, overtime.ErrOverlapViolation)
}

func TestOvertimeService_DeleteAndList(t *testing.T) {
	env := newTestEnv(t, true)

	a, err := env.create(monday, "17:00", "19:00")
	require.NoError(t, err)
	_, err = env.create(saturday, "08:00", "12:00")
	require.NoError(t, err)

	list, err := env.svc.List(context.Background(), overtime.OvertimeFilter{EmployeeID: &env.emp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	require.Len(t, list.Requests, 2)
	assert.Equal(t, saturday, list.Requests[0].Date)

	require.NoError(t, env.svc.Delete(context.Background(), a.ID))

	_, err = env.svc.GetByID(context.Background(), a.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestNotFound)

	_, err = env.svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, overtime.ErrRequestNotFound)
}

func strPtr(s string) *string { return &s }
