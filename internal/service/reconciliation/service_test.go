package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	calendarservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*3600)

var (
	monday   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
)

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, ict)
}

type testEnv struct {
	store *fixtures.Store
	svc   reconciliation.ReconciliationService
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{store: fixtures.NewStore()}
	env.store.PutShift(calendar.NewTimeOfDay(8, 0), calendar.NewTimeOfDay(17, 0))

	cal := calendarservice.NewCalendarService(
		env.store.ShiftRepository(),
		env.store.HolidayRepository(),
		ict,
		func() time.Time { return env.now },
	)
	env.svc = NewReconciliationService(
		env.store.Transactor(),
		env.store.AttendanceRepository(),
		env.store.OvertimeRepository(),
		env.store.EmployeeRepository(),
		env.store.LeaveRequestRepository(),
		cal,
	)
	return env
}

func (e *testEnv) reconcile(t *testing.T, date time.Time) (reconciliation.ReconcileResponse, error) {
	t.Helper()
	return e.svc.Reconcile(context.Background(), reconciliation.ReconcileRequest{Date: calendar.FormatDate(date)})
}

func TestReconcile_ClosesOpenRecordsAndSeedsAbsences(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	present := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Present"})
	absent := env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "Absent"})
	onLeave := env.store.PutEmployee(employee.Employee{Code: "EMP003", Name: "On leave"})
	joinedLater := monday.AddDate(0, 0, 7)
	newcomer := env.store.PutEmployee(employee.Employee{Code: "EMP004", Name: "Newcomer", JoinedAt: &joinedLater})
	resigned := env.store.PutEmployee(employee.Employee{Code: "EMP005", Name: "Resigned", Status: employee.StatusResigned})

	checkIn := at(monday, 8, 10)
	env.store.PutAttendance(attendance.Record{
		EmployeeID:  present.ID,
		WorkDate:    monday,
		CheckInTime: &checkIn,
		LateMinutes: 10,
		Status:      attendance.StatusLate,
	})
	env.store.PutLeave(leave.Request{
		EmployeeID: onLeave.ID,
		LeaveType:  "annual",
		StartDate:  monday,
		EndDate:    monday.AddDate(0, 0, 2),
		Status:     leave.StatusApproved,
	})

	result, err := env.reconcile(t, monday)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", result.Date)
	assert.Equal(t, 1, result.AutoCheckoutCount)
	assert.Equal(t, 2, result.AddedCount)
	assert.False(t, result.OffDay)
	assert.Empty(t, result.Failures)

	closed := env.store.Attendance(present.ID, monday)
	require.NotNil(t, closed)
	require.NotNil(t, closed.CheckOutTime)
	assert.True(t, closed.CheckOutTime.Equal(at(monday, 17, 0)))
	assert.True(t, closed.AutoClosed)
	assert.Equal(t, 0, closed.EarlyLeaveMinutes)
	assert.Equal(t, attendance.StatusLate, closed.Status)

	seeded := env.store.Attendance(absent.ID, monday)
	require.NotNil(t, seeded)
	assert.Equal(t, attendance.StatusAbsent, seeded.Status)
	assert.Nil(t, seeded.CheckInTime)

	permitted := env.store.Attendance(onLeave.ID, monday)
	require.NotNil(t, permitted)
	assert.Equal(t, attendance.StatusAbsentPermission, permitted.Status)

	assert.Nil(t, env.store.Attendance(newcomer.ID, monday))
	assert.Nil(t, env.store.Attendance(resigned.ID, monday))
}

func TestReconcile_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	emp := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Present"})
	env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "Absent"})
	checkIn := at(monday, 7, 50)
	env.store.PutAttendance(attendance.Record{EmployeeID: emp.ID, WorkDate: monday, CheckInTime: &checkIn, Status: attendance.StatusOnTime})

	first, err := env.reconcile(t, monday)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AutoCheckoutCount)
	assert.Equal(t, 1, first.AddedCount)
	assert.Equal(t, attendance.StatusFull, env.store.Attendance(emp.ID, monday).Status)

	second, err := env.reconcile(t, monday)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AutoCheckoutCount)
	assert.Equal(t, 0, second.AddedCount)
	assert.Equal(t, 2, env.store.AttendanceCount())
}

func TestReconcile_FutureDateRejected(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	_, err := env.reconcile(t, monday.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, reconciliation.ErrFutureDateRejected)
}

func TestReconcile_DefaultsToToday(t *testing.T) {
	env := newTestEnv(t)
	// 23:30 UTC on Sunday is already Monday in ICT.
	env.now = time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

	result, err := env.svc.Reconcile(context.Background(), reconciliation.ReconcileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", result.Date)
}

func TestReconcile_TargetNotReached_LeavesRecordOpen(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 16, 0)

	emp := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Present"})
	checkIn := at(monday, 8, 0)
	env.store.PutAttendance(attendance.Record{EmployeeID: emp.ID, WorkDate: monday, CheckInTime: &checkIn, Status: attendance.StatusOnTime})

	result, err := env.reconcile(t, monday)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AutoCheckoutCount)
	assert.Nil(t, env.store.Attendance(emp.ID, monday).CheckOutTime)
}

func TestReconcile_CheckOutNeverBeforeCheckIn(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	emp := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Late arrival"})
	checkIn := at(monday, 17, 30)
	env.store.PutAttendance(attendance.Record{EmployeeID: emp.ID, WorkDate: monday, CheckInTime: &checkIn, LateMinutes: 570, Status: attendance.StatusLate})

	_, err := env.reconcile(t, monday)
	require.NoError(t, err)

	rec := env.store.Attendance(emp.ID, monday)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, rec.CheckOutTime.Equal(checkIn))
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestReconcile_OffDay_ClosesOvertimeOnly(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(saturday, 20, 0)

	worker := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Weekend worker"})
	idle := env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "Weekend off"})
	env.store.PutOvertime(overtime.Request{
		EmployeeID: worker.ID,
		Date:       saturday,
		StartTime:  at(saturday, 9, 0),
		EndTime:    at(saturday, 12, 0),
		Status:     overtime.StatusApproved,
	})
	checkIn := at(saturday, 9, 0)
	env.store.PutAttendance(attendance.Record{EmployeeID: worker.ID, WorkDate: saturday, CheckInTime: &checkIn, Status: attendance.StatusOnTime})

	result, err := env.reconcile(t, saturday)
	require.NoError(t, err)
	assert.True(t, result.OffDay)
	assert.Equal(t, 1, result.AutoCheckoutCount)
	assert.Equal(t, 0, result.AddedCount)

	rec := env.store.Attendance(worker.ID, saturday)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, rec.CheckOutTime.Equal(at(saturday, 12, 0)))
	assert.Equal(t, attendance.StatusFull, rec.Status)
	assert.Nil(t, env.store.Attendance(idle.ID, saturday))
}

func TestReconcile_ItemFailure_DoesNotStopBatch(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	broken := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Broken"})
	fine := env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "Fine"})
	env.store.AttendanceWriteErr[broken.ID] = assert.AnError

	result, err := env.reconcile(t, monday)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AddedCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, broken.ID, result.Failures[0].EmployeeID)
	assert.Equal(t, reconciliation.StageAbsenceSeeding, result.Failures[0].Stage)
	assert.NotNil(t, env.store.Attendance(fine.ID, monday))
}

func TestCloseOut_OvertimePastMidnight(t *testing.T) {
	env := newTestEnv(t)
	sunday := saturday.AddDate(0, 0, 1)

	worker := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Night worker"})
	env.store.PutOvertime(overtime.Request{
		EmployeeID: worker.ID,
		Date:       saturday,
		StartTime:  at(saturday, 22, 0),
		EndTime:    at(sunday, 2, 0),
		Status:     overtime.StatusApproved,
	})
	checkIn := at(saturday, 22, 0)
	env.store.PutAttendance(attendance.Record{EmployeeID: worker.ID, WorkDate: saturday, CheckInTime: &checkIn, Status: attendance.StatusOnTime})

	env.now = at(sunday, 1, 30)
	result, err := env.svc.CloseOut(context.Background(), reconciliation.ReconcileRequest{Date: calendar.FormatDate(saturday)})
	require.NoError(t, err)
	assert.Equal(t, 0, result.AutoCheckoutCount)

	env.now = at(sunday, 3, 0)
	result, err = env.svc.CloseOut(context.Background(), reconciliation.ReconcileRequest{Date: calendar.FormatDate(saturday)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AutoCheckoutCount)

	rec := env.store.Attendance(worker.ID, saturday)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, rec.CheckOutTime.Equal(at(sunday, 2, 0)))
	assert.True(t, rec.AutoClosed)
}

func TestCloseOut_DoesNotSeedAbsences(t *testing.T) {
	env := newTestEnv(t)
	env.now = at(monday, 23, 0)

	absent := env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Absent"})

	result, err := env.svc.CloseOut(context.Background(), reconciliation.ReconcileRequest{Date: calendar.FormatDate(monday)})
	require.NoError(t, err)
	assert.Equal(t, 0, result.AddedCount)
	assert.Nil(t, env.store.Attendance(absent.ID, monday))

	_, err = env.svc.CloseOut(context.Background(), reconciliation.ReconcileRequest{Date: calendar.FormatDate(monday.AddDate(0, 0, 1))})
	assert.ErrorIs(t, err, reconciliation.ErrFutureDateRejected)
}
