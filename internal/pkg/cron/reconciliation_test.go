package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	calendarservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	reconciliationservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReconciler struct {
	mu         sync.Mutex
	reconciled []string
	closed     []string
	err        error
}

func (r *recordingReconciler) Reconcile(_ context.Context, req reconciliation.ReconcileRequest) (reconciliation.ReconcileResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconciled = append(r.reconciled, req.Date)
	return reconciliation.ReconcileResponse{Date: req.Date}, r.err
}

func (r *recordingReconciler) CloseOut(_ context.Context, req reconciliation.ReconcileRequest) (reconciliation.ReconcileResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, req.Date)
	return reconciliation.ReconcileResponse{Date: req.Date}, r.err
}

func newJobs(now time.Time, hour int) (*ReconciliationJobs, *recordingReconciler) {
	store := fixtures.NewStore()
	cal := calendarservice.NewCalendarService(store.ShiftRepository(), store.HolidayRepository(), now.Location(), func() time.Time { return now })
	rec := &recordingReconciler{}
	return NewReconciliationJobs(rec, cal, hour), rec
}

func TestReconciliationJobs_ReconcileAttendance(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)

	tests := []struct {
		name       string
		now        time.Time
		hour       int
		reconciled []string
		closed     []string
	}{
		{"configured hour reconciles today", time.Date(2025, 3, 10, 23, 5, 0, 0, ict), 23, []string{"2025-03-10"}, []string{"2025-03-09"}},
		{"midnight revisits yesterday", time.Date(2025, 3, 11, 0, 10, 0, 0, ict), 23, []string{"2025-03-10"}, nil},
		{"other hours only close out yesterday", time.Date(2025, 3, 10, 14, 0, 0, 0, ict), 23, nil, []string{"2025-03-09"}},
		{"hour zero does both", time.Date(2025, 3, 11, 0, 10, 0, 0, ict), 0, []string{"2025-03-10", "2025-03-11"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, rec := newJobs(tt.now, tt.hour)

			require.NoError(t, jobs.ReconcileAttendance(context.Background()))
			assert.Equal(t, tt.reconciled, rec.reconciled)
			assert.Equal(t, tt.closed, rec.closed)
		})
	}
}

func TestReconciliationJobs_ClosesOvertimeEndingAfterMidnight(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2025, 3, day, hour, minute, 0, 0, ict)
	}

	store := fixtures.NewStore()
	store.PutShift(calendar.NewTimeOfDay(8, 0), calendar.NewTimeOfDay(17, 0))
	emp := store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Night worker"})
	store.PutOvertime(overtime.Request{
		EmployeeID: emp.ID,
		Date:       saturday,
		StartTime:  at(15, 22, 5),
		EndTime:    at(16, 2, 0),
		Status:     overtime.StatusApproved,
	})
	checkIn := at(15, 22, 5)
	store.PutAttendance(attendance.Record{EmployeeID: emp.ID, WorkDate: saturday, CheckInTime: &checkIn, Status: attendance.StatusOnTime})

	var now time.Time
	cal := calendarservice.NewCalendarService(store.ShiftRepository(), store.HolidayRepository(), ict, func() time.Time { return now })
	svc := reconciliationservice.NewReconciliationService(
		store.Transactor(),
		store.AttendanceRepository(),
		store.OvertimeRepository(),
		store.EmployeeRepository(),
		store.LeaveRequestRepository(),
		cal,
	)
	jobs := NewReconciliationJobs(svc, cal, 23)

	for _, tick := range []time.Time{at(16, 0, 10), at(16, 1, 10)} {
		now = tick
		require.NoError(t, jobs.ReconcileAttendance(context.Background()))
	}
	require.Nil(t, store.Attendance(emp.ID, saturday).CheckOutTime)

	now = at(16, 2, 10)
	require.NoError(t, jobs.ReconcileAttendance(context.Background()))

	rec := store.Attendance(emp.ID, saturday)
	require.NotNil(t, rec.CheckOutTime)
	assert.True(t, rec.CheckOutTime.Equal(at(16, 2, 0)))
	assert.True(t, rec.AutoClosed)
	assert.Equal(t, attendance.StatusFull, rec.Status)
}

func TestReconciliationJobs_ReportsError(t *testing.T) {
	jobs, rec := newJobs(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC), 23)
	rec.err = reconciliation.ErrFutureDateRejected

	err := jobs.ReconcileAttendance(context.Background())
	assert.ErrorIs(t, err, reconciliation.ErrFutureDateRejected)
}

func TestReconciliationJobs_RegisterJobs(t *testing.T) {
	jobs, _ := newJobs(time.Now(), 23)
	s := NewScheduler()

	jobs.RegisterJobs(s, time.Hour)
	assert.Equal(t, []string{"reconcile_attendance"}, s.Jobs())
}
