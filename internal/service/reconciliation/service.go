package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type ReconciliationServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	overtime.OvertimeRepository
	employee.EmployeeRepository
	leave.LeaveRequestRepository
	calendar calendar.Reference
}

func NewReconciliationService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo overtime.OvertimeRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.LeaveRequestRepository,
	cal calendar.Reference,
) reconciliation.ReconciliationService {
	return &ReconciliationServiceImpl{
		tx:                     tx,
		AttendanceRepository:   attendanceRepo,
		OvertimeRepository:     overtimeRepo,
		EmployeeRepository:     employeeRepo,
		LeaveRequestRepository: leaveRepo,
		calendar:               cal,
	}
}

// errNotDue marks an open record whose target end has not passed yet.
var errNotDue = errors.New("target end not reached")

// Reconcile implements reconciliation.ReconciliationService.
func (s *ReconciliationServiceImpl) Reconcile(ctx context.Context, req reconciliation.ReconcileRequest) (reconciliation.ReconcileResponse, error) {
	date, now, err := s.resolveDate(req)
	if err != nil {
		return reconciliation.ReconcileResponse{}, err
	}

	result := reconciliation.ReconcileResponse{
		Date:     calendar.FormatDate(date),
		Failures: []reconciliation.ItemFailure{},
	}

	if err := s.autoCheckout(ctx, date, now, &result); err != nil {
		return reconciliation.ReconcileResponse{}, err
	}

	working, err := s.calendar.IsWorkingDay(ctx, date)
	if err != nil {
		return reconciliation.ReconcileResponse{}, fmt.Errorf("failed to resolve day type: %w", err)
	}
	if !working {
		result.OffDay = true
		result.Message = fmt.Sprintf("Reconciled %s: %d auto check-outs, off day so no absences seeded",
			result.Date, result.AutoCheckoutCount)
		s.logResult(result)
		return result, nil
	}

	if err := s.seedAbsences(ctx, date, &result); err != nil {
		return reconciliation.ReconcileResponse{}, err
	}

	result.Message = fmt.Sprintf("Reconciled %s: %d auto check-outs, %d absences added",
		result.Date, result.AutoCheckoutCount, result.AddedCount)
	s.logResult(result)
	return result, nil
}

// CloseOut implements reconciliation.ReconciliationService.
func (s *ReconciliationServiceImpl) CloseOut(ctx context.Context, req reconciliation.ReconcileRequest) (reconciliation.ReconcileResponse, error) {
	date, now, err := s.resolveDate(req)
	if err != nil {
		return reconciliation.ReconcileResponse{}, err
	}

	result := reconciliation.ReconcileResponse{
		Date:     calendar.FormatDate(date),
		Failures: []reconciliation.ItemFailure{},
	}
	if err := s.autoCheckout(ctx, date, now, &result); err != nil {
		return reconciliation.ReconcileResponse{}, err
	}

	result.Message = fmt.Sprintf("Closed out %s: %d auto check-outs", result.Date, result.AutoCheckoutCount)
	if result.AutoCheckoutCount > 0 || len(result.Failures) > 0 {
		s.logResult(result)
	}
	return result, nil
}

// resolveDate returns the requested work date, today when empty, together
// with the current instant. Dates after today are rejected.
func (s *ReconciliationServiceImpl) resolveDate(req reconciliation.ReconcileRequest) (time.Time, time.Time, error) {
	if err := req.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := s.calendar.Now()
	today := calendar.DateOf(now, s.calendar.Location())
	date := today
	if req.Date != "" {
		date, _ = validator.ParseDate(req.Date)
	}
	if date.After(today) {
		return time.Time{}, time.Time{}, reconciliation.ErrFutureDateRejected
	}
	return date, now, nil
}

func (s *ReconciliationServiceImpl) logResult(result reconciliation.ReconcileResponse) {
	slog.Info("Attendance reconciled",
		"date", result.Date,
		"auto_checkout", result.AutoCheckoutCount,
		"added", result.AddedCount,
		"off_day", result.OffDay,
		"failures", len(result.Failures),
	)
}

// autoCheckout closes every open record of date whose target end has
// passed. Each record commits on its own.
func (s *ReconciliationServiceImpl) autoCheckout(ctx context.Context, date, now time.Time, result *reconciliation.ReconcileResponse) error {
	open, err := s.AttendanceRepository.ListOpenByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to list open attendance records: %w", err)
	}

	for _, rec := range open {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.closeRecord(ctx, rec, now)
		})
		switch {
		case err == nil:
			result.AutoCheckoutCount++
		case errors.Is(err, errNotDue):
		default:
			slog.Warn("Auto check-out failed", "record_id", rec.ID, "employee_id", rec.EmployeeID, "error", err)
			result.Failures = append(result.Failures, reconciliation.ItemFailure{
				EmployeeID: rec.EmployeeID,
				RecordID:   rec.ID,
				Stage:      reconciliation.StageAutoCheckout,
				Reason:     err.Error(),
			})
		}
	}
	return nil
}

func (s *ReconciliationServiceImpl) closeRecord(ctx context.Context, rec attendance.Record, now time.Time) error {
	if err := s.AttendanceRepository.LockEmployeeDate(ctx, rec.EmployeeID, rec.WorkDate); err != nil {
		return err
	}

	// The employee may have checked out since the list was read.
	current, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, rec.EmployeeID, rec.WorkDate)
	if err != nil {
		return err
	}
	if current.State() != attendance.StateCheckedIn {
		return errNotDue
	}

	target, err := s.targetEnd(ctx, *current)
	if err != nil {
		return err
	}
	if now.Before(target) {
		return errNotDue
	}
	if target.Before(*current.CheckInTime) {
		target = *current.CheckInTime
	}

	current.CheckOutTime = &target
	current.EarlyLeaveMinutes = 0
	current.AutoClosed = true
	current.Status = attendance.DeriveStatus(attendance.StatusInput{
		CheckInTime:  current.CheckInTime,
		CheckOutTime: current.CheckOutTime,
		LateMinutes:  current.LateMinutes,
		AutoClosed:   true,
	})
	return s.AttendanceRepository.Update(ctx, *current)
}

// targetEnd is the approved overtime end when one exists, else the shift end.
func (s *ReconciliationServiceImpl) targetEnd(ctx context.Context, rec attendance.Record) (time.Time, error) {
	ot, err := s.OvertimeRepository.GetActiveByEmployeeAndDate(ctx, rec.EmployeeID, rec.WorkDate)
	if err != nil {
		return time.Time{}, err
	}
	if ot != nil && ot.Status == overtime.StatusApproved {
		return ot.EndTime, nil
	}

	shift, err := s.calendar.ShiftWindow(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return shift.EndTime.On(rec.WorkDate, s.calendar.Location()), nil
}

// seedAbsences inserts ABSENT or ABSENT_PERMISSION for active employees with
// no record on date. Existing records are never touched.
func (s *ReconciliationServiceImpl) seedAbsences(ctx context.Context, date time.Time, result *reconciliation.ReconcileResponse) error {
	employees, err := s.EmployeeRepository.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	onLeave, err := s.LeaveRequestRepository.ListApprovedEmployeeIDsCovering(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load approved leave: %w", err)
	}

	for _, emp := range employees {
		if !emp.JoinedBy(date) {
			continue
		}

		_, approved := onLeave[emp.ID]
		record := attendance.Record{
			EmployeeID: emp.ID,
			WorkDate:   date,
			Status:     attendance.DeriveStatus(attendance.StatusInput{OnApprovedLeave: approved}),
		}

		var inserted bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.AttendanceRepository.LockEmployeeDate(ctx, emp.ID, date); err != nil {
				return err
			}
			var err error
			inserted, err = s.AttendanceRepository.CreateIfAbsent(ctx, record)
			return err
		})
		if err != nil {
			slog.Warn("Absence seeding failed", "employee_id", emp.ID, "error", err)
			result.Failures = append(result.Failures, reconciliation.ItemFailure{
				EmployeeID: emp.ID,
				Stage:      reconciliation.StageAbsenceSeeding,
				Reason:     err.Error(),
			})
			continue
		}
		if inserted {
			result.AddedCount++
		}
	}
	return nil
}
