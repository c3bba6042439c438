package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/scantoken"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	overtime.OvertimeRepository
	calendar calendar.Reference
	window   scantoken.Window
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeRepo overtime.OvertimeRepository,
	cal calendar.Reference,
	window scantoken.Window,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		OvertimeRepository:   overtimeRepo,
		calendar:             cal,
		window:               window,
	}
}

// timePtrToString formats an instant as wall-clock time in loc.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format("2006-01-02 15:04:05")
	return &format
}

// Scan implements attendance.Gateway.
func (s *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, attendance.ErrTokenInvalid
	}

	payload, err := scantoken.Decode(req.Token)
	if err != nil {
		return attendance.ScanResponse{}, attendance.ErrTokenInvalid
	}

	now := s.calendar.Now()
	if err := s.window.Check(payload, now); err != nil {
		return attendance.ScanResponse{}, attendance.ErrTokenExpired
	}

	if !validator.IsValidUUID(payload.EmployeeID) {
		return attendance.ScanResponse{}, employee.ErrEmployeeNotFound
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, payload.EmployeeID)
	if err != nil {
		return attendance.ScanResponse{}, err
	}
	if emp.Status != employee.StatusActive {
		return attendance.ScanResponse{}, employee.ErrEmployeeNotFound
	}

	loc := s.calendar.Location()
	ctx = logger.With(ctx, "employee_id", emp.ID)

	var (
		resp         attendance.ScanResponse
		workDate     time.Time
		lateRejected bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		date, err := s.resolveWorkDate(ctx, emp.ID, now)
		if err != nil {
			return err
		}
		workDate = date

		gate, err := s.eligibility(ctx, emp.ID, workDate)
		if err != nil {
			return err
		}

		record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, workDate)
		if err != nil {
			return err
		}

		switch record.State() {
		case attendance.StateNoRecord:
			if gate.overtime != nil {
				adjusted, adj := overtime.ReconcileCheckIn(*gate.overtime, now, loc)
				if adj != overtime.AdjustmentNone {
					if err := s.OvertimeRepository.Update(ctx, adjusted); err != nil {
						return fmt.Errorf("failed to adjust overtime request: %w", err)
					}
				}
				if adj == overtime.AdjustmentLateRejected {
					lateRejected = true
					return nil
				}
			}
			resp, err = s.checkIn(ctx, emp, record, workDate, now, gate)
			return err

		case attendance.StateCheckedIn:
			if gate.overtime != nil {
				adjusted, adj := overtime.ReconcileCheckOut(*gate.overtime, now)
				if adj != overtime.AdjustmentNone {
					if err := s.OvertimeRepository.Update(ctx, adjusted); err != nil {
						return fmt.Errorf("failed to adjust overtime request: %w", err)
					}
				}
			}
			resp, err = s.checkOut(ctx, emp, *record, workDate, now, gate)
			return err

		default:
			return attendance.ErrAlreadyCompleted
		}
	})
	if err != nil {
		return attendance.ScanResponse{}, err
	}
	ctx = logger.With(ctx, "work_date", calendar.FormatDate(workDate))

	if lateRejected {
		logger.From(ctx).Warn("Overtime auto-rejected on late check-in")
		return attendance.ScanResponse{}, overtime.ErrOvertimeLateRejected
	}

	logger.From(ctx).Info("Attendance scan recorded", "action", resp.Action)
	return resp, nil
}

// resolveWorkDate picks the work date a scan belongs to and locks it. A scan
// goes to yesterday while the employee is still checked in there on an
// approved overtime window that runs past midnight and has not ended yet.
// Yesterday is always locked before today.
func (s *AttendanceServiceImpl) resolveWorkDate(ctx context.Context, employeeID string, now time.Time) (time.Time, error) {
	today := calendar.DateOf(now, s.calendar.Location())
	yesterday := today.AddDate(0, 0, -1)

	if err := s.AttendanceRepository.LockEmployeeDate(ctx, employeeID, yesterday); err != nil {
		return time.Time{}, err
	}
	open, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, yesterday)
	if err != nil {
		return time.Time{}, err
	}
	if open != nil && open.State() == attendance.StateCheckedIn {
		ot, err := s.OvertimeRepository.GetActiveByEmployeeAndDate(ctx, employeeID, yesterday)
		if err != nil {
			return time.Time{}, err
		}
		if ot != nil && ot.Status == overtime.StatusApproved && now.Before(ot.EndTime) {
			return yesterday, nil
		}
	}

	if err := s.AttendanceRepository.LockEmployeeDate(ctx, employeeID, today); err != nil {
		return time.Time{}, err
	}
	return today, nil
}

// scanGate is what the eligibility check learned about the work date.
type scanGate struct {
	shift    *calendar.Shift
	overtime *overtime.Request
}

// eligibility decides whether the employee may scan on workDate. Off days
// require approved overtime; working days require a shift unless approved
// overtime exists.
func (s *AttendanceServiceImpl) eligibility(ctx context.Context, employeeID string, workDate time.Time) (scanGate, error) {
	var gate scanGate

	working, err := s.calendar.IsWorkingDay(ctx, workDate)
	if err != nil {
		return gate, err
	}

	active, err := s.OvertimeRepository.GetActiveByEmployeeAndDate(ctx, employeeID, workDate)
	if err != nil {
		return gate, err
	}
	if active != nil && active.Status == overtime.StatusApproved {
		gate.overtime = active
	}

	if !working {
		if gate.overtime != nil {
			return gate, nil
		}
		if active != nil {
			return gate, overtime.ErrOvertimeRequestNotApproved
		}
		return gate, attendance.ErrOffDayNoOvertime
	}

	shift, err := s.calendar.ShiftWindow(ctx)
	switch {
	case err == nil:
		gate.shift = &shift
	case errors.Is(err, calendar.ErrShiftNotConfigured) && gate.overtime != nil:
	default:
		return gate, err
	}
	return gate, nil
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context, emp employee.Employee, record *attendance.Record, workDate, now time.Time, gate scanGate) (attendance.ScanResponse, error) {
	loc := s.calendar.Location()

	late := 0
	if gate.shift != nil {
		late = attendance.LateMinutes(now, gate.shift.StartTime.On(workDate, loc))
	}

	checkIn := now
	status := attendance.DeriveStatus(attendance.StatusInput{CheckInTime: &checkIn, LateMinutes: late})

	if record == nil {
		_, err := s.AttendanceRepository.Create(ctx, attendance.Record{
			EmployeeID:  emp.ID,
			WorkDate:    workDate,
			CheckInTime: &checkIn,
			LateMinutes: late,
			Status:      status,
		})
		if err != nil {
			return attendance.ScanResponse{}, err
		}
	} else {
		// A seeded absence is overwritten by the real check-in.
		record.CheckInTime = &checkIn
		record.CheckOutTime = nil
		record.LateMinutes = late
		record.EarlyLeaveMinutes = 0
		record.AutoClosed = false
		record.Status = status
		if err := s.AttendanceRepository.Update(ctx, *record); err != nil {
			return attendance.ScanResponse{}, err
		}
	}

	message := fmt.Sprintf("Checked in at %s", now.In(loc).Format("15:04"))
	if late > 0 {
		message += fmt.Sprintf(", %d minutes late", late)
	}

	return attendance.ScanResponse{
		Success:      true,
		EmployeeName: emp.Name,
		Message:      message,
		Action:       attendance.ActionCheckIn,
	}, nil
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context, emp employee.Employee, record attendance.Record, workDate, now time.Time, gate scanGate) (attendance.ScanResponse, error) {
	loc := s.calendar.Location()

	checkOut := now
	if checkOut.Before(*record.CheckInTime) {
		checkOut = *record.CheckInTime
	}

	early := 0
	if gate.shift != nil {
		early = attendance.EarlyLeaveMinutes(checkOut, gate.shift.EndTime.On(workDate, loc))
	}

	record.CheckOutTime = &checkOut
	record.EarlyLeaveMinutes = early
	record.Status = attendance.DeriveStatus(attendance.StatusInput{
		CheckInTime:       record.CheckInTime,
		CheckOutTime:      record.CheckOutTime,
		LateMinutes:       record.LateMinutes,
		EarlyLeaveMinutes: early,
	})
	if err := s.AttendanceRepository.Update(ctx, record); err != nil {
		return attendance.ScanResponse{}, err
	}

	message := fmt.Sprintf("Checked out at %s", checkOut.In(loc).Format("15:04"))
	if early > 0 {
		message += fmt.Sprintf(", %d minutes early", early)
	}

	return attendance.ScanResponse{
		Success:      true,
		EmployeeName: emp.Name,
		Message:      message,
		Action:       attendance.ActionCheckOut,
	}, nil
}

// IssueToken implements attendance.Gateway.
func (s *AttendanceServiceImpl) IssueToken(ctx context.Context, req attendance.IssueTokenRequest) (attendance.IssueTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.IssueTokenResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.IssueTokenResponse{}, err
	}
	if emp.Status != employee.StatusActive {
		return attendance.IssueTokenResponse{}, employee.ErrEmployeeNotFound
	}

	now := s.calendar.Now()
	return attendance.IssueTokenResponse{
		Token:     scantoken.Encode(emp.ID, now),
		IssuedAt:  now.Format(time.RFC3339),
		ExpiresAt: now.Add(s.window.Past).Format(time.RFC3339),
	}, nil
}

// ListDaily implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListDaily(ctx context.Context, filter attendance.DailyFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	date := calendar.DateOf(s.calendar.Now(), s.calendar.Location())
	if filter.Date != "" {
		date, _ = validator.ParseDate(filter.Date)
	}

	records, err := s.AttendanceRepository.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, s.mapToResponse(r))
	}
	return responses, nil
}

// Correct implements attendance.AttendanceService. Late and early minutes
// are recomputed against the shift whenever a time changes.
func (s *AttendanceServiceImpl) Correct(ctx context.Context, req attendance.CorrectionRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	loc := s.calendar.Location()

	var corrected attendance.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.AttendanceRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if err := s.AttendanceRepository.LockEmployeeDate(ctx, record.EmployeeID, record.WorkDate); err != nil {
			return err
		}

		timesChanged := false
		if req.CheckInTime != nil {
			record.CheckInTime = correctedInstant(*req.CheckInTime, record.WorkDate, loc)
			timesChanged = true
		}
		if req.CheckOutTime != nil {
			record.CheckOutTime = correctedInstant(*req.CheckOutTime, record.WorkDate, loc)
			record.AutoClosed = false
			timesChanged = true
		}
		if record.CheckOutTime != nil && (record.CheckInTime == nil || record.CheckOutTime.Before(*record.CheckInTime)) {
			return attendance.ErrInvalidCorrection
		}

		if timesChanged {
			if err := s.recomputeMinutes(ctx, &record); err != nil {
				return err
			}
		}

		if req.Status != nil {
			record.Status = attendance.Status(*req.Status)
		} else {
			record.Status = attendance.DeriveStatus(attendance.StatusInput{
				CheckInTime:       record.CheckInTime,
				CheckOutTime:      record.CheckOutTime,
				LateMinutes:       record.LateMinutes,
				EarlyLeaveMinutes: record.EarlyLeaveMinutes,
				OnApprovedLeave:   record.Status == attendance.StatusAbsentPermission,
				AutoClosed:        record.AutoClosed,
			})
		}
		if req.Note != nil {
			record.Note = req.Note
		}

		if err := s.AttendanceRepository.Update(ctx, record); err != nil {
			return err
		}
		corrected = record
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	logger.From(ctx).Info("Attendance record corrected", "id", corrected.ID, "status", corrected.Status)
	return s.mapToResponse(corrected), nil
}

func (s *AttendanceServiceImpl) recomputeMinutes(ctx context.Context, record *attendance.Record) error {
	record.LateMinutes = 0
	record.EarlyLeaveMinutes = 0

	working, err := s.calendar.IsWorkingDay(ctx, record.WorkDate)
	if err != nil || !working {
		return err
	}
	shift, err := s.calendar.ShiftWindow(ctx)
	if errors.Is(err, calendar.ErrShiftNotConfigured) {
		return nil
	}
	if err != nil {
		return err
	}

	w := shift.WindowOn(record.WorkDate, s.calendar.Location())
	if record.CheckInTime != nil {
		record.LateMinutes = attendance.LateMinutes(*record.CheckInTime, w.Start)
	}
	if record.CheckOutTime != nil && !record.AutoClosed {
		record.EarlyLeaveMinutes = attendance.EarlyLeaveMinutes(*record.CheckOutTime, w.End)
	}
	return nil
}

// correctedInstant turns "HH:MM" on the work date into an instant; an empty
// value clears the time.
func correctedInstant(value string, workDate time.Time, loc *time.Location) *time.Time {
	if value == "" {
		return nil
	}
	at := calendar.MustParseTimeOfDay(value).On(workDate, loc)
	return &at
}

func (s *AttendanceServiceImpl) mapToResponse(r attendance.Record) attendance.AttendanceResponse {
	loc := s.calendar.Location()
	return attendance.AttendanceResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		EmployeeCode:      r.EmployeeCode,
		EmployeeName:      r.EmployeeName,
		WorkDate:          calendar.FormatDate(r.WorkDate),
		CheckInTime:       timePtrToString(r.CheckInTime, loc),
		CheckOutTime:      timePtrToString(r.CheckOutTime, loc),
		LateMinutes:       r.LateMinutes,
		EarlyLeaveMinutes: r.EarlyLeaveMinutes,
		Status:            string(r.Status),
		StatusLabel:       r.Status.Label(),
		AutoClosed:        r.AutoClosed,
		Note:              r.Note,
	}
}
