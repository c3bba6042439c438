package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is. The message sent to the
// client is the error text, so wrapped context (limits, dates) is kept.
var errorMappings = []errorMapping{
	// Auth
	{auth.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{auth.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN"},
	{auth.ErrEmployeeScopeRequired, http.StatusForbidden, "FORBIDDEN"},

	// Scan
	{attendance.ErrTokenInvalid, http.StatusBadRequest, "TOKEN_INVALID"},
	{attendance.ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
	{employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
	{attendance.ErrOffDayNoOvertime, http.StatusConflict, "OFF_DAY_NO_OVERTIME"},
	{calendar.ErrShiftNotConfigured, http.StatusConflict, "SHIFT_NOT_CONFIGURED"},
	{overtime.ErrOvertimeLateRejected, http.StatusConflict, "OVERTIME_LATE_REJECTED"},
	{overtime.ErrOvertimeRequestNotApproved, http.StatusConflict, "OVERTIME_REQUEST_NOT_APPROVED"},
	{attendance.ErrAlreadyCompleted, http.StatusConflict, "ALREADY_COMPLETED"},

	// Attendance records
	{attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{attendance.ErrInvalidCorrection, http.StatusBadRequest, "BAD_REQUEST"},
	{reconciliation.ErrFutureDateRejected, http.StatusBadRequest, "FUTURE_DATE_REJECTED"},

	// Calendar
	{calendar.ErrShiftAlreadyExists, http.StatusConflict, "CONFLICT"},
	{calendar.ErrInvalidShiftWindow, http.StatusBadRequest, "BAD_REQUEST"},
	{calendar.ErrHolidayNotFound, http.StatusNotFound, "NOT_FOUND"},
	{calendar.ErrInvalidHolidayRange, http.StatusBadRequest, "BAD_REQUEST"},

	// Overtime
	{overtime.ErrOverlapViolation, http.StatusConflict, "OVERLAP_VIOLATION"},
	{overtime.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
	{overtime.ErrRequestAlreadyProcessed, http.StatusConflict, "CONFLICT"},
	{overtime.ErrActiveRequestExists, http.StatusConflict, "CONFLICT"},
	{overtime.ErrInvalidTimeRange, http.StatusBadRequest, "BAD_REQUEST"},

	// Leave
	{leave.ErrLeaveRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
	{leave.ErrLeaveRequestAlreadyProcessed, http.StatusConflict, "CONFLICT"},
	{leave.ErrLeaveRequestNotPending, http.StatusConflict, "CONFLICT"},
	{leave.ErrInvalidLeaveRange, http.StatusBadRequest, "BAD_REQUEST"},

	// Payroll
	{payroll.ErrSalaryPeriodMissing, http.StatusConflict, "SALARY_PERIOD_MISSING"},
	{payroll.ErrAdvanceLimitExceeded, http.StatusConflict, "ADVANCE_LIMIT_EXCEEDED"},
	{payroll.ErrSalaryRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
	{payroll.ErrSalaryRecordPaid, http.StatusConflict, "CONFLICT"},
	{payroll.ErrInvalidPeriod, http.StatusBadRequest, "BAD_REQUEST"},
	{payroll.ErrInvalidConfiguration, http.StatusBadRequest, "INVALID_CONFIGURATION"},
	{payroll.ErrAdvanceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{payroll.ErrAdvanceAlreadyProcessed, http.StatusConflict, "CONFLICT"},
	{payroll.ErrAdvanceApproved, http.StatusConflict, "CONFLICT"},
	{payroll.ErrAdvanceDateInPast, http.StatusBadRequest, "BAD_REQUEST"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		switch m.code {
		case "FORBIDDEN":
			Forbidden(w, err.Error())
		case "NOT_FOUND":
			NotFound(w, err.Error())
		case "CONFLICT":
			Conflict(w, err.Error())
		default:
			Error(w, m.status, m.code, err.Error())
		}
		return
	}

	slog.Error("Unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
