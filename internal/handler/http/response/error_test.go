package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleError_Codes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{attendance.ErrTokenInvalid, http.StatusBadRequest, "TOKEN_INVALID"},
		{attendance.ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
		{employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
		{attendance.ErrOffDayNoOvertime, http.StatusConflict, "OFF_DAY_NO_OVERTIME"},
		{calendar.ErrShiftNotConfigured, http.StatusConflict, "SHIFT_NOT_CONFIGURED"},
		{overtime.ErrOvertimeLateRejected, http.StatusConflict, "OVERTIME_LATE_REJECTED"},
		{attendance.ErrAlreadyCompleted, http.StatusConflict, "ALREADY_COMPLETED"},
		{overtime.ErrOverlapViolation, http.StatusConflict, "OVERLAP_VIOLATION"},
		{reconciliation.ErrFutureDateRejected, http.StatusBadRequest, "FUTURE_DATE_REJECTED"},
		{payroll.ErrSalaryPeriodMissing, http.StatusConflict, "SALARY_PERIOD_MISSING"},
		{fmt.Errorf("%w: limit 3000000.00", payroll.ErrAdvanceLimitExceeded), http.StatusConflict, "ADVANCE_LIMIT_EXCEEDED"},
		{overtime.ErrOvertimeRequestNotApproved, http.StatusConflict, "OVERTIME_REQUEST_NOT_APPROVED"},
		{auth.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN"},
		{auth.ErrEmployeeScopeRequired, http.StatusForbidden, "FORBIDDEN"},
		{payroll.ErrSalaryRecordNotFound, http.StatusNotFound, "NOT_FOUND"},
		{payroll.ErrSalaryRecordPaid, http.StatusConflict, "CONFLICT"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleError_KeepsWrappedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("%w: limit 3000000.00", payroll.ErrAdvanceLimitExceeded))

	resp := decode(t, rec)
	assert.Contains(t, resp.Error.Message, "limit 3000000.00")
}

func TestHandleError_Validation(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("date", "date must be in YYYY-MM-DD format")

	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("bad input: %w", errs.Err()))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "date must be in YYYY-MM-DD format", resp.Error.Details["date"])
}
