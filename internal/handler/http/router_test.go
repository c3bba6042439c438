package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/scantoken"
	attendanceservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/attendance"
	calendarservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	leaveservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/leave"
	overtimeservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/overtime"
	payrollservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/payroll"
	reconciliationservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/reconciliation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*3600)

type apiEnv struct {
	store  *fixtures.Store
	jwt    jwt.Service
	router http.Handler
	now    time.Time
	emp    employee.Employee
	other  employee.Employee
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	env := &apiEnv{
		store: fixtures.NewStore(),
		jwt:   jwt.NewJWTService("router-test-secret", "1h"),
		// Monday
		now: time.Date(2025, 3, 10, 8, 5, 0, 0, ict),
	}
	env.store.PutShift(calendar.NewTimeOfDay(8, 0), calendar.NewTimeOfDay(17, 0))
	env.store.PutConfiguration(fixtures.DefaultPayrollConfiguration())
	env.emp = env.store.PutEmployee(employee.Employee{Code: "EMP001", Name: "Nguyen Van An", BasicSalary: decimal.NewFromInt(12_000_000)})
	env.other = env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "Tran Thi Binh", BasicSalary: decimal.NewFromInt(9_000_000)})

	cal := calendarservice.NewCalendarService(
		env.store.ShiftRepository(),
		env.store.HolidayRepository(),
		ict,
		func() time.Time { return env.now },
	)
	tx := env.store.Transactor()

	attendanceService := attendanceservice.NewAttendanceService(tx,
		env.store.AttendanceRepository(), env.store.EmployeeRepository(), env.store.OvertimeRepository(),
		cal, scantoken.DefaultWindow())
	reconciliationService := reconciliationservice.NewReconciliationService(tx,
		env.store.AttendanceRepository(), env.store.OvertimeRepository(), env.store.EmployeeRepository(),
		env.store.LeaveRequestRepository(), cal)
	overtimeService := overtimeservice.NewOvertimeService(tx,
		env.store.OvertimeRepository(), env.store.EmployeeRepository(), cal)
	leaveService := leaveservice.NewLeaveService(tx,
		env.store.LeaveRequestRepository(), env.store.EmployeeRepository(), cal)
	settings := config.PayrollConfig{StandardWorkDays: 26, HoursPerDay: 8, AdvanceLimitRatio: decimal.RequireFromString("0.3")}
	payrollService := payrollservice.NewPayrollService(tx,
		env.store.ConfigurationRepository(), env.store.SalaryRecordRepository(), env.store.AdvanceRepository(),
		env.store.EmployeeRepository(), env.store.AttendanceRepository(), env.store.OvertimeRepository(),
		cal, settings)
	advanceService := payrollservice.NewAdvanceService(tx,
		env.store.AdvanceRepository(), env.store.SalaryRecordRepository(), env.store.EmployeeRepository(),
		cal, settings.AdvanceLimitRatio)

	env.router = NewRouter(
		RouterOptions{Env: "test", AllowedOrigins: []string{"*"}, LogOutput: io.Discard},
		env.jwt,
		NewAttendanceHandler(attendanceService, reconciliationService),
		NewCalendarHandler(calendarservice.NewCalendarService(env.store.ShiftRepository(), env.store.HolidayRepository(), ict, func() time.Time { return env.now })),
		NewOvertimeHandler(overtimeService),
		NewLeaveHandler(leaveService),
		NewPayrollHandler(payrollService, advanceService),
	)
	return env
}

func (e *apiEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken("operator", true, nil)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) employeeToken(t *testing.T, emp employee.Employee) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(emp.Code, false, &emp.ID)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestRouter_ScanIsPublic(t *testing.T) {
	env := newAPIEnv(t)

	token := scantoken.Encode(env.emp.ID, env.now.Add(-10*time.Second))
	status, body := env.do(t, http.MethodPost, "/api/v1/attendance/scan", "", map[string]string{"token": token})

	require.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	var data struct {
		Action       string `json:"action"`
		EmployeeName string `json:"employee_name"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "CHECK_IN", data.Action)
	assert.Equal(t, "Nguyen Van An", data.EmployeeName)
	assert.NotNil(t, env.store.Attendance(env.emp.ID, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestRouter_ScanErrors(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"expired", scantoken.Encode(env.emp.ID, env.now.Add(-10*time.Minute)), http.StatusBadRequest, "TOKEN_EXPIRED"},
		{"garbage", "not-a-token", http.StatusBadRequest, "TOKEN_INVALID"},
		{"unknown employee", scantoken.Encode("00000000-0000-0000-0000-000000000000", env.now), http.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/v1/attendance/scan", "", map[string]string{"token": tt.token})
			assert.Equal(t, tt.status, status)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestRouter_Authentication(t *testing.T) {
	env := newAPIEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/v1/calendar/shift", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)

	status, _ = env.do(t, http.MethodGet, "/api/v1/calendar/shift", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/calendar/shift", env.employeeToken(t, env.emp), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_AdminRoutesRejectEmployees(t *testing.T) {
	env := newAPIEnv(t)
	token := env.employeeToken(t, env.emp)

	for _, path := range []string{"/api/v1/attendance?date=2025-03-10", "/api/v1/payroll/configuration"} {
		status, body := env.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
		require.NotNil(t, body.Error)
		assert.Equal(t, "FORBIDDEN", body.Error.Code)
	}

	status, _ := env.do(t, http.MethodPost, "/api/v1/payroll/runs", token, map[string]int{"month": 2, "year": 2025})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRouter_Overtime(t *testing.T) {
	env := newAPIEnv(t)
	token := env.employeeToken(t, env.emp)

	t.Run("overlapping window", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/v1/overtime", token, map[string]string{
			"date": "2025-03-10", "start_time": "16:00", "end_time": "18:00",
		})
		assert.Equal(t, http.StatusConflict, status)
		require.NotNil(t, body.Error)
		assert.Equal(t, "OVERLAP_VIOLATION", body.Error.Code)
	})

	t.Run("validation", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/v1/overtime", token, map[string]string{
			"date": "10/03/2025", "start_time": "18:00", "end_time": "20:00",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		require.NotNil(t, body.Error)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Details, "date")
	})

	t.Run("created for the caller", func(t *testing.T) {
		status, body := env.do(t, http.MethodPost, "/api/v1/overtime", token, map[string]string{
			"employee_id": env.other.ID, "date": "2025-03-10", "start_time": "18:00", "end_time": "20:00",
		})
		require.Equal(t, http.StatusCreated, status)
		var data struct {
			EmployeeID string `json:"employee_id"`
			Hours      string `json:"hours"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, env.emp.ID, data.EmployeeID)
		assert.Equal(t, "2.00", data.Hours)
	})

	t.Run("other employees' requests are hidden", func(t *testing.T) {
		req := env.store.PutOvertime(overtime.Request{
			EmployeeID: env.other.ID,
			Date:       time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			StartTime:  time.Date(2025, 3, 11, 18, 0, 0, 0, ict),
			EndTime:    time.Date(2025, 3, 11, 20, 0, 0, 0, ict),
			Hours:      decimal.NewFromInt(2),
			Status:     overtime.StatusPending,
		})
		status, body := env.do(t, http.MethodGet, "/api/v1/overtime/"+req.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, body.Error)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)

		status, _ = env.do(t, http.MethodGet, "/api/v1/overtime/"+req.ID, env.adminToken(t), nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestRouter_ReconcileFutureDate(t *testing.T) {
	env := newAPIEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/attendance/reconcile", env.adminToken(t), map[string]string{"date": "2025-03-11"})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FUTURE_DATE_REJECTED", body.Error.Code)
}

func TestRouter_PayrollAndAdvances(t *testing.T) {
	env := newAPIEnv(t)
	admin := env.adminToken(t)
	employeeToken := env.employeeToken(t, env.emp)

	status, body := env.do(t, http.MethodPost, "/api/v1/payroll/advances", employeeToken, map[string]string{
		"date": "2025-03-12", "amount": "500000",
	})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "SALARY_PERIOD_MISSING", body.Error.Code)

	status, body = env.do(t, http.MethodPost, "/api/v1/payroll/runs", admin, map[string]int{"month": 2, "year": 2025})
	require.Equal(t, http.StatusOK, status)
	var run struct {
		Calculated int `json:"calculated"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &run))
	assert.Equal(t, 2, run.Calculated)

	status, _ = env.do(t, http.MethodGet, "/api/v1/payroll/records/"+env.emp.ID+"?month=2&year=2025", admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodPost, "/api/v1/payroll/advances", employeeToken, map[string]string{
		"date": "2025-03-12", "amount": "500000",
	})
	require.Equal(t, http.StatusCreated, status)
	var advance struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &advance))
	assert.Equal(t, env.emp.ID, advance.EmployeeID)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/payroll/advances/"+advance.ID, env.employeeToken(t, env.other), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/payroll/advances/"+advance.ID, employeeToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_Heartbeat(t *testing.T) {
	env := newAPIEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
