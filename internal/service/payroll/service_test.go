package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	calendarservice "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*3600)

type testEnv struct {
	store    *fixtures.Store
	payroll  payroll.PayrollService
	advances payroll.AdvanceService
	now      time.Time
	emp      employee.Employee
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: fixtures.NewStore(),
		now:   time.Date(2025, 4, 5, 10, 0, 0, 0, ict),
	}
	env.store.PutConfiguration(fixtures.DefaultPayrollConfiguration())
	env.emp = env.store.PutEmployee(employee.Employee{
		Code:        "EMP001",
		Name:        "Nguyen Van An",
		BasicSalary: dec("20000000"),
		Dependents:  1,
	})

	cal := calendarservice.NewCalendarService(
		env.store.ShiftRepository(),
		env.store.HolidayRepository(),
		ict,
		func() time.Time { return env.now },
	)
	settings := config.PayrollConfig{StandardWorkDays: 25, HoursPerDay: 8, AdvanceLimitRatio: dec("0.3")}

	env.payroll = NewPayrollService(
		env.store.Transactor(),
		env.store.ConfigurationRepository(),
		env.store.SalaryRecordRepository(),
		env.store.AdvanceRepository(),
		env.store.EmployeeRepository(),
		env.store.AttendanceRepository(),
		env.store.OvertimeRepository(),
		cal,
		settings,
	)
	env.advances = NewAdvanceService(
		env.store.Transactor(),
		env.store.AdvanceRepository(),
		env.store.SalaryRecordRepository(),
		env.store.EmployeeRepository(),
		cal,
		settings.AdvanceLimitRatio,
	)
	return env
}

func (e *testEnv) runMarch(t *testing.T) payroll.RunPayrollResponse {
	t.Helper()
	resp, err := e.payroll.Run(context.Background(), payroll.RunPayrollRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	return resp
}

func TestPayrollService_Run_WritesRecordAndOvertimeAmount(t *testing.T) {
	env := newTestEnv(t)

	// Saturday overtime, paid at the weekend multiplier.
	ot := env.store.PutOvertime(overtime.Request{
		EmployeeID: env.emp.ID,
		Date:       day(15),
		Hours:      dec("2"),
		Status:     overtime.StatusApproved,
	})
	env.store.PutOvertime(overtime.Request{
		EmployeeID: env.emp.ID,
		Date:       day(16),
		Hours:      dec("5"),
		Status:     overtime.StatusRejected,
	})
	env.store.PutAttendance(attendance.Record{EmployeeID: env.emp.ID, WorkDate: day(10), LateMinutes: 20, Status: attendance.StatusNotFull})
	env.store.PutAttendance(attendance.Record{EmployeeID: env.emp.ID, WorkDate: day(11), Status: attendance.StatusAbsentPermission})
	env.store.PutAdvance(payroll.AdvanceRequest{EmployeeID: env.emp.ID, Amount: dec("1000000"), Month: 3, Year: 2025, Status: payroll.AdvanceStatusApproved})
	env.store.PutAdvance(payroll.AdvanceRequest{EmployeeID: env.emp.ID, Amount: dec("500000"), Month: 3, Year: 2025, Status: payroll.AdvanceStatusPending})

	resp := env.runMarch(t)
	assert.Equal(t, 1, resp.Calculated)
	assert.Empty(t, resp.Failures)
	assert.Empty(t, resp.NegativeNet)
	require.Len(t, resp.Records, 1)

	rec := resp.Records[0]
	// 20,000,000 / 200 hours x 2 hours x 2.0
	assertDecimal(t, "400000", rec.OvertimeAmount)
	assertDecimal(t, "730000", rec.TotalAllowance)
	assertDecimal(t, "100000", rec.PenaltyAmount)
	assertDecimal(t, "1000000", rec.AdvanceAmount)
	assert.Equal(t, string(payroll.RecordStatusPending), rec.Status)

	assertDecimal(t, "400000", env.store.Overtime(ot.ID).Amount)
}

func TestPayrollService_Run_ReplacesWholesale(t *testing.T) {
	env := newTestEnv(t)

	first := env.runMarch(t)
	env.store.PutAttendance(attendance.Record{EmployeeID: env.emp.ID, WorkDate: day(12), Status: attendance.StatusAbsent})
	second := env.runMarch(t)

	records, err := env.payroll.ListRecords(context.Background(), payroll.PeriodQuery{Month: 3, Year: 2025})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEqual(t, first.Records[0].ID, second.Records[0].ID)
	assertDecimal(t, "0", first.Records[0].PenaltyAmount)
	assertDecimal(t, "300000", records[0].PenaltyAmount)
}

func TestPayrollService_Run_SkipsPaidRecords(t *testing.T) {
	env := newTestEnv(t)

	first := env.runMarch(t)
	_, err := env.payroll.MarkPaid(context.Background(), first.Records[0].ID)
	require.NoError(t, err)

	second := env.runMarch(t)
	assert.Equal(t, 0, second.Calculated)
	assert.Equal(t, []string{env.emp.ID}, second.Skipped)

	got, err := env.payroll.GetRecord(context.Background(), payroll.RecordQuery{EmployeeID: env.emp.ID, Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, first.Records[0].ID, got.ID)
	assert.Equal(t, string(payroll.RecordStatusPaid), got.Status)
	assert.NotNil(t, got.PaidAt)
}

func TestPayrollService_Run_SurfacesNegativeNet(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutAdvance(payroll.AdvanceRequest{EmployeeID: env.emp.ID, Amount: dec("50000000"), Month: 3, Year: 2025, Status: payroll.AdvanceStatusApproved})

	resp := env.runMarch(t)
	assert.Equal(t, []string{env.emp.ID}, resp.NegativeNet)
	assert.True(t, resp.Records[0].NetSalary.IsNegative())
}

func TestPayrollService_Run_SkipsEmployeesJoiningLater(t *testing.T) {
	env := newTestEnv(t)
	joined := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	env.store.PutEmployee(employee.Employee{Code: "EMP002", Name: "April starter", BasicSalary: dec("9000000"), JoinedAt: &joined})

	resp := env.runMarch(t)
	assert.Equal(t, 1, resp.Calculated)
}

func TestPayrollService_Run_InvalidPeriod(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.payroll.Run(context.Background(), payroll.RunPayrollRequest{Month: 13, Year: 2025})
	assert.Error(t, err)
}

func TestPayrollService_MarkPaid_Twice(t *testing.T) {
	env := newTestEnv(t)
	resp := env.runMarch(t)

	_, err := env.payroll.MarkPaid(context.Background(), resp.Records[0].ID)
	require.NoError(t, err)
	_, err = env.payroll.MarkPaid(context.Background(), resp.Records[0].ID)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordPaid)
}

func TestPayrollService_GetRecord_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.payroll.GetRecord(context.Background(), payroll.RecordQuery{EmployeeID: env.emp.ID, Month: 1, Year: 2025})
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}

func TestPayrollService_Preview_DoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutAttendance(attendance.Record{EmployeeID: env.emp.ID, WorkDate: day(10), LateMinutes: 5, Status: attendance.StatusLate})

	preview, err := env.payroll.Preview(context.Background(), payroll.RecordQuery{EmployeeID: env.emp.ID, Month: 3, Year: 2025})
	require.NoError(t, err)
	require.Len(t, preview.Penalties, 1)
	assert.Equal(t, 5, preview.Penalties[0].Minutes)

	records, err := env.payroll.ListRecords(context.Background(), payroll.PeriodQuery{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPayrollService_ReplaceConfiguration(t *testing.T) {
	env := newTestEnv(t)

	overlapping := payroll.ConfigurationPayload{
		TaxBrackets: []payroll.TaxBracketPayload{
			{Level: 1, MinAmount: dec("0"), MaxAmount: decPtr("100"), Rate: dec("0.05")},
			{Level: 2, MinAmount: dec("50"), Rate: dec("0.10")},
		},
	}
	_, err := env.payroll.ReplaceConfiguration(context.Background(), overlapping)
	assert.ErrorIs(t, err, payroll.ErrInvalidConfiguration)

	personal := dec("9000000")
	valid := payroll.ConfigurationPayload{
		TaxBrackets: []payroll.TaxBracketPayload{
			{Level: 1, MinAmount: dec("0"), MaxAmount: decPtr("100"), Rate: dec("0.05")},
			{Level: 2, MinAmount: dec("100"), Rate: dec("0.10")},
		},
		PenaltyRules: []payroll.PenaltyRulePayload{
			{ViolationType: "late", MinMinutes: 1, FixedAmount: dec("10000")},
		},
		PersonalDeduction: &personal,
		OvertimeRates: []payroll.OvertimeRatePayload{
			{DayType: string(calendar.DayTypeHoliday), Multiplier: dec("4")},
		},
	}
	got, err := env.payroll.ReplaceConfiguration(context.Background(), valid)
	require.NoError(t, err)
	require.Len(t, got.TaxBrackets, 2)
	assert.True(t, *got.TaxBrackets[0].IsActive)
	assertDecimal(t, "9000000", *got.PersonalDeduction)
	assertDecimal(t, "4400000", *got.DependentDeduction)
	assert.Empty(t, got.Allowances)
}

// ========== ADVANCES ==========

func (e *testEnv) putMarchNet(net string) {
	e.store.PutSalary(payroll.SalaryRecord{
		EmployeeID:  e.emp.ID,
		PeriodMonth: 3,
		PeriodYear:  2025,
		NetSalary:   dec(net),
	})
}

func TestAdvanceService_Create_RequiresPreviousMonth(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-10",
		Amount:     dec("1000000"),
	})
	assert.ErrorIs(t, err, payroll.ErrSalaryPeriodMissing)
}

func TestAdvanceService_Create_EnforcesCumulativeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.putMarchNet("10000000")

	first, err := env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-10",
		Amount:     dec("2000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.AdvanceStatusPending), first.Status)
	assert.Equal(t, 4, first.Month)

	_, err = env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-12",
		Amount:     dec("1500000"),
	})
	assert.ErrorIs(t, err, payroll.ErrAdvanceLimitExceeded)

	_, err = env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-12",
		Amount:     dec("1000000"),
	})
	assert.NoError(t, err)
}

func TestAdvanceService_Create_RejectedDoNotCount(t *testing.T) {
	env := newTestEnv(t)
	env.putMarchNet("10000000")
	env.store.PutAdvance(payroll.AdvanceRequest{EmployeeID: env.emp.ID, Amount: dec("3000000"), Month: 4, Year: 2025, Status: payroll.AdvanceStatusRejected})

	_, err := env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-10",
		Amount:     dec("3000000"),
	})
	assert.NoError(t, err)
}

func TestAdvanceService_Create_DateInPast(t *testing.T) {
	env := newTestEnv(t)
	env.putMarchNet("10000000")

	_, err := env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-04",
		Amount:     dec("100000"),
	})
	assert.ErrorIs(t, err, payroll.ErrAdvanceDateInPast)
}

func TestAdvanceService_ReviewAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.putMarchNet("10000000")

	created, err := env.advances.CreateAdvance(context.Background(), payroll.CreateAdvanceRequest{
		EmployeeID: env.emp.ID,
		Date:       "2025-04-10",
		Amount:     dec("1000000"),
	})
	require.NoError(t, err)

	approved, err := env.advances.ReviewAdvance(context.Background(), payroll.ReviewAdvanceRequest{ID: created.ID, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.NotNil(t, approved.ApprovedAt)

	_, err = env.advances.ReviewAdvance(context.Background(), payroll.ReviewAdvanceRequest{ID: created.ID, Status: "rejected"})
	assert.ErrorIs(t, err, payroll.ErrAdvanceAlreadyProcessed)

	err = env.advances.DeleteAdvance(context.Background(), created.ID)
	assert.ErrorIs(t, err, payroll.ErrAdvanceApproved)

	list, err := env.advances.ListAdvances(context.Background(), payroll.AdvanceFilter{EmployeeID: &env.emp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 1, list.TotalPages)
}
