package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int { return &i }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

var march = payroll.Period{Month: 3, Year: 2025}

func TestCalculator_Tax_IsMarginal(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{
		TaxBrackets: []payroll.TaxBracket{
			{Level: 2, MinAmount: dec("100"), Rate: dec("0.10"), IsActive: true},
			{Level: 1, MinAmount: dec("0"), MaxAmount: decPtr("100"), Rate: dec("0.05"), IsActive: true},
		},
	}, 26, 8)

	tax := calc.calculateTax(dec("150"))

	// 100 x 5% + 50 x 10%, not a flat 150 x 10%.
	assertDecimal(t, "10", tax)
	assert.False(t, tax.Equal(dec("15")))

	assertDecimal(t, "0", calc.calculateTax(decimal.Zero))
	assertDecimal(t, "5", calc.calculateTax(dec("100")))
}

func TestCalculator_Tax_SkipsInactiveBrackets(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{
		TaxBrackets: []payroll.TaxBracket{
			{Level: 1, MinAmount: dec("0"), Rate: dec("0.10"), IsActive: true},
			{Level: 2, MinAmount: dec("0"), Rate: dec("0.50"), IsActive: false},
		},
	}, 26, 8)

	assertDecimal(t, "100", calc.calculateTax(dec("1000")))
}

func TestCalculator_Calculate_NetSalary(t *testing.T) {
	cfg := payroll.Configuration{
		TaxBrackets: fixtures.DefaultTaxBrackets(),
		InsuranceRates: []payroll.InsuranceRate{
			{InsuranceType: "social", EmployeeRate: dec("0.08"), IsActive: true},
		},
		PenaltyRules: []payroll.PenaltyRule{
			{ViolationType: payroll.ViolationLate, MinMinutes: 1, MaxMinutes: intPtr(15), FixedAmount: dec("50000"), IsActive: true},
		},
		Deductions: []payroll.Deduction{
			{Type: payroll.DeductionPersonal, Amount: dec("5000000")},
		},
		Allowances: []payroll.Allowance{
			{Name: "Lunch", Amount: dec("500000"), ApplyToAll: true, IsActive: true},
		},
	}
	// 25 days x 8 hours puts the hourly rate at 50,000.
	calc := NewCalculator(cfg, 25, 8)

	emp := employee.Employee{ID: "emp-1", Code: "EMP001", Name: "An", BasicSalary: dec("10000000")}
	result := calc.Calculate(CalculationInput{
		Employee: emp,
		Period:   march,
		Overtime: []OvertimeItem{
			{Request: overtime.Request{ID: "ot-1", Date: day(11), Hours: dec("4")}, DayType: calendar.DayTypeWeekday},
		},
		Attendance: []attendance.Record{
			{WorkDate: day(10), LateMinutes: 10, Status: attendance.StatusNotFull},
			{WorkDate: day(11), Status: attendance.StatusFull},
		},
		Advances: dec("200000"),
	})

	rec := result.Record
	assertDecimal(t, "500000", rec.TotalAllowance)
	assertDecimal(t, "300000", rec.OvertimeAmount)
	assertDecimal(t, "800000", rec.InsuranceAmount)
	assertDecimal(t, "50000", rec.PenaltyAmount)
	assertDecimal(t, "200000", rec.AdvanceAmount)
	// 10,800,000 - 800,000 - 5,000,000 falls entirely in the 5% band.
	assertDecimal(t, "5000000", rec.TaxableIncome)
	assertDecimal(t, "250000", rec.TaxAmount)

	expected := dec("10000000").Add(dec("500000")).Add(dec("300000")).
		Sub(dec("800000").Add(rec.TaxAmount).Add(dec("50000")).Add(dec("200000")))
	assert.True(t, expected.Equal(rec.NetSalary))
	assertDecimal(t, "9500000", rec.NetSalary)
	assertDecimal(t, "10800000", rec.GrossIncome())

	require.Len(t, result.Overtime, 1)
	assert.Equal(t, "ot-1", result.Overtime[0].RequestID)
	assertDecimal(t, "1.5", result.Overtime[0].Multiplier)
	require.Len(t, result.Penalties, 1)
	assert.Equal(t, "late", result.Penalties[0].Violation)
}

func TestCalculator_Calculate_NegativeNetIsKept(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{}, 26, 8)

	result := calc.Calculate(CalculationInput{
		Employee: employee.Employee{ID: "emp-1", BasicSalary: dec("1000000")},
		Period:   march,
		Advances: dec("3000000"),
	})

	assertDecimal(t, "-2000000", result.Record.NetSalary)
	assertDecimal(t, "0", result.Record.TaxAmount)
	assertDecimal(t, "0", result.Record.TaxableIncome)
}

func TestCalculator_Insurance_CapsSalaryBase(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{InsuranceRates: fixtures.DefaultInsuranceRates()}, 26, 8)

	// 46.8M x (8% + 1.5%) + 60M x 1%
	assertDecimal(t, "5046000", calc.calculateInsurance(dec("60000000")))
	// 10M x 10.5%
	assertDecimal(t, "1050000", calc.calculateInsurance(dec("10000000")))
}

func TestCalculator_Penalty_Brackets(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{PenaltyRules: fixtures.DefaultPenaltyRules()}, 26, 8)
	basic := dec("20000000")

	tests := []struct {
		name   string
		record attendance.Record
		want   string
	}{
		{"late under 15", attendance.Record{LateMinutes: 14, Status: attendance.StatusLate}, "50000"},
		{"late lower bound is inclusive", attendance.Record{LateMinutes: 15, Status: attendance.StatusLate}, "100000"},
		{"late an hour uses the salary rate", attendance.Record{LateMinutes: 60, Status: attendance.StatusLate}, "200000"},
		{"early leave", attendance.Record{EarlyLeaveMinutes: 45, Status: attendance.StatusNotFull}, "100000"},
		{"late and early on one day", attendance.Record{LateMinutes: 5, EarlyLeaveMinutes: 5, Status: attendance.StatusNotFull}, "100000"},
		{"unauthorized absence", attendance.Record{Status: attendance.StatusAbsent}, "300000"},
		{"approved leave is never charged", attendance.Record{Status: attendance.StatusAbsentPermission}, "0"},
		{"clean day", attendance.Record{Status: attendance.StatusFull}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record.WorkDate = day(10)
			_, total := calc.calculatePenalty(basic, []attendance.Record{tt.record})
			assertDecimal(t, tt.want, total)
		})
	}
}

func TestCalculator_Overtime_DefaultMultipliers(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{}, 25, 8)
	basic := dec("10000000")

	lines, total := calc.calculateOvertime(basic, []OvertimeItem{
		{Request: overtime.Request{ID: "a", Date: day(10), Hours: dec("2")}, DayType: calendar.DayTypeWeekday},
		{Request: overtime.Request{ID: "b", Date: day(15), Hours: dec("2")}, DayType: calendar.DayTypeWeekend},
		{Request: overtime.Request{ID: "c", Date: day(17), Hours: dec("2")}, DayType: calendar.DayTypeHoliday},
	})

	require.Len(t, lines, 3)
	assertDecimal(t, "150000", lines[0].Amount)
	assertDecimal(t, "200000", lines[1].Amount)
	assertDecimal(t, "300000", lines[2].Amount)
	assertDecimal(t, "650000", total)
}

func TestCalculator_Allowance_AssignedOnly(t *testing.T) {
	calc := NewCalculator(payroll.Configuration{
		Allowances: []payroll.Allowance{
			{Name: "Lunch", Amount: dec("700000"), ApplyToAll: true, IsActive: true},
			{Name: "Phone", Amount: dec("200000"), EmployeeIDs: []string{"emp-1"}, IsActive: true},
			{Name: "Retired", Amount: dec("999"), ApplyToAll: true, IsActive: false},
		},
	}, 26, 8)

	assertDecimal(t, "900000", calc.calculateAllowance("emp-1"))
	assertDecimal(t, "700000", calc.calculateAllowance("emp-2"))
}
