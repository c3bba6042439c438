package fixtures

import (
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ==========================================
// DEFAULT WORK SHIFT
// ==========================================

// DefaultShiftStart and DefaultShiftEnd are used by seed when the file
// carries no shift section.
var (
	DefaultShiftStart = calendar.NewTimeOfDay(8, 0)
	DefaultShiftEnd   = calendar.NewTimeOfDay(17, 0)
)

// ==========================================
// DEFAULT PAYROLL CONFIGURATION
// ==========================================

// DefaultTaxBrackets are the seven monthly personal income tax bands.
func DefaultTaxBrackets() []payroll.TaxBracket {
	type band struct {
		min, max int64
		rate     string
	}
	bands := []band{
		{0, 5_000_000, "0.05"},
		{5_000_000, 10_000_000, "0.10"},
		{10_000_000, 18_000_000, "0.15"},
		{18_000_000, 32_000_000, "0.20"},
		{32_000_000, 52_000_000, "0.25"},
		{52_000_000, 80_000_000, "0.30"},
		{80_000_000, 0, "0.35"},
	}

	brackets := make([]payroll.TaxBracket, 0, len(bands))
	for i, b := range bands {
		bracket := payroll.TaxBracket{
			Level:     i + 1,
			MinAmount: decimal.NewFromInt(b.min),
			Rate:      decimal.RequireFromString(b.rate),
			IsActive:  true,
		}
		if b.max > 0 {
			bracket.MaxAmount = decPtr(b.max)
		}
		brackets = append(brackets, bracket)
	}
	return brackets
}

// DefaultInsuranceRates covers social, health and unemployment insurance.
func DefaultInsuranceRates() []payroll.InsuranceRate {
	return []payroll.InsuranceRate{
		{
			InsuranceType: "social",
			EmployeeRate:  decimal.RequireFromString("0.08"),
			EmployerRate:  decimal.RequireFromString("0.175"),
			MaxSalaryBase: decPtr(46_800_000),
			IsActive:      true,
		},
		{
			InsuranceType: "health",
			EmployeeRate:  decimal.RequireFromString("0.015"),
			EmployerRate:  decimal.RequireFromString("0.03"),
			MaxSalaryBase: decPtr(46_800_000),
			IsActive:      true,
		},
		{
			InsuranceType: "unemployment",
			EmployeeRate:  decimal.RequireFromString("0.01"),
			EmployerRate:  decimal.RequireFromString("0.01"),
			MaxSalaryBase: decPtr(99_200_000),
			IsActive:      true,
		},
	}
}

func DefaultPenaltyRules() []payroll.PenaltyRule {
	return []payroll.PenaltyRule{
		{
			ViolationType: payroll.ViolationLate,
			MinMinutes:    1,
			MaxMinutes:    intPtr(15),
			FixedAmount:   decimal.NewFromInt(50_000),
			Description:   strPtr("Late under 15 minutes"),
			IsActive:      true,
		},
		{
			ViolationType: payroll.ViolationLate,
			MinMinutes:    15,
			MaxMinutes:    intPtr(60),
			FixedAmount:   decimal.NewFromInt(100_000),
			Description:   strPtr("Late 15 to 60 minutes"),
			IsActive:      true,
		},
		{
			ViolationType: payroll.ViolationLate,
			MinMinutes:    60,
			RateOfSalary:  decimal.RequireFromString("0.01"),
			Description:   strPtr("Late an hour or more"),
			IsActive:      true,
		},
		{
			ViolationType: payroll.ViolationEarlyLeave,
			MinMinutes:    1,
			MaxMinutes:    intPtr(30),
			FixedAmount:   decimal.NewFromInt(50_000),
			Description:   strPtr("Left under 30 minutes early"),
			IsActive:      true,
		},
		{
			ViolationType: payroll.ViolationEarlyLeave,
			MinMinutes:    30,
			FixedAmount:   decimal.NewFromInt(100_000),
			Description:   strPtr("Left 30 minutes or more early"),
			IsActive:      true,
		},
		{
			ViolationType: payroll.ViolationUnauthorizedAbsence,
			FixedAmount:   decimal.NewFromInt(300_000),
			Description:   strPtr("Absent without approved leave"),
			IsActive:      true,
		},
	}
}

func DefaultOvertimeRates() []payroll.OvertimeRate {
	rates := make([]payroll.OvertimeRate, 0, 3)
	for _, dt := range []calendar.DayType{calendar.DayTypeWeekday, calendar.DayTypeWeekend, calendar.DayTypeHoliday} {
		rates = append(rates, payroll.OvertimeRate{
			DayType:    dt,
			Multiplier: payroll.DefaultMultiplier(dt),
			IsActive:   true,
		})
	}
	return rates
}

// DefaultPayrollConfiguration is the full configuration installed by seed
// when the seed file has no payroll section.
func DefaultPayrollConfiguration() payroll.Configuration {
	return payroll.Configuration{
		TaxBrackets:    DefaultTaxBrackets(),
		InsuranceRates: DefaultInsuranceRates(),
		PenaltyRules:   DefaultPenaltyRules(),
		Deductions: []payroll.Deduction{
			{Type: payroll.DeductionPersonal, Amount: payroll.DefaultPersonalDeduction},
			{Type: payroll.DeductionDependent, Amount: payroll.DefaultDependentDeduction},
		},
		OvertimeRates: DefaultOvertimeRates(),
		Allowances: []payroll.Allowance{
			{
				Name:       "Lunch",
				Amount:     decimal.NewFromInt(730_000),
				ApplyToAll: true,
				IsActive:   true,
			},
		},
	}
}
