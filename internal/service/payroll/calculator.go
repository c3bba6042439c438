package payroll

import (
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// OvertimeItem is an approved overtime request with its resolved day type.
type OvertimeItem struct {
	Request overtime.Request
	DayType calendar.DayType
}

type CalculationInput struct {
	Employee   employee.Employee
	Period     payroll.Period
	Overtime   []OvertimeItem
	Attendance []attendance.Record
	// Advances is the sum of approved advances for the period.
	Advances decimal.Decimal
}

type CalculationResult struct {
	Record    payroll.SalaryRecord
	Overtime  []payroll.OvertimeLine
	Penalties []payroll.PenaltyLine
}

// Calculator turns one employee's month into a salary record. It performs
// no I/O.
type Calculator struct {
	config      payroll.Configuration
	workDays    int
	hoursPerDay int
}

func NewCalculator(config payroll.Configuration, workDays, hoursPerDay int) *Calculator {
	return &Calculator{
		config:      config,
		workDays:    workDays,
		hoursPerDay: hoursPerDay,
	}
}

func (c *Calculator) Calculate(in CalculationInput) CalculationResult {
	basic := in.Employee.BasicSalary

	allowance := c.calculateAllowance(in.Employee.ID)
	overtimeLines, overtimeAmount := c.calculateOvertime(basic, in.Overtime)
	penaltyLines, penaltyAmount := c.calculatePenalty(basic, in.Attendance)
	insurance := c.calculateInsurance(basic)

	income := basic.Add(allowance).Add(overtimeAmount)
	taxable := c.taxableIncome(income, insurance, in.Employee.Dependents)
	tax := c.calculateTax(taxable)

	advance := in.Advances.Round(2)
	net := income.Sub(insurance.Add(tax).Add(penaltyAmount).Add(advance))

	return CalculationResult{
		Record: payroll.SalaryRecord{
			EmployeeID:      in.Employee.ID,
			PeriodMonth:     in.Period.Month,
			PeriodYear:      in.Period.Year,
			BasicSalary:     basic,
			TotalAllowance:  allowance,
			OvertimeAmount:  overtimeAmount,
			InsuranceAmount: insurance,
			TaxableIncome:   taxable,
			TaxAmount:       tax,
			PenaltyAmount:   penaltyAmount,
			AdvanceAmount:   advance,
			NetSalary:       net,
			Status:          payroll.RecordStatusPending,
			EmployeeCode:    &in.Employee.Code,
			EmployeeName:    &in.Employee.Name,
		},
		Overtime:  overtimeLines,
		Penalties: penaltyLines,
	}
}

func (c *Calculator) calculateAllowance(employeeID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.config.Allowances {
		if a.AppliesTo(employeeID) {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// HourlyRate is basic / (standard work days × hours per day).
func (c *Calculator) HourlyRate(basic decimal.Decimal) decimal.Decimal {
	units := int64(c.workDays * c.hoursPerDay)
	if units <= 0 {
		return decimal.Zero
	}
	return basic.Div(decimal.NewFromInt(units))
}

func (c *Calculator) calculateOvertime(basic decimal.Decimal, items []OvertimeItem) ([]payroll.OvertimeLine, decimal.Decimal) {
	rate := c.HourlyRate(basic)
	lines := make([]payroll.OvertimeLine, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		multiplier := c.config.Multiplier(item.DayType)
		amount := item.Request.Hours.Mul(rate).Mul(multiplier).Round(2)
		total = total.Add(amount)
		lines = append(lines, payroll.OvertimeLine{
			RequestID:  item.Request.ID,
			Date:       calendar.FormatDate(item.Request.Date),
			DayType:    string(item.DayType),
			Hours:      item.Request.Hours,
			Multiplier: multiplier,
			Amount:     amount,
		})
	}
	return lines, total
}

// calculatePenalty charges late and early minutes against their brackets
// and unauthorized absences against the first absence rule. Days on
// approved leave are never charged.
func (c *Calculator) calculatePenalty(basic decimal.Decimal, records []attendance.Record) ([]payroll.PenaltyLine, decimal.Decimal) {
	late := c.config.PenaltyRulesFor(payroll.ViolationLate)
	early := c.config.PenaltyRulesFor(payroll.ViolationEarlyLeave)
	absence := c.config.PenaltyRulesFor(payroll.ViolationUnauthorizedAbsence)

	var lines []payroll.PenaltyLine
	total := decimal.Zero
	charge := func(date string, v payroll.ViolationType, minutes int, rule payroll.PenaltyRule) {
		amount := rule.Charge(basic).Round(2)
		total = total.Add(amount)
		lines = append(lines, payroll.PenaltyLine{
			Date:      date,
			Violation: string(v),
			Minutes:   minutes,
			Amount:    amount,
		})
	}

	for _, rec := range records {
		date := calendar.FormatDate(rec.WorkDate)

		switch rec.Status {
		case attendance.StatusAbsentPermission:
			continue
		case attendance.StatusAbsent:
			if len(absence) > 0 {
				charge(date, payroll.ViolationUnauthorizedAbsence, 0, absence[0])
			}
			continue
		}

		if rule, ok := matchBracket(late, rec.LateMinutes); ok {
			charge(date, payroll.ViolationLate, rec.LateMinutes, rule)
		}
		if rule, ok := matchBracket(early, rec.EarlyLeaveMinutes); ok {
			charge(date, payroll.ViolationEarlyLeave, rec.EarlyLeaveMinutes, rule)
		}
	}
	return lines, total
}

func matchBracket(rules []payroll.PenaltyRule, minutes int) (payroll.PenaltyRule, bool) {
	if minutes <= 0 {
		return payroll.PenaltyRule{}, false
	}
	for _, r := range rules {
		if r.Contains(minutes) {
			return r, true
		}
	}
	return payroll.PenaltyRule{}, false
}

func (c *Calculator) calculateInsurance(basic decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.config.InsuranceRates {
		if !r.IsActive {
			continue
		}
		total = total.Add(r.Base(basic).Mul(r.EmployeeRate))
	}
	return total.Round(2)
}

func (c *Calculator) taxableIncome(income, insurance decimal.Decimal, dependents int) decimal.Decimal {
	deductions := c.config.DeductionAmount(payroll.DeductionPersonal).
		Add(c.config.DeductionAmount(payroll.DeductionDependent).Mul(decimal.NewFromInt(int64(dependents))))

	taxable := income.Sub(insurance).Sub(deductions)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}

// calculateTax applies each bracket's rate to the slice of income inside it.
func (c *Calculator) calculateTax(taxable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range c.config.ActiveTaxBrackets() {
		if !taxable.GreaterThan(b.MinAmount) {
			break
		}
		upper := taxable
		if b.MaxAmount != nil && b.MaxAmount.LessThan(taxable) {
			upper = *b.MaxAmount
		}
		tax = tax.Add(upper.Sub(b.MinAmount).Mul(b.Rate))
	}
	return tax.Round(2)
}
