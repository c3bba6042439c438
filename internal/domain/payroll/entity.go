package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

// TaxBracket is one marginal band of the progressive income tax. A nil
// MaxAmount means the band is unbounded.
type TaxBracket struct {
	ID        string
	Level     int
	MinAmount decimal.Decimal
	MaxAmount *decimal.Decimal
	Rate      decimal.Decimal
	IsActive  bool
}

type InsuranceRate struct {
	ID            string
	InsuranceType string
	EmployeeRate  decimal.Decimal
	EmployerRate  decimal.Decimal
	MaxSalaryBase *decimal.Decimal
	IsActive      bool
}

// Base is the salary the employee rate is applied to.
func (r InsuranceRate) Base(basicSalary decimal.Decimal) decimal.Decimal {
	if r.MaxSalaryBase != nil && basicSalary.GreaterThan(*r.MaxSalaryBase) {
		return *r.MaxSalaryBase
	}
	return basicSalary
}

type ViolationType string

const (
	ViolationLate                ViolationType = "late"
	ViolationEarlyLeave          ViolationType = "early_leave"
	ViolationUnauthorizedAbsence ViolationType = "unauthorized_absence"
)

func (v ViolationType) IsValid() bool {
	switch v {
	case ViolationLate, ViolationEarlyLeave, ViolationUnauthorizedAbsence:
		return true
	}
	return false
}

type PenaltyRule struct {
	ID            string
	ViolationType ViolationType
	MinMinutes    int
	MaxMinutes    *int
	FixedAmount   decimal.Decimal
	RateOfSalary  decimal.Decimal
	Description   *string
	IsActive      bool
}

// Contains reports whether minutes falls in [MinMinutes, MaxMinutes).
func (r PenaltyRule) Contains(minutes int) bool {
	if minutes < r.MinMinutes {
		return false
	}
	return r.MaxMinutes == nil || minutes < *r.MaxMinutes
}

// Charge is the fixed amount when set, otherwise the rate of basic salary.
func (r PenaltyRule) Charge(basicSalary decimal.Decimal) decimal.Decimal {
	if r.FixedAmount.IsPositive() {
		return r.FixedAmount
	}
	return r.RateOfSalary.Mul(basicSalary)
}

type DeductionType string

const (
	DeductionPersonal  DeductionType = "personal"
	DeductionDependent DeductionType = "dependent"
)

type Deduction struct {
	Type   DeductionType
	Amount decimal.Decimal
}

type OvertimeRate struct {
	DayType    calendar.DayType
	Multiplier decimal.Decimal
	IsActive   bool
}

type Allowance struct {
	ID         string
	Name       string
	Amount     decimal.Decimal
	ApplyToAll bool
	IsActive   bool
	// EmployeeIDs lists explicit assignments when ApplyToAll is false.
	EmployeeIDs []string
}

// AppliesTo reports whether an active allowance is paid to the employee.
func (a Allowance) AppliesTo(employeeID string) bool {
	if !a.IsActive {
		return false
	}
	if a.ApplyToAll {
		return true
	}
	for _, id := range a.EmployeeIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

type RecordStatus string

const (
	RecordStatusPending RecordStatus = "pending"
	RecordStatusPaid    RecordStatus = "paid"
)

// SalaryRecord is replaced wholesale on every recalculation of its period.
type SalaryRecord struct {
	ID              string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	BasicSalary     decimal.Decimal
	TotalAllowance  decimal.Decimal
	OvertimeAmount  decimal.Decimal
	InsuranceAmount decimal.Decimal
	TaxableIncome   decimal.Decimal
	TaxAmount       decimal.Decimal
	PenaltyAmount   decimal.Decimal
	AdvanceAmount   decimal.Decimal
	NetSalary       decimal.Decimal
	Status          RecordStatus
	CalculatedAt    time.Time
	PaidAt          *time.Time

	// Joined fields
	EmployeeCode *string
	EmployeeName *string
}

func (r SalaryRecord) GrossIncome() decimal.Decimal {
	return r.BasicSalary.Add(r.TotalAllowance).Add(r.OvertimeAmount)
}

type AdvanceStatus string

const (
	AdvanceStatusPending  AdvanceStatus = "pending"
	AdvanceStatusApproved AdvanceStatus = "approved"
	AdvanceStatusRejected AdvanceStatus = "rejected"
)

func (s AdvanceStatus) IsValid() bool {
	switch s {
	case AdvanceStatusPending, AdvanceStatusApproved, AdvanceStatusRejected:
		return true
	}
	return false
}

type AdvanceRequest struct {
	ID          string
	EmployeeID  string
	Amount      decimal.Decimal
	Month       int
	Year        int
	RequestDate time.Time
	Reason      *string
	Status      AdvanceStatus
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
}

// Period is a payroll month.
type Period struct {
	Month int
	Year  int
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000 && p.Year <= 2100
}

func (p Period) Previous() Period {
	y, m := calendar.PreviousMonth(p.Year, p.Month)
	return Period{Month: m, Year: y}
}

// Range returns the first and last civil dates of the month.
func (p Period) Range() (time.Time, time.Time) {
	return calendar.MonthRange(p.Year, p.Month)
}
