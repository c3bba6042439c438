package payroll

import (
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type RunPayrollRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *RunPayrollRequest) Validate() error {
	return validatePeriod(r.Month, r.Year)
}

func (r RunPayrollRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

type RunFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type RunPayrollResponse struct {
	Month       int                    `json:"month"`
	Year        int                    `json:"year"`
	Calculated  int                    `json:"calculated"`
	Skipped     []string               `json:"skipped"`
	NegativeNet []string               `json:"negative_net"`
	Failures    []RunFailure           `json:"failures"`
	Records     []SalaryRecordResponse `json:"records"`
}

// ========== RECORD DTOs ==========

type PeriodQuery struct {
	Month int
	Year  int
}

func (q *PeriodQuery) Validate() error {
	return validatePeriod(q.Month, q.Year)
}

func (q PeriodQuery) Period() Period {
	return Period{Month: q.Month, Year: q.Year}
}

type RecordQuery struct {
	EmployeeID string
	Month      int
	Year       int
}

func (q *RecordQuery) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(q.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if err := validatePeriod(q.Month, q.Year); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	return errs.Err()
}

func (q RecordQuery) Period() Period {
	return Period{Month: q.Month, Year: q.Year}
}

type SalaryRecordResponse struct {
	ID              string          `json:"id,omitempty"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeCode    *string         `json:"employee_code,omitempty"`
	EmployeeName    *string         `json:"employee_name,omitempty"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	TotalAllowance  decimal.Decimal `json:"total_allowance"`
	OvertimeAmount  decimal.Decimal `json:"overtime_amount"`
	GrossIncome     decimal.Decimal `json:"gross_income"`
	InsuranceAmount decimal.Decimal `json:"insurance_amount"`
	TaxableIncome   decimal.Decimal `json:"taxable_income"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	AdvanceAmount   decimal.Decimal `json:"advance_amount"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Status          string          `json:"status"`
	CalculatedAt    string          `json:"calculated_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
}

type OvertimeLine struct {
	RequestID  string          `json:"request_id"`
	Date       string          `json:"date"`
	DayType    string          `json:"day_type"`
	Hours      decimal.Decimal `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Amount     decimal.Decimal `json:"amount"`
}

type PenaltyLine struct {
	Date      string          `json:"date"`
	Violation string          `json:"violation"`
	Minutes   int             `json:"minutes"`
	Amount    decimal.Decimal `json:"amount"`
}

type PreviewResponse struct {
	Record    SalaryRecordResponse `json:"record"`
	Overtime  []OvertimeLine       `json:"overtime"`
	Penalties []PenaltyLine        `json:"penalties"`
}

// ========== CONFIGURATION DTOs ==========

type TaxBracketPayload struct {
	Level     int              `json:"level"`
	MinAmount decimal.Decimal  `json:"min_amount"`
	MaxAmount *decimal.Decimal `json:"max_amount"`
	Rate      decimal.Decimal  `json:"rate"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

type InsuranceRatePayload struct {
	InsuranceType string           `json:"insurance_type"`
	EmployeeRate  decimal.Decimal  `json:"employee_rate"`
	EmployerRate  decimal.Decimal  `json:"employer_rate"`
	MaxSalaryBase *decimal.Decimal `json:"max_salary_base"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

type PenaltyRulePayload struct {
	ViolationType string          `json:"violation_type"`
	MinMinutes    int             `json:"min_minutes"`
	MaxMinutes    *int            `json:"max_minutes"`
	FixedAmount   decimal.Decimal `json:"fixed_amount"`
	RateOfSalary  decimal.Decimal `json:"rate_of_salary"`
	Description   *string         `json:"description,omitempty"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

type OvertimeRatePayload struct {
	DayType    string          `json:"day_type"`
	Multiplier decimal.Decimal `json:"multiplier"`
	IsActive   *bool           `json:"is_active,omitempty"`
}

type AllowancePayload struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	ApplyToAll  bool            `json:"apply_to_all"`
	IsActive    *bool           `json:"is_active,omitempty"`
	EmployeeIDs []string        `json:"employee_ids,omitempty"`
}

// ConfigurationPayload is both the body of a full replacement and the
// representation returned to clients.
type ConfigurationPayload struct {
	TaxBrackets        []TaxBracketPayload    `json:"tax_brackets"`
	InsuranceRates     []InsuranceRatePayload `json:"insurance_rates"`
	PenaltyRules       []PenaltyRulePayload   `json:"penalty_rules"`
	PersonalDeduction  *decimal.Decimal       `json:"personal_deduction"`
	DependentDeduction *decimal.Decimal       `json:"dependent_deduction"`
	OvertimeRates      []OvertimeRatePayload  `json:"overtime_rates"`
	Allowances         []AllowancePayload     `json:"allowances"`
}

func (p *ConfigurationPayload) Validate() error {
	var errs validator.ValidationErrors

	levels := map[int]bool{}
	for _, b := range p.TaxBrackets {
		if levels[b.Level] {
			errs.Add("tax_brackets", "tax bracket levels must be unique")
			break
		}
		levels[b.Level] = true
	}
	for _, a := range p.Allowances {
		for _, id := range a.EmployeeIDs {
			if !validator.IsValidUUID(id) {
				errs.Add("allowances", "employee_ids must be valid UUIDs")
				break
			}
		}
	}
	dayTypes := map[string]bool{}
	for _, r := range p.OvertimeRates {
		if dayTypes[r.DayType] {
			errs.Add("overtime_rates", "each day_type may appear once")
			break
		}
		dayTypes[r.DayType] = true
	}

	return errs.Err()
}

// ========== ADVANCE DTOs ==========

type CreateAdvanceRequest struct {
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     *string         `json:"reason,omitempty"`
}

func (r *CreateAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if !r.Amount.IsPositive() {
		errs.Add("amount", "amount must be greater than zero")
	}
	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type ReviewAdvanceRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *ReviewAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if s := AdvanceStatus(r.Status); s != AdvanceStatusApproved && s != AdvanceStatusRejected {
		errs.Add("status", "status must be approved or rejected")
	}

	return errs.Err()
}

type AdvanceFilter struct {
	EmployeeID *string
	Status     *string
	Month      *int
	Year       *int
	Page       int
	Limit      int
}

func (f *AdvanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && !AdvanceStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be pending, approved or rejected")
	}
	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	return errs.Err()
}

type AdvanceResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	RequestDate  string          `json:"request_date"`
	Reason       *string         `json:"reason,omitempty"`
	Status       string          `json:"status"`
	ApprovedAt   *string         `json:"approved_at,omitempty"`
}

type ListAdvanceResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []AdvanceResponse `json:"requests"`
}

func validatePeriod(month, year int) error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}

	return errs.Err()
}
