package payroll

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/shopspring/decimal"
)

var (
	DefaultPersonalDeduction  = decimal.NewFromInt(11_000_000)
	DefaultDependentDeduction = decimal.NewFromInt(4_400_000)
)

// DefaultMultiplier is used when no active rate is configured for a day type.
func DefaultMultiplier(dt calendar.DayType) decimal.Decimal {
	switch dt {
	case calendar.DayTypeHoliday:
		return decimal.NewFromInt(3)
	case calendar.DayTypeWeekend:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromFloat(1.5)
	}
}

// Configuration is the full set of tables a payroll run reads. It is loaded
// once per run and never mutated by the calculation.
type Configuration struct {
	TaxBrackets    []TaxBracket
	InsuranceRates []InsuranceRate
	PenaltyRules   []PenaltyRule
	Deductions     []Deduction
	OvertimeRates  []OvertimeRate
	Allowances     []Allowance
}

func (c Configuration) Multiplier(dt calendar.DayType) decimal.Decimal {
	for _, r := range c.OvertimeRates {
		if r.DayType == dt && r.IsActive {
			return r.Multiplier
		}
	}
	return DefaultMultiplier(dt)
}

func (c Configuration) DeductionAmount(t DeductionType) decimal.Decimal {
	for _, d := range c.Deductions {
		if d.Type == t {
			return d.Amount
		}
	}
	if t == DeductionDependent {
		return DefaultDependentDeduction
	}
	return DefaultPersonalDeduction
}

// ActiveTaxBrackets returns the active brackets in ascending order.
func (c Configuration) ActiveTaxBrackets() []TaxBracket {
	out := make([]TaxBracket, 0, len(c.TaxBrackets))
	for _, b := range c.TaxBrackets {
		if b.IsActive {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinAmount.LessThan(out[j].MinAmount)
	})
	return out
}

// PenaltyRulesFor returns active rules of one violation type, lowest bracket first.
func (c Configuration) PenaltyRulesFor(v ViolationType) []PenaltyRule {
	var out []PenaltyRule
	for _, r := range c.PenaltyRules {
		if r.IsActive && r.ViolationType == v {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinMinutes < out[j].MinMinutes
	})
	return out
}

// Validate checks the tables are internally consistent.
func (c Configuration) Validate() error {
	one := decimal.NewFromInt(1)
	inUnit := func(d decimal.Decimal) bool {
		return !d.IsNegative() && !d.GreaterThan(one)
	}

	brackets := c.ActiveTaxBrackets()
	for i, b := range brackets {
		if b.MinAmount.IsNegative() || !inUnit(b.Rate) {
			return fmt.Errorf("%w: tax bracket level %d has a negative minimum or a rate outside [0,1]", ErrInvalidConfiguration, b.Level)
		}
		if b.MaxAmount != nil && !b.MaxAmount.GreaterThan(b.MinAmount) {
			return fmt.Errorf("%w: tax bracket level %d must have max_amount above min_amount", ErrInvalidConfiguration, b.Level)
		}
		if i == len(brackets)-1 {
			break
		}
		if b.MaxAmount == nil {
			return fmt.Errorf("%w: only the highest tax bracket may be unbounded", ErrInvalidConfiguration)
		}
		if brackets[i+1].MinAmount.LessThan(*b.MaxAmount) {
			return fmt.Errorf("%w: tax brackets level %d and %d overlap", ErrInvalidConfiguration, b.Level, brackets[i+1].Level)
		}
	}

	seenInsurance := map[string]bool{}
	for _, r := range c.InsuranceRates {
		if r.InsuranceType == "" || seenInsurance[r.InsuranceType] {
			return fmt.Errorf("%w: insurance types must be non-empty and unique", ErrInvalidConfiguration)
		}
		seenInsurance[r.InsuranceType] = true
		if !inUnit(r.EmployeeRate) || !inUnit(r.EmployerRate) {
			return fmt.Errorf("%w: insurance %s rates must be within [0,1]", ErrInvalidConfiguration, r.InsuranceType)
		}
		if r.MaxSalaryBase != nil && r.MaxSalaryBase.IsNegative() {
			return fmt.Errorf("%w: insurance %s has a negative salary cap", ErrInvalidConfiguration, r.InsuranceType)
		}
	}

	for _, r := range c.PenaltyRules {
		if !r.ViolationType.IsValid() {
			return fmt.Errorf("%w: unknown violation type %q", ErrInvalidConfiguration, r.ViolationType)
		}
		if r.MinMinutes < 0 || (r.MaxMinutes != nil && *r.MaxMinutes <= r.MinMinutes) {
			return fmt.Errorf("%w: penalty bracket for %s is empty or negative", ErrInvalidConfiguration, r.ViolationType)
		}
		if r.FixedAmount.IsNegative() || !inUnit(r.RateOfSalary) {
			return fmt.Errorf("%w: penalty for %s has a negative amount or a rate outside [0,1]", ErrInvalidConfiguration, r.ViolationType)
		}
	}

	for _, d := range c.Deductions {
		if d.Type != DeductionPersonal && d.Type != DeductionDependent {
			return fmt.Errorf("%w: unknown deduction type %q", ErrInvalidConfiguration, d.Type)
		}
		if d.Amount.IsNegative() {
			return fmt.Errorf("%w: deduction %s must not be negative", ErrInvalidConfiguration, d.Type)
		}
	}

	for _, r := range c.OvertimeRates {
		if !r.DayType.IsValid() || r.Multiplier.IsNegative() {
			return fmt.Errorf("%w: overtime rate for %q is invalid", ErrInvalidConfiguration, r.DayType)
		}
	}

	for _, a := range c.Allowances {
		if a.Name == "" || a.Amount.IsNegative() {
			return fmt.Errorf("%w: allowances need a name and a non-negative amount", ErrInvalidConfiguration)
		}
	}

	return nil
}
