package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type ShiftEntry struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type HolidayEntry struct {
	Name      string `yaml:"name"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Annual    bool   `yaml:"annual"`
}

type EmployeeEntry struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	BasicSalary string `yaml:"basic_salary"`
	Dependents  int    `yaml:"dependents"`
	JoinedAt    string `yaml:"joined_at"`
	Resigned    bool   `yaml:"resigned"`
}

// File is the layout of the seed YAML document.
type File struct {
	Shift     *ShiftEntry     `yaml:"shift"`
	Holidays  []HolidayEntry  `yaml:"holidays"`
	Employees []EmployeeEntry `yaml:"employees"`
	// ResetPayroll installs the default payroll configuration even when one
	// is already stored.
	ResetPayroll bool `yaml:"reset_payroll_configuration"`
}

type Repositories struct {
	Tx            database.Transactor
	Shifts        calendar.ShiftRepository
	Holidays      calendar.HolidayRepository
	Employees     employee.EmployeeRepository
	Configuration payroll.ConfigurationRepository
}

type Summary struct {
	Shift            string
	HolidaysCreated  int
	HolidaysSkipped  int
	Employees        int
	PayrollInstalled bool
}

func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// Apply writes the seed in one transaction. It can be re-run: employees are
// upserted by code and holidays already present (same name and start date)
// are left alone.
func Apply(ctx context.Context, repos Repositories, f File) (Summary, error) {
	var summary Summary

	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		shift, err := applyShift(ctx, repos.Shifts, f.Shift)
		if err != nil {
			return err
		}
		summary.Shift = shift

		created, skipped, err := applyHolidays(ctx, repos.Holidays, f.Holidays)
		if err != nil {
			return err
		}
		summary.HolidaysCreated, summary.HolidaysSkipped = created, skipped

		for i, entry := range f.Employees {
			e, err := entry.toEmployee()
			if err != nil {
				return fmt.Errorf("employees[%d]: %w", i, err)
			}
			if _, err := repos.Employees.Upsert(ctx, e); err != nil {
				return fmt.Errorf("upsert employee %s: %w", e.Code, err)
			}
			summary.Employees++
		}

		current, err := repos.Configuration.Get(ctx)
		if err != nil {
			return fmt.Errorf("load payroll configuration: %w", err)
		}
		if f.ResetPayroll || len(current.TaxBrackets) == 0 {
			if err := repos.Configuration.Replace(ctx, fixtures.DefaultPayrollConfiguration()); err != nil {
				return fmt.Errorf("install payroll configuration: %w", err)
			}
			summary.PayrollInstalled = true
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	slog.Info("Seed applied",
		"shift", summary.Shift,
		"holidays_created", summary.HolidaysCreated,
		"employees", summary.Employees,
		"payroll_installed", summary.PayrollInstalled,
	)
	return summary, nil
}

func applyShift(ctx context.Context, repo calendar.ShiftRepository, entry *ShiftEntry) (string, error) {
	start, end := fixtures.DefaultShiftStart, fixtures.DefaultShiftEnd
	if entry != nil {
		var err error
		if start, err = calendar.ParseTimeOfDay(entry.Start); err != nil {
			return "", fmt.Errorf("shift.start: %w", err)
		}
		if end, err = calendar.ParseTimeOfDay(entry.End); err != nil {
			return "", fmt.Errorf("shift.end: %w", err)
		}
	}
	if !start.Before(end) {
		return "", calendar.ErrInvalidShiftWindow
	}

	existing, err := repo.Get(ctx)
	if err != nil {
		return "", err
	}
	shift := calendar.Shift{StartTime: start, EndTime: end}
	if existing == nil {
		_, err = repo.Create(ctx, shift)
	} else {
		_, err = repo.Update(ctx, shift)
	}
	if err != nil {
		return "", fmt.Errorf("store shift: %w", err)
	}
	return start.String() + "-" + end.String(), nil
}

func applyHolidays(ctx context.Context, repo calendar.HolidayRepository, entries []HolidayEntry) (created, skipped int, err error) {
	existing, err := repo.List(ctx, calendar.HolidayFilter{})
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.Name+"|"+calendar.FormatDate(h.StartDate)] = true
	}

	for i, entry := range entries {
		start, err := validator.ParseDate(entry.StartDate)
		if err != nil {
			return 0, 0, fmt.Errorf("holidays[%d].start_date: %w", i, err)
		}
		end := start
		if entry.EndDate != "" {
			if end, err = validator.ParseDate(entry.EndDate); err != nil {
				return 0, 0, fmt.Errorf("holidays[%d].end_date: %w", i, err)
			}
		}
		if end.Before(start) {
			return 0, 0, fmt.Errorf("holidays[%d]: %w", i, calendar.ErrInvalidHolidayRange)
		}

		key := entry.Name + "|" + calendar.FormatDate(start)
		if seen[key] {
			skipped++
			continue
		}
		if _, err := repo.Create(ctx, calendar.Holiday{
			Name:      entry.Name,
			StartDate: start,
			EndDate:   end,
			IsAnnual:  entry.Annual,
		}); err != nil {
			return 0, 0, fmt.Errorf("create holiday %q: %w", entry.Name, err)
		}
		seen[key] = true
		created++
	}
	return created, skipped, nil
}

func (e EmployeeEntry) toEmployee() (employee.Employee, error) {
	if e.Code == "" || e.Name == "" {
		return employee.Employee{}, fmt.Errorf("code and name are required")
	}
	if e.Dependents < 0 {
		return employee.Employee{}, fmt.Errorf("dependents must not be negative")
	}

	salary := decimal.Zero
	if e.BasicSalary != "" {
		var err error
		if salary, err = decimal.NewFromString(e.BasicSalary); err != nil {
			return employee.Employee{}, fmt.Errorf("basic_salary: %w", err)
		}
		if salary.IsNegative() {
			return employee.Employee{}, fmt.Errorf("basic_salary must not be negative")
		}
	}

	out := employee.Employee{
		Code:        e.Code,
		Name:        e.Name,
		BasicSalary: salary,
		Dependents:  e.Dependents,
		Status:      employee.StatusActive,
	}
	if e.Resigned {
		out.Status = employee.StatusResigned
	}
	if e.JoinedAt != "" {
		joined, err := validator.ParseDate(e.JoinedAt)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("joined_at: %w", err)
		}
		out.JoinedAt = &joined
	}
	return out, nil
}
