package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ========== CONFIGURATION ==========

type payrollConfigurationRepository struct {
	db *database.DB
	tx database.Transactor
}

func NewPayrollConfigurationRepository(db *database.DB) payroll.ConfigurationRepository {
	return &payrollConfigurationRepository{db: db, tx: NewTransactor(db)}
}

// Get implements payroll.ConfigurationRepository.
func (r *payrollConfigurationRepository) Get(ctx context.Context) (payroll.Configuration, error) {
	q := GetQuerier(ctx, r.db)
	var cfg payroll.Configuration

	rows, err := q.Query(ctx, `SELECT id, level, min_amount, max_amount, rate, is_active FROM tax_brackets ORDER BY level ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load tax brackets: %w", err)
	}
	for rows.Next() {
		var b payroll.TaxBracket
		if err := rows.Scan(&b.ID, &b.Level, &b.MinAmount, &b.MaxAmount, &b.Rate, &b.IsActive); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan tax bracket: %w", err)
		}
		cfg.TaxBrackets = append(cfg.TaxBrackets, b)
	}
	rows.Close()

	rows, err = q.Query(ctx, `SELECT id, insurance_type, employee_rate, employer_rate, max_salary_base, is_active FROM insurance_rates ORDER BY insurance_type ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load insurance rates: %w", err)
	}
	for rows.Next() {
		var ir payroll.InsuranceRate
		if err := rows.Scan(&ir.ID, &ir.InsuranceType, &ir.EmployeeRate, &ir.EmployerRate, &ir.MaxSalaryBase, &ir.IsActive); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan insurance rate: %w", err)
		}
		cfg.InsuranceRates = append(cfg.InsuranceRates, ir)
	}
	rows.Close()

	rows, err = q.Query(ctx, `
		SELECT id, violation_type, min_minutes, max_minutes, fixed_amount, rate_of_salary, description, is_active
		FROM penalty_rules ORDER BY violation_type ASC, min_minutes ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load penalty rules: %w", err)
	}
	for rows.Next() {
		var p payroll.PenaltyRule
		if err := rows.Scan(&p.ID, &p.ViolationType, &p.MinMinutes, &p.MaxMinutes, &p.FixedAmount, &p.RateOfSalary, &p.Description, &p.IsActive); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan penalty rule: %w", err)
		}
		cfg.PenaltyRules = append(cfg.PenaltyRules, p)
	}
	rows.Close()

	rows, err = q.Query(ctx, `SELECT deduction_type, amount FROM deductions ORDER BY deduction_type ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load deductions: %w", err)
	}
	for rows.Next() {
		var d payroll.Deduction
		if err := rows.Scan(&d.Type, &d.Amount); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan deduction: %w", err)
		}
		cfg.Deductions = append(cfg.Deductions, d)
	}
	rows.Close()

	rows, err = q.Query(ctx, `SELECT day_type, multiplier, is_active FROM overtime_rates ORDER BY day_type ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load overtime rates: %w", err)
	}
	for rows.Next() {
		var o payroll.OvertimeRate
		if err := rows.Scan(&o.DayType, &o.Multiplier, &o.IsActive); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan overtime rate: %w", err)
		}
		cfg.OvertimeRates = append(cfg.OvertimeRates, o)
	}
	rows.Close()

	rows, err = q.Query(ctx, `
		SELECT a.id, a.name, a.amount, a.apply_to_all, a.is_active,
			   COALESCE(array_agg(ea.employee_id::text) FILTER (WHERE ea.employee_id IS NOT NULL), '{}')
		FROM allowances a
		LEFT JOIN employee_allowances ea ON ea.allowance_id = a.id
		GROUP BY a.id
		ORDER BY a.name ASC`)
	if err != nil {
		return cfg, fmt.Errorf("failed to load allowances: %w", err)
	}
	for rows.Next() {
		var a payroll.Allowance
		if err := rows.Scan(&a.ID, &a.Name, &a.Amount, &a.ApplyToAll, &a.IsActive, &a.EmployeeIDs); err != nil {
			rows.Close()
			return cfg, fmt.Errorf("failed to scan allowance: %w", err)
		}
		cfg.Allowances = append(cfg.Allowances, a)
	}
	rows.Close()

	return cfg, rows.Err()
}

// Replace implements payroll.ConfigurationRepository.
func (r *payrollConfigurationRepository) Replace(ctx context.Context, cfg payroll.Configuration) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		for _, table := range []string{"employee_allowances", "allowances", "overtime_rates", "deductions", "penalty_rules", "insurance_rates", "tax_brackets"} {
			if _, err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, b := range cfg.TaxBrackets {
			_, err := q.Exec(ctx,
				`INSERT INTO tax_brackets (id, level, min_amount, max_amount, rate, is_active) VALUES ($1, $2, $3, $4, $5, $6)`,
				newID(), b.Level, b.MinAmount, b.MaxAmount, b.Rate, b.IsActive)
			if err != nil {
				return fmt.Errorf("failed to insert tax bracket %d: %w", b.Level, err)
			}
		}
		for _, ir := range cfg.InsuranceRates {
			_, err := q.Exec(ctx,
				`INSERT INTO insurance_rates (id, insurance_type, employee_rate, employer_rate, max_salary_base, is_active) VALUES ($1, $2, $3, $4, $5, $6)`,
				newID(), ir.InsuranceType, ir.EmployeeRate, ir.EmployerRate, ir.MaxSalaryBase, ir.IsActive)
			if err != nil {
				return fmt.Errorf("failed to insert insurance rate %s: %w", ir.InsuranceType, err)
			}
		}
		for _, p := range cfg.PenaltyRules {
			_, err := q.Exec(ctx, `
				INSERT INTO penalty_rules (id, violation_type, min_minutes, max_minutes, fixed_amount, rate_of_salary, description, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				newID(), p.ViolationType, p.MinMinutes, p.MaxMinutes, p.FixedAmount, p.RateOfSalary, p.Description, p.IsActive)
			if err != nil {
				return fmt.Errorf("failed to insert penalty rule: %w", err)
			}
		}
		for _, d := range cfg.Deductions {
			if _, err := q.Exec(ctx, `INSERT INTO deductions (deduction_type, amount) VALUES ($1, $2)`, d.Type, d.Amount); err != nil {
				return fmt.Errorf("failed to insert deduction %s: %w", d.Type, err)
			}
		}
		for _, o := range cfg.OvertimeRates {
			if _, err := q.Exec(ctx, `INSERT INTO overtime_rates (day_type, multiplier, is_active) VALUES ($1, $2, $3)`, o.DayType, o.Multiplier, o.IsActive); err != nil {
				return fmt.Errorf("failed to insert overtime rate %s: %w", o.DayType, err)
			}
		}
		for _, a := range cfg.Allowances {
			id := newID()
			_, err := q.Exec(ctx,
				`INSERT INTO allowances (id, name, amount, apply_to_all, is_active) VALUES ($1, $2, $3, $4, $5)`,
				id, a.Name, a.Amount, a.ApplyToAll, a.IsActive)
			if err != nil {
				return fmt.Errorf("failed to insert allowance %s: %w", a.Name, err)
			}
			for _, employeeID := range a.EmployeeIDs {
				if _, err := q.Exec(ctx, `INSERT INTO employee_allowances (employee_id, allowance_id) VALUES ($1, $2)`, employeeID, id); err != nil {
					return fmt.Errorf("failed to assign allowance %s: %w", a.Name, err)
				}
			}
		}

		return nil
	})
}

// ========== SALARY RECORDS ==========

type salaryRecordRepository struct {
	db *database.DB
}

func NewSalaryRecordRepository(db *database.DB) payroll.SalaryRecordRepository {
	return &salaryRecordRepository{db: db}
}

const salaryRecordSelect = `
	SELECT s.id, s.employee_id, s.period_month, s.period_year, s.basic_salary, s.total_allowance,
		   s.overtime_amount, s.insurance_amount, s.taxable_income, s.tax_amount, s.penalty_amount,
		   s.advance_amount, s.net_salary, s.status, s.calculated_at, s.paid_at, e.code, e.name
	FROM salary_records s
	JOIN employees e ON e.id = s.employee_id
`

func scanSalaryRecord(row pgx.Row) (payroll.SalaryRecord, error) {
	var (
		rec        payroll.SalaryRecord
		code, name string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BasicSalary, &rec.TotalAllowance,
		&rec.OvertimeAmount, &rec.InsuranceAmount, &rec.TaxableIncome, &rec.TaxAmount, &rec.PenaltyAmount,
		&rec.AdvanceAmount, &rec.NetSalary, &rec.Status, &rec.CalculatedAt, &rec.PaidAt, &code, &name,
	)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}
	rec.EmployeeCode = &code
	rec.EmployeeName = &name
	return rec, nil
}

// LockEmployeePeriod implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) LockEmployeePeriod(ctx context.Context, employeeID string, period payroll.Period) error {
	return advisoryLock(ctx, GetQuerier(ctx, r.db), "payroll", employeeID, strconv.Itoa(period.Year), strconv.Itoa(period.Month))
}

// GetByEmployeePeriod implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, period payroll.Period) (*payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := salaryRecordSelect + ` WHERE s.employee_id = $1 AND s.period_month = $2 AND s.period_year = $3`
	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, employeeID, period.Month, period.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get salary record: %w", err)
	}
	return &rec, nil
}

// GetByID implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanSalaryRecord(q.QueryRow(ctx, salaryRecordSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return rec, nil
}

// Replace implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) Replace(ctx context.Context, rec payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx,
		`DELETE FROM salary_records WHERE employee_id = $1 AND period_month = $2 AND period_year = $3`,
		rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear)
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("failed to delete previous salary record: %w", err)
	}

	query := `
		INSERT INTO salary_records (
			id, employee_id, period_month, period_year, basic_salary, total_allowance,
			overtime_amount, insurance_amount, taxable_income, tax_amount, penalty_amount,
			advance_amount, net_salary, status, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err = q.QueryRow(ctx, query,
		newID(), rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear, rec.BasicSalary, rec.TotalAllowance,
		rec.OvertimeAmount, rec.InsuranceAmount, rec.TaxableIncome, rec.TaxAmount, rec.PenaltyAmount,
		rec.AdvanceAmount, rec.NetSalary, rec.Status, rec.CalculatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("failed to insert salary record: %w", err)
	}
	return rec, nil
}

// ListByPeriod implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) ListByPeriod(ctx context.Context, period payroll.Period) ([]payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := salaryRecordSelect + ` WHERE s.period_month = $1 AND s.period_year = $2 ORDER BY e.code ASC`
	rows, err := q.Query(ctx, query, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkPaid implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx,
		`UPDATE salary_records SET status = 'paid', paid_at = $2 WHERE id = $1 AND status = 'pending'`,
		id, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark salary record paid: %w", err)
	}
	if commandTag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salary_records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check salary record: %w", err)
	}
	if !exists {
		return payroll.ErrSalaryRecordNotFound
	}
	return payroll.ErrSalaryRecordPaid
}
