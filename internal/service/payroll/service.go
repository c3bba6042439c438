package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	configRepo   payroll.ConfigurationRepository
	salaryRepo   payroll.SalaryRecordRepository
	advanceRepo  payroll.AdvanceRepository
	employeeRepo employee.EmployeeRepository
	attendance.AttendanceRepository
	overtime.OvertimeRepository
	calendar calendar.Reference
	settings config.PayrollConfig
}

func NewPayrollService(
	tx database.Transactor,
	configRepo payroll.ConfigurationRepository,
	salaryRepo payroll.SalaryRecordRepository,
	advanceRepo payroll.AdvanceRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo overtime.OvertimeRepository,
	cal calendar.Reference,
	settings config.PayrollConfig,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:                   tx,
		configRepo:           configRepo,
		salaryRepo:           salaryRepo,
		advanceRepo:          advanceRepo,
		employeeRepo:         employeeRepo,
		AttendanceRepository: attendanceRepo,
		OvertimeRepository:   overtimeRepo,
		calendar:             cal,
		settings:             settings,
	}
}

// ========== RUN ==========

// Run implements payroll.PayrollService. Every employee is calculated in its
// own transaction; one failure does not stop the others.
func (s *PayrollServiceImpl) Run(ctx context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}
	period := req.Period()

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return payroll.RunPayrollResponse{}, fmt.Errorf("failed to load payroll configuration: %w", err)
	}
	calc := NewCalculator(cfg, s.settings.StandardWorkDays, s.settings.HoursPerDay)

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return payroll.RunPayrollResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	_, lastDay := period.Range()
	resp := payroll.RunPayrollResponse{
		Month:       period.Month,
		Year:        period.Year,
		Skipped:     []string{},
		NegativeNet: []string{},
		Failures:    []payroll.RunFailure{},
		Records:     []payroll.SalaryRecordResponse{},
	}

	for _, emp := range employees {
		if !emp.JoinedBy(lastDay) {
			continue
		}

		var (
			stored  payroll.SalaryRecord
			skipped bool
		)
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.salaryRepo.LockEmployeePeriod(ctx, emp.ID, period); err != nil {
				return err
			}

			existing, err := s.salaryRepo.GetByEmployeePeriod(ctx, emp.ID, period)
			if err != nil {
				return err
			}
			if existing != nil && existing.Status == payroll.RecordStatusPaid {
				skipped = true
				return nil
			}

			in, err := s.buildInput(ctx, emp, period)
			if err != nil {
				return err
			}
			result := calc.Calculate(in)
			result.Record.CalculatedAt = s.calendar.Now()

			stored, err = s.salaryRepo.Replace(ctx, result.Record)
			if err != nil {
				return err
			}

			for _, line := range result.Overtime {
				if err := s.OvertimeRepository.UpdateAmount(ctx, line.RequestID, line.Amount); err != nil {
					return fmt.Errorf("failed to store overtime amount: %w", err)
				}
			}
			return nil
		})

		switch {
		case err != nil:
			slog.Error("Payroll calculation failed", "employee_id", emp.ID, "month", period.Month, "year", period.Year, "error", err)
			resp.Failures = append(resp.Failures, payroll.RunFailure{EmployeeID: emp.ID, Reason: err.Error()})
		case skipped:
			resp.Skipped = append(resp.Skipped, emp.ID)
		default:
			resp.Calculated++
			if stored.NetSalary.IsNegative() {
				slog.Warn("Payroll produced a negative net salary",
					"employee_id", emp.ID, "net_salary", stored.NetSalary.String())
				resp.NegativeNet = append(resp.NegativeNet, emp.ID)
			}
			resp.Records = append(resp.Records, s.mapRecordToResponse(stored))
		}
	}

	slog.Info("Payroll run finished",
		"month", period.Month,
		"year", period.Year,
		"calculated", resp.Calculated,
		"skipped", len(resp.Skipped),
		"failures", len(resp.Failures),
	)
	return resp, nil
}

// buildInput gathers one employee's month: approved overtime with day types,
// attendance records and approved advances.
func (s *PayrollServiceImpl) buildInput(ctx context.Context, emp employee.Employee, period payroll.Period) (CalculationInput, error) {
	from, to := period.Range()

	requests, err := s.OvertimeRepository.ListApprovedBetween(ctx, emp.ID, from, to)
	if err != nil {
		return CalculationInput{}, fmt.Errorf("failed to load overtime: %w", err)
	}
	items := make([]OvertimeItem, 0, len(requests))
	for _, r := range requests {
		dt, err := s.calendar.DayTypeOf(ctx, r.Date)
		if err != nil {
			return CalculationInput{}, err
		}
		items = append(items, OvertimeItem{Request: r, DayType: dt})
	}

	records, err := s.AttendanceRepository.ListByEmployeeBetween(ctx, emp.ID, from, to)
	if err != nil {
		return CalculationInput{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	advances, err := s.advanceRepo.SumByEmployeePeriod(ctx, emp.ID, period, payroll.AdvanceStatusApproved)
	if err != nil {
		return CalculationInput{}, fmt.Errorf("failed to load advances: %w", err)
	}

	return CalculationInput{
		Employee:   emp,
		Period:     period,
		Overtime:   items,
		Attendance: records,
		Advances:   advances,
	}, nil
}

// Preview implements payroll.PayrollService. Nothing is written.
func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.RecordQuery) (payroll.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PreviewResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return payroll.PreviewResponse{}, fmt.Errorf("failed to load payroll configuration: %w", err)
	}

	in, err := s.buildInput(ctx, emp, req.Period())
	if err != nil {
		return payroll.PreviewResponse{}, err
	}

	result := NewCalculator(cfg, s.settings.StandardWorkDays, s.settings.HoursPerDay).Calculate(in)
	result.Record.CalculatedAt = s.calendar.Now()

	penalties := result.Penalties
	if penalties == nil {
		penalties = []payroll.PenaltyLine{}
	}
	return payroll.PreviewResponse{
		Record:    s.mapRecordToResponse(result.Record),
		Overtime:  result.Overtime,
		Penalties: penalties,
	}, nil
}

// ========== RECORDS ==========

// ListRecords implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListRecords(ctx context.Context, req payroll.PeriodQuery) ([]payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.salaryRepo.ListByPeriod(ctx, req.Period())
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, s.mapRecordToResponse(r))
	}
	return responses, nil
}

// GetRecord implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRecord(ctx context.Context, req payroll.RecordQuery) (payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.GetByEmployeePeriod(ctx, req.EmployeeID, req.Period())
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if record == nil {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordNotFound
	}
	return s.mapRecordToResponse(*record), nil
}

// MarkPaid implements payroll.PayrollService.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.SalaryRecordResponse, error) {
	if !validator.IsValidUUID(id) {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordNotFound
	}

	var record payroll.SalaryRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.salaryRepo.MarkPaid(ctx, id, s.calendar.Now()); err != nil {
			return err
		}
		var err error
		record, err = s.salaryRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	slog.Info("Salary record marked paid", "id", id, "employee_id", record.EmployeeID)
	return s.mapRecordToResponse(record), nil
}

// ========== CONFIGURATION ==========

// GetConfiguration implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetConfiguration(ctx context.Context) (payroll.ConfigurationPayload, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return payroll.ConfigurationPayload{}, err
	}
	return mapConfigurationToPayload(cfg), nil
}

// ReplaceConfiguration implements payroll.PayrollService.
func (s *PayrollServiceImpl) ReplaceConfiguration(ctx context.Context, req payroll.ConfigurationPayload) (payroll.ConfigurationPayload, error) {
	if err := req.Validate(); err != nil {
		return payroll.ConfigurationPayload{}, err
	}

	cfg := mapPayloadToConfiguration(req)
	if err := cfg.Validate(); err != nil {
		return payroll.ConfigurationPayload{}, err
	}

	if err := s.configRepo.Replace(ctx, cfg); err != nil {
		return payroll.ConfigurationPayload{}, fmt.Errorf("failed to replace payroll configuration: %w", err)
	}

	slog.Info("Payroll configuration replaced",
		"tax_brackets", len(cfg.TaxBrackets),
		"insurance_rates", len(cfg.InsuranceRates),
		"penalty_rules", len(cfg.PenaltyRules),
	)
	return s.GetConfiguration(ctx)
}

// ========== MAPPERS ==========

func (s *PayrollServiceImpl) mapRecordToResponse(r payroll.SalaryRecord) payroll.SalaryRecordResponse {
	loc := s.calendar.Location()

	resp := payroll.SalaryRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeCode:    r.EmployeeCode,
		EmployeeName:    r.EmployeeName,
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		BasicSalary:     r.BasicSalary,
		TotalAllowance:  r.TotalAllowance,
		OvertimeAmount:  r.OvertimeAmount,
		GrossIncome:     r.GrossIncome(),
		InsuranceAmount: r.InsuranceAmount,
		TaxableIncome:   r.TaxableIncome,
		TaxAmount:       r.TaxAmount,
		PenaltyAmount:   r.PenaltyAmount,
		AdvanceAmount:   r.AdvanceAmount,
		NetSalary:       r.NetSalary,
		Status:          string(r.Status),
	}
	if !r.CalculatedAt.IsZero() {
		resp.CalculatedAt = r.CalculatedAt.In(loc).Format(time.RFC3339)
	}
	if r.PaidAt != nil {
		paid := r.PaidAt.In(loc).Format(time.RFC3339)
		resp.PaidAt = &paid
	}
	return resp
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func mapPayloadToConfiguration(p payroll.ConfigurationPayload) payroll.Configuration {
	var cfg payroll.Configuration

	for _, b := range p.TaxBrackets {
		cfg.TaxBrackets = append(cfg.TaxBrackets, payroll.TaxBracket{
			Level:     b.Level,
			MinAmount: b.MinAmount,
			MaxAmount: b.MaxAmount,
			Rate:      b.Rate,
			IsActive:  activeOrDefault(b.IsActive),
		})
	}
	for _, r := range p.InsuranceRates {
		cfg.InsuranceRates = append(cfg.InsuranceRates, payroll.InsuranceRate{
			InsuranceType: r.InsuranceType,
			EmployeeRate:  r.EmployeeRate,
			EmployerRate:  r.EmployerRate,
			MaxSalaryBase: r.MaxSalaryBase,
			IsActive:      activeOrDefault(r.IsActive),
		})
	}
	for _, r := range p.PenaltyRules {
		cfg.PenaltyRules = append(cfg.PenaltyRules, payroll.PenaltyRule{
			ViolationType: payroll.ViolationType(r.ViolationType),
			MinMinutes:    r.MinMinutes,
			MaxMinutes:    r.MaxMinutes,
			FixedAmount:   r.FixedAmount,
			RateOfSalary:  r.RateOfSalary,
			Description:   r.Description,
			IsActive:      activeOrDefault(r.IsActive),
		})
	}
	if p.PersonalDeduction != nil {
		cfg.Deductions = append(cfg.Deductions, payroll.Deduction{Type: payroll.DeductionPersonal, Amount: *p.PersonalDeduction})
	}
	if p.DependentDeduction != nil {
		cfg.Deductions = append(cfg.Deductions, payroll.Deduction{Type: payroll.DeductionDependent, Amount: *p.DependentDeduction})
	}
	for _, r := range p.OvertimeRates {
		cfg.OvertimeRates = append(cfg.OvertimeRates, payroll.OvertimeRate{
			DayType:    calendar.DayType(r.DayType),
			Multiplier: r.Multiplier,
			IsActive:   activeOrDefault(r.IsActive),
		})
	}
	for _, a := range p.Allowances {
		cfg.Allowances = append(cfg.Allowances, payroll.Allowance{
			Name:        a.Name,
			Amount:      a.Amount,
			ApplyToAll:  a.ApplyToAll,
			IsActive:    activeOrDefault(a.IsActive),
			EmployeeIDs: a.EmployeeIDs,
		})
	}
	return cfg
}

func mapConfigurationToPayload(cfg payroll.Configuration) payroll.ConfigurationPayload {
	personal := cfg.DeductionAmount(payroll.DeductionPersonal)
	dependent := cfg.DeductionAmount(payroll.DeductionDependent)

	p := payroll.ConfigurationPayload{
		TaxBrackets:        make([]payroll.TaxBracketPayload, 0, len(cfg.TaxBrackets)),
		InsuranceRates:     make([]payroll.InsuranceRatePayload, 0, len(cfg.InsuranceRates)),
		PenaltyRules:       make([]payroll.PenaltyRulePayload, 0, len(cfg.PenaltyRules)),
		PersonalDeduction:  &personal,
		DependentDeduction: &dependent,
		OvertimeRates:      make([]payroll.OvertimeRatePayload, 0, len(cfg.OvertimeRates)),
		Allowances:         make([]payroll.AllowancePayload, 0, len(cfg.Allowances)),
	}

	for _, b := range cfg.TaxBrackets {
		active := b.IsActive
		p.TaxBrackets = append(p.TaxBrackets, payroll.TaxBracketPayload{
			Level:     b.Level,
			MinAmount: b.MinAmount,
			MaxAmount: b.MaxAmount,
			Rate:      b.Rate,
			IsActive:  &active,
		})
	}
	for _, r := range cfg.InsuranceRates {
		active := r.IsActive
		p.InsuranceRates = append(p.InsuranceRates, payroll.InsuranceRatePayload{
			InsuranceType: r.InsuranceType,
			EmployeeRate:  r.EmployeeRate,
			EmployerRate:  r.EmployerRate,
			MaxSalaryBase: r.MaxSalaryBase,
			IsActive:      &active,
		})
	}
	for _, r := range cfg.PenaltyRules {
		active := r.IsActive
		p.PenaltyRules = append(p.PenaltyRules, payroll.PenaltyRulePayload{
			ViolationType: string(r.ViolationType),
			MinMinutes:    r.MinMinutes,
			MaxMinutes:    r.MaxMinutes,
			FixedAmount:   r.FixedAmount,
			RateOfSalary:  r.RateOfSalary,
			Description:   r.Description,
			IsActive:      &active,
		})
	}
	for _, r := range cfg.OvertimeRates {
		active := r.IsActive
		p.OvertimeRates = append(p.OvertimeRates, payroll.OvertimeRatePayload{
			DayType:    string(r.DayType),
			Multiplier: r.Multiplier,
			IsActive:   &active,
		})
	}
	for _, a := range cfg.Allowances {
		active := a.IsActive
		p.Allowances = append(p.Allowances, payroll.AllowancePayload{
			Name:        a.Name,
			Amount:      a.Amount,
			ApplyToAll:  a.ApplyToAll,
			IsActive:    &active,
			EmployeeIDs: a.EmployeeIDs,
		})
	}
	return p
}
