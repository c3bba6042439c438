package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/scantoken"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/leave"
	overtimeService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/payroll"
	reconciliationService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/reconciliation"
)

// app holds everything a subcommand may need. Commands that only touch one
// service still build the whole graph; construction does no I/O beyond the
// pool ping.
type app struct {
	cfg *config.Config
	db  *database.DB
	tx  database.Transactor

	employeeRepo      employee.EmployeeRepository
	shiftRepo         calendar.ShiftRepository
	holidayRepo       calendar.HolidayRepository
	configurationRepo payroll.ConfigurationRepository

	calendar       calendar.CalendarService
	attendance     attendance.AttendanceService
	reconciliation reconciliation.ReconciliationService
	overtime       overtime.OvertimeService
	leave          leave.LeaveService
	payroll        payroll.PayrollService
	advances       payroll.AdvanceService
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	tx := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	configurationRepo := postgresql.NewPayrollConfigurationRepository(db)
	salaryRecordRepo := postgresql.NewSalaryRecordRepository(db)
	advanceRepo := postgresql.NewAdvanceRepository(db)

	cal := calendarService.NewCalendarService(shiftRepo, holidayRepo, cfg.Location(), nil)
	window := scantoken.Window{
		Past:   cfg.Attendance.TokenPastTolerance,
		Future: cfg.Attendance.TokenFutureTolerance,
	}

	return &app{
		cfg: cfg,
		db:  db,
		tx:  tx,

		employeeRepo:      employeeRepo,
		shiftRepo:         shiftRepo,
		holidayRepo:       holidayRepo,
		configurationRepo: configurationRepo,

		calendar:       cal,
		attendance:     attendanceService.NewAttendanceService(tx, attendanceRepo, employeeRepo, overtimeRepo, cal, window),
		reconciliation: reconciliationService.NewReconciliationService(tx, attendanceRepo, overtimeRepo, employeeRepo, leaveRequestRepo, cal),
		overtime:       overtimeService.NewOvertimeService(tx, overtimeRepo, employeeRepo, cal),
		leave:          leaveService.NewLeaveService(tx, leaveRequestRepo, employeeRepo, cal),
		payroll: payrollService.NewPayrollService(tx, configurationRepo, salaryRecordRepo, advanceRepo,
			employeeRepo, attendanceRepo, overtimeRepo, cal, cfg.Payroll),
		advances: payrollService.NewAdvanceService(tx, advanceRepo, salaryRecordRepo, employeeRepo,
			cal, cfg.Payroll.AdvanceLimitRatio),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}
