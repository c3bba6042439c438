package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceSelect = `
	SELECT a.id, a.employee_id, a.work_date, a.check_in_time, a.check_out_time,
		   a.late_minutes, a.early_leave_minutes, a.status, a.auto_closed, a.note,
		   a.created_at, a.updated_at, e.code, e.name
	FROM attendance_records a
	JOIN employees e ON e.id = a.employee_id
`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var (
		rec        attendance.Record
		code, name string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.WorkDate, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.LateMinutes, &rec.EarlyLeaveMinutes, &rec.Status, &rec.AutoClosed, &rec.Note,
		&rec.CreatedAt, &rec.UpdatedAt, &code, &name,
	)
	if err != nil {
		return attendance.Record{}, err
	}
	rec.EmployeeCode = &code
	rec.EmployeeName = &name
	return rec, nil
}

// LockEmployeeDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) error {
	return advisoryLock(ctx, GetQuerier(ctx, a.db), "attendance", employeeID, workDate.Format(time.DateOnly))
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, workDate time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rec, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.employee_id = $1 AND a.work_date = $2`, employeeID, workDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rec, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, work_date, check_in_time, check_out_time,
			late_minutes, early_leave_minutes, status, auto_closed, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newID(), record.EmployeeID, record.WorkDate, record.CheckInTime, record.CheckOutTime,
		record.LateMinutes, record.EarlyLeaveMinutes, record.Status, record.AutoClosed, record.Note,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return record, nil
}

// CreateIfAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateIfAbsent(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, work_date, check_in_time, check_out_time,
			late_minutes, early_leave_minutes, status, auto_closed, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (employee_id, work_date) DO NOTHING
	`

	commandTag, err := q.Exec(ctx, query,
		newID(), record.EmployeeID, record.WorkDate, record.CheckInTime, record.CheckOutTime,
		record.LateMinutes, record.EarlyLeaveMinutes, record.Status, record.AutoClosed, record.Note,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return commandTag.RowsAffected() == 1, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $2, check_out_time = $3, late_minutes = $4, early_leave_minutes = $5,
			status = $6, auto_closed = $7, note = $8, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		record.ID, record.CheckInTime, record.CheckOutTime, record.LateMinutes, record.EarlyLeaveMinutes,
		record.Status, record.AutoClosed, record.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, workDate time.Time) ([]attendance.Record, error) {
	query := attendanceSelect + `
		WHERE a.work_date = $1
		ORDER BY a.check_in_time ASC NULLS LAST, e.code ASC
	`
	return a.query(ctx, query, workDate)
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDate(ctx context.Context, workDate time.Time) ([]attendance.Record, error) {
	query := attendanceSelect + `
		WHERE a.work_date = $1 AND a.check_in_time IS NOT NULL AND a.check_out_time IS NULL
		ORDER BY a.check_in_time ASC
	`
	return a.query(ctx, query, workDate)
}

// ListByEmployeeBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	query := attendanceSelect + `
		WHERE a.employee_id = $1 AND a.work_date BETWEEN $2 AND $3
		ORDER BY a.work_date ASC
	`
	return a.query(ctx, query, employeeID, from, to)
}

func (a *attendanceRepository) query(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
