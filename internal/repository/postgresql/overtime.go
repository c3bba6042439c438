package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

const overtimeSelect = `
	SELECT o.id, o.employee_id, o.overtime_date, o.start_time, o.end_time, o.hours,
		   o.status, o.work_content, o.amount, o.reviewed_at, o.created_at, o.updated_at,
		   e.name
	FROM overtime_requests o
	JOIN employees e ON e.id = o.employee_id
`

func scanOvertime(row pgx.Row) (overtime.Request, error) {
	var (
		req  overtime.Request
		name string
	)
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Date, &req.StartTime, &req.EndTime, &req.Hours,
		&req.Status, &req.WorkContent, &req.Amount, &req.ReviewedAt, &req.CreatedAt, &req.UpdatedAt,
		&name,
	)
	if err != nil {
		return overtime.Request{}, err
	}
	req.EmployeeName = &name
	return req, nil
}

// Create implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Create(ctx context.Context, req overtime.Request) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests (
			id, employee_id, overtime_date, start_time, end_time, hours, status, work_content, amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newID(), req.EmployeeID, req.Date, req.StartTime, req.EndTime, req.Hours, req.Status, req.WorkContent, req.Amount,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.Request{}, overtime.ErrActiveRequestExists
		}
		return overtime.Request{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return req, nil
}

// GetByID implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanOvertime(q.QueryRow(ctx, overtimeSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Request{}, overtime.ErrRequestNotFound
		}
		return overtime.Request{}, fmt.Errorf("failed to get overtime request: %w", err)
	}
	return req, nil
}

// GetActiveByEmployeeAndDate implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetActiveByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := overtimeSelect + ` WHERE o.employee_id = $1 AND o.overtime_date = $2 AND o.status <> 'rejected'`

	req, err := scanOvertime(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get overtime request for date: %w", err)
	}
	return &req, nil
}

// Update implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Update(ctx context.Context, req overtime.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests
		SET overtime_date = $2, start_time = $3, end_time = $4, hours = $5,
			status = $6, work_content = $7, amount = $8, reviewed_at = $9, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		req.ID, req.Date, req.StartTime, req.EndTime, req.Hours,
		req.Status, req.WorkContent, req.Amount, req.ReviewedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return overtime.ErrActiveRequestExists
		}
		return fmt.Errorf("failed to update overtime request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return overtime.ErrRequestNotFound
	}
	return nil
}

// Delete implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM overtime_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete overtime request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return overtime.ErrRequestNotFound
	}
	return nil
}

// List implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND o.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.DateFrom != nil {
		whereClause += fmt.Sprintf(" AND o.overtime_date >= $%d::date", argIndex)
		args = append(args, *filter.DateFrom)
		argIndex++
	}
	if filter.DateTo != nil {
		whereClause += fmt.Sprintf(" AND o.overtime_date <= $%d::date", argIndex)
		args = append(args, *filter.DateTo)
		argIndex++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM overtime_requests o ` + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`%s %s ORDER BY o.overtime_date DESC, o.created_at DESC LIMIT $%d OFFSET $%d`,
		overtimeSelect, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	requests, err := r.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListApprovedBetween implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := overtimeSelect + `
		WHERE o.employee_id = $1 AND o.status = 'approved'
		  AND o.overtime_date BETWEEN $2 AND $3
		ORDER BY o.overtime_date ASC
	`
	return r.query(ctx, q, query, employeeID, from, to)
}

// UpdateAmount implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) UpdateAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `UPDATE overtime_requests SET amount = $2, updated_at = NOW() WHERE id = $1`, id, amount)
	if err != nil {
		return fmt.Errorf("failed to update overtime amount: %w", err)
	}
	return nil
}

func (r *overtimeRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]overtime.Request, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.Request
	for rows.Next() {
		req, err := scanOvertime(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
