package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) payroll.AdvanceRepository {
	return &advanceRepository{db: db}
}

const advanceSelect = `
	SELECT a.id, a.employee_id, a.amount, a.advance_month, a.advance_year, a.request_date,
		   a.reason, a.status, a.approved_at, a.created_at, a.updated_at, e.name
	FROM advance_requests a
	JOIN employees e ON e.id = a.employee_id
`

func scanAdvance(row pgx.Row) (payroll.AdvanceRequest, error) {
	var (
		req  payroll.AdvanceRequest
		name string
	)
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Amount, &req.Month, &req.Year, &req.RequestDate,
		&req.Reason, &req.Status, &req.ApprovedAt, &req.CreatedAt, &req.UpdatedAt, &name,
	)
	if err != nil {
		return payroll.AdvanceRequest{}, err
	}
	req.EmployeeName = &name
	return req, nil
}

func (r *advanceRepository) Create(ctx context.Context, req payroll.AdvanceRequest) (payroll.AdvanceRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO advance_requests (id, employee_id, amount, advance_month, advance_year, request_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newID(), req.EmployeeID, req.Amount, req.Month, req.Year, req.RequestDate, req.Reason, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return payroll.AdvanceRequest{}, fmt.Errorf("failed to create advance request: %w", err)
	}
	return req, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string) (payroll.AdvanceRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanAdvance(q.QueryRow(ctx, advanceSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.AdvanceRequest{}, payroll.ErrAdvanceNotFound
		}
		return payroll.AdvanceRequest{}, fmt.Errorf("failed to get advance request: %w", err)
	}
	return req, nil
}

func (r *advanceRepository) Update(ctx context.Context, req payroll.AdvanceRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advance_requests
		SET amount = $2, reason = $3, status = $4, approved_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, req.ID, req.Amount, req.Reason, req.Status, req.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to update advance request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return payroll.ErrAdvanceNotFound
	}
	return nil
}

func (r *advanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM advance_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete advance request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return payroll.ErrAdvanceNotFound
	}
	return nil
}

func (r *advanceRepository) List(ctx context.Context, filter payroll.AdvanceFilter) ([]payroll.AdvanceRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND a.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND a.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Month != nil {
		whereClause += fmt.Sprintf(" AND a.advance_month = $%d", argIndex)
		args = append(args, *filter.Month)
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND a.advance_year = $%d", argIndex)
		args = append(args, *filter.Year)
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM advance_requests a `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count advance requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`%s %s ORDER BY a.request_date DESC, a.created_at DESC LIMIT $%d OFFSET $%d`,
		advanceSelect, whereClause, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list advance requests: %w", err)
	}
	defer rows.Close()

	var requests []payroll.AdvanceRequest
	for rows.Next() {
		req, err := scanAdvance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan advance request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *advanceRepository) SumByEmployeePeriod(ctx context.Context, employeeID string, period payroll.Period, statuses ...payroll.AdvanceStatus) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM advance_requests
		WHERE employee_id = $1 AND advance_month = $2 AND advance_year = $3 AND status = ANY($4)
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, period.Month, period.Year, names).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum advances: %w", err)
	}
	return total, nil
}
