package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) calendar.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

// Get implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) Get(ctx context.Context) (*calendar.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), created_at, updated_at
		FROM work_shifts
		WHERE singleton
	`

	shift, err := scanShift(q.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work shift: %w", err)
	}
	return &shift, nil
}

// Create implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) Create(ctx context.Context, shift calendar.Shift) (calendar.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_shifts (id, start_time, end_time)
		VALUES ($1, $2::time, $3::time)
		RETURNING id, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), created_at, updated_at
	`

	created, err := scanShift(q.QueryRow(ctx, query, newID(), shift.StartTime.String(), shift.EndTime.String()))
	if err != nil {
		if isUniqueViolation(err) {
			return calendar.Shift{}, calendar.ErrShiftAlreadyExists
		}
		return calendar.Shift{}, fmt.Errorf("failed to create work shift: %w", err)
	}
	return created, nil
}

// Update implements calendar.ShiftRepository.
func (r *shiftRepositoryImpl) Update(ctx context.Context, shift calendar.Shift) (calendar.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_shifts
		SET start_time = $2::time, end_time = $3::time, updated_at = NOW()
		WHERE id = $1
		RETURNING id, to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), created_at, updated_at
	`

	updated, err := scanShift(q.QueryRow(ctx, query, shift.ID, shift.StartTime.String(), shift.EndTime.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Shift{}, calendar.ErrShiftNotConfigured
		}
		return calendar.Shift{}, fmt.Errorf("failed to update work shift: %w", err)
	}
	return updated, nil
}

func scanShift(row pgx.Row) (calendar.Shift, error) {
	var (
		s          calendar.Shift
		start, end string
	)
	if err := row.Scan(&s.ID, &start, &end, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return calendar.Shift{}, err
	}

	var err error
	if s.StartTime, err = calendar.ParseTimeOfDay(start); err != nil {
		return calendar.Shift{}, err
	}
	if s.EndTime, err = calendar.ParseTimeOfDay(end); err != nil {
		return calendar.Shift{}, err
	}
	return s, nil
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, name, start_date, end_date, is_annual, created_at, updated_at`

// Create implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, holiday calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (id, name, start_date, end_date, is_annual)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, newID(), holiday.Name, holiday.StartDate, holiday.EndDate, holiday.IsAnnual).
		Scan(&holiday.ID, &holiday.CreatedAt, &holiday.UpdatedAt)
	if err != nil {
		return calendar.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return holiday, nil
}

// GetByID implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE id = $1`

	var h calendar.Holiday
	err := q.QueryRow(ctx, query, id).Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate, &h.IsAnnual, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Holiday{}, calendar.ErrHolidayNotFound
		}
		return calendar.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return h, nil
}

// Delete implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return calendar.ErrHolidayNotFound
	}
	return nil
}

// List implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, filter calendar.HolidayFilter) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + holidayColumns + ` FROM holidays`
	var args []interface{}
	if filter.Year != nil {
		query += ` WHERE is_annual OR (EXTRACT(YEAR FROM start_date) <= $1 AND EXTRACT(YEAR FROM end_date) >= $1)`
		args = append(args, *filter.Year)
	}
	query += ` ORDER BY start_date ASC`

	return r.query(ctx, q, query, args...)
}

// ListCandidates implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) ListCandidates(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + holidayColumns + `
		FROM holidays
		WHERE (is_annual AND start_date <= $2) OR (start_date <= $2 AND end_date >= $1)
		ORDER BY start_date ASC
	`

	return r.query(ctx, q, query, from, to)
}

func (r *holidayRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]calendar.Holiday, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate, &h.IsAnnual, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
