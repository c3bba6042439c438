package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type AdvanceServiceImpl struct {
	tx           database.Transactor
	advanceRepo  payroll.AdvanceRepository
	salaryRepo   payroll.SalaryRecordRepository
	employeeRepo employee.EmployeeRepository
	calendar     calendar.Reference
	limitRatio   decimal.Decimal
}

func NewAdvanceService(
	tx database.Transactor,
	advanceRepo payroll.AdvanceRepository,
	salaryRepo payroll.SalaryRecordRepository,
	employeeRepo employee.EmployeeRepository,
	cal calendar.Reference,
	limitRatio decimal.Decimal,
) payroll.AdvanceService {
	return &AdvanceServiceImpl{
		tx:           tx,
		advanceRepo:  advanceRepo,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
		calendar:     cal,
		limitRatio:   limitRatio,
	}
}

// CreateAdvance implements payroll.AdvanceService. The cap covers every
// pending or approved advance of the month plus the new amount, measured
// against the net salary of the preceding month.
func (s *AdvanceServiceImpl) CreateAdvance(ctx context.Context, req payroll.CreateAdvanceRequest) (payroll.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdvanceResponse{}, err
	}

	date, _ := validator.ParseDate(req.Date)
	today := calendar.DateOf(s.calendar.Now(), s.calendar.Location())
	if date.Before(today) {
		return payroll.AdvanceResponse{}, payroll.ErrAdvanceDateInPast
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}
	if emp.Status != employee.StatusActive {
		return payroll.AdvanceResponse{}, employee.ErrEmployeeNotFound
	}

	period := payroll.Period{Month: int(date.Month()), Year: date.Year()}

	var created payroll.AdvanceRequest
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.salaryRepo.LockEmployeePeriod(ctx, emp.ID, period); err != nil {
			return err
		}

		prior, err := s.salaryRepo.GetByEmployeePeriod(ctx, emp.ID, period.Previous())
		if err != nil {
			return err
		}
		if prior == nil {
			return payroll.ErrSalaryPeriodMissing
		}

		existing, err := s.advanceRepo.SumByEmployeePeriod(ctx, emp.ID, period,
			payroll.AdvanceStatusPending, payroll.AdvanceStatusApproved)
		if err != nil {
			return err
		}

		limit := prior.NetSalary.Mul(s.limitRatio)
		if existing.Add(req.Amount).GreaterThan(limit) {
			return fmt.Errorf("%w: limit %s, already requested %s",
				payroll.ErrAdvanceLimitExceeded, limit.StringFixed(2), existing.StringFixed(2))
		}

		created, err = s.advanceRepo.Create(ctx, payroll.AdvanceRequest{
			EmployeeID:  emp.ID,
			Amount:      req.Amount,
			Month:       period.Month,
			Year:        period.Year,
			RequestDate: date,
			Reason:      req.Reason,
			Status:      payroll.AdvanceStatusPending,
		})
		return err
	})
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}

	created.EmployeeName = &emp.Name
	return s.mapToResponse(created), nil
}

// ReviewAdvance implements payroll.AdvanceService.
func (s *AdvanceServiceImpl) ReviewAdvance(ctx context.Context, req payroll.ReviewAdvanceRequest) (payroll.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdvanceResponse{}, err
	}

	var reviewed payroll.AdvanceRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		adv, err := s.advanceRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if adv.Status != payroll.AdvanceStatusPending {
			return payroll.ErrAdvanceAlreadyProcessed
		}

		adv.Status = payroll.AdvanceStatus(req.Status)
		if adv.Status == payroll.AdvanceStatusApproved {
			now := s.calendar.Now()
			adv.ApprovedAt = &now
		}
		if err := s.advanceRepo.Update(ctx, adv); err != nil {
			return err
		}
		reviewed = adv
		return nil
	})
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}

	slog.Info("Advance request reviewed", "id", reviewed.ID, "status", reviewed.Status)
	return s.mapToResponse(reviewed), nil
}

// DeleteAdvance implements payroll.AdvanceService.
func (s *AdvanceServiceImpl) DeleteAdvance(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return payroll.ErrAdvanceNotFound
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		adv, err := s.advanceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if adv.Status == payroll.AdvanceStatusApproved {
			return payroll.ErrAdvanceApproved
		}
		return s.advanceRepo.Delete(ctx, id)
	})
}

// GetAdvance implements payroll.AdvanceService.
func (s *AdvanceServiceImpl) GetAdvance(ctx context.Context, id string) (payroll.AdvanceResponse, error) {
	if !validator.IsValidUUID(id) {
		return payroll.AdvanceResponse{}, payroll.ErrAdvanceNotFound
	}

	adv, err := s.advanceRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}
	return s.mapToResponse(adv), nil
}

// ListAdvances implements payroll.AdvanceService.
func (s *AdvanceServiceImpl) ListAdvances(ctx context.Context, filter payroll.AdvanceFilter) (payroll.ListAdvanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListAdvanceResponse{}, err
	}

	requests, total, err := s.advanceRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListAdvanceResponse{}, err
	}

	responses := make([]payroll.AdvanceResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, s.mapToResponse(r))
	}

	return payroll.ListAdvanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

func (s *AdvanceServiceImpl) mapToResponse(a payroll.AdvanceRequest) payroll.AdvanceResponse {
	resp := payroll.AdvanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Amount:       a.Amount,
		Month:        a.Month,
		Year:         a.Year,
		RequestDate:  calendar.FormatDate(a.RequestDate),
		Reason:       a.Reason,
		Status:       string(a.Status),
	}
	if a.ApprovedAt != nil {
		approved := a.ApprovedAt.In(s.calendar.Location()).Format(time.RFC3339)
		resp.ApprovedAt = &approved
	}
	return resp
}
