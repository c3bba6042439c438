package leave

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	calendar calendar.Reference
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	cal calendar.Reference,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		calendar:               cal,
	}
}

// Create implements leave.LeaveService.
func (s *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	start, _ := validator.ParseDate(req.StartDate)
	end, _ := validator.ParseDate(req.EndDate)

	created, err := s.LeaveRequestRepository.Create(ctx, leave.Request{
		EmployeeID: emp.ID,
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	created.EmployeeName = &emp.Name
	return s.mapToResponse(created), nil
}

// Review implements leave.LeaveService.
func (s *LeaveServiceImpl) Review(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	var reviewed leave.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		now := s.calendar.Now()
		request.Status = leave.Status(req.Status)
		request.ReviewedAt = &now
		if err := s.LeaveRequestRepository.Update(ctx, request); err != nil {
			return err
		}
		reviewed = request
		return nil
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	slog.Info("Leave request reviewed", "id", reviewed.ID, "status", reviewed.Status)
	return s.mapToResponse(reviewed), nil
}

// Delete implements leave.LeaveService.
func (s *LeaveServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return leave.ErrLeaveRequestNotFound
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		request, err := s.LeaveRequestRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveRequestNotPending
		}
		return s.LeaveRequestRepository.Delete(ctx, id)
	})
}

// GetByID implements leave.LeaveService.
func (s *LeaveServiceImpl) GetByID(ctx context.Context, id string) (leave.LeaveResponse, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveResponse{}, leave.ErrLeaveRequestNotFound
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	return s.mapToResponse(request), nil
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveResponse{}, err
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}

	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, s.mapToResponse(r))
	}

	return leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

func (s *LeaveServiceImpl) mapToResponse(r leave.Request) leave.LeaveResponse {
	resp := leave.LeaveResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    calendar.FormatDate(r.StartDate),
		EndDate:      calendar.FormatDate(r.EndDate),
		TotalDays:    r.Days(),
		Reason:       r.Reason,
		Status:       string(r.Status),
	}
	if r.ReviewedAt != nil {
		reviewed := r.ReviewedAt.In(s.calendar.Location()).Format(time.RFC3339)
		resp.ReviewedAt = &reviewed
	}
	return resp
}
