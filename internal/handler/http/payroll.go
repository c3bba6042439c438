package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs and records
	Run(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)

	// Configuration
	GetConfiguration(w http.ResponseWriter, r *http.Request)
	ReplaceConfiguration(w http.ResponseWriter, r *http.Request)

	// Advances
	ListAdvances(w http.ResponseWriter, r *http.Request)
	CreateAdvance(w http.ResponseWriter, r *http.Request)
	DeleteAdvance(w http.ResponseWriter, r *http.Request)
	ReviewAdvance(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.PayrollService
	advanceService payroll.AdvanceService
}

func NewPayrollHandler(payrollService payroll.PayrollService, advanceService payroll.AdvanceService) PayrollHandler {
	return &PayrollHandlerImpl{
		payrollService: payrollService,
		advanceService: advanceService,
	}
}

// ========== RUNS & RECORDS ==========

func (h *PayrollHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req payroll.RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RunPayroll decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.Run(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll calculated", result)
}

func (h *PayrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	query := payroll.PeriodQuery{
		Month: queryInt(r, "month"),
		Year:  queryInt(r, "year"),
	}

	result, err := h.payrollService.ListRecords(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	query := payroll.RecordQuery{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Month:      queryInt(r, "month"),
		Year:       queryInt(r, "year"),
	}

	result, err := h.payrollService.GetRecord(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record marked as paid", result)
}

func (h *PayrollHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	query := payroll.RecordQuery{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Month:      queryInt(r, "month"),
		Year:       queryInt(r, "year"),
	}

	result, err := h.payrollService.Preview(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== CONFIGURATION ==========

func (h *PayrollHandlerImpl) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetConfiguration(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayrollHandlerImpl) ReplaceConfiguration(w http.ResponseWriter, r *http.Request) {
	var req payroll.ConfigurationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ReplaceConfiguration(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll configuration replaced", result)
}

// ========== ADVANCES ==========

func (h *PayrollHandlerImpl) ListAdvances(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := payroll.AdvanceFilter{
		EmployeeID: queryString(r, "employee_id"),
		Status:     queryString(r, "status"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	if month := queryInt(r, "month"); month != 0 {
		filter.Month = &month
	}
	if year := queryInt(r, "year"); year != 0 {
		filter.Year = &year
	}
	if !caller.IsAdmin {
		employeeID, err := caller.ScopeEmployee("")
		if err != nil {
			response.HandleError(w, err)
			return
		}
		filter.EmployeeID = &employeeID
	}

	result, err := h.advanceService.ListAdvances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *PayrollHandlerImpl) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req payroll.CreateAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateAdvance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeID, err = caller.ScopeEmployee(req.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.advanceService.CreateAdvance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Advance request submitted", result)
}

func (h *PayrollHandlerImpl) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	current, err := h.advanceService.GetAdvance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !caller.CanAccess(current.EmployeeID) {
		response.HandleError(w, payroll.ErrAdvanceNotFound)
		return
	}

	if err := h.advanceService.DeleteAdvance(r.Context(), current.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Advance request deleted", nil)
}

func (h *PayrollHandlerImpl) ReviewAdvance(w http.ResponseWriter, r *http.Request) {
	var req payroll.ReviewAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.advanceService.ReviewAdvance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Advance request reviewed", result)
}
