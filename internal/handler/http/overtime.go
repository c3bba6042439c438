package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

// List implements OvertimeHandler. Non-admin callers only see their own requests.
func (h *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := overtime.OvertimeFilter{
		EmployeeID: queryString(r, "employee_id"),
		Status:     queryString(r, "status"),
		DateFrom:   queryString(r, "date_from"),
		DateTo:     queryString(r, "date_to"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
	if !caller.IsAdmin {
		employeeID, err := caller.ScopeEmployee("")
		if err != nil {
			response.HandleError(w, err)
			return
		}
		filter.EmployeeID = &employeeID
	}

	result, err := h.overtimeService.List(r.Context(), filter)
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

// Create implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req overtime.CreateOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateOvertime decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeID, err = caller.ScopeEmployee(req.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.overtimeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime request submitted", result)
}

// Get implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, ok := h.owned(w, r)
	if !ok {
		return
	}

	response.Success(w, result)
}

// Update implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req overtime.UpdateOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = current.ID

	result, err := h.overtimeService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request updated", result)
}

// Delete implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.overtimeService.Delete(r.Context(), current.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request deleted", nil)
}

// Review implements OvertimeHandler.
func (h *OvertimeHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	var req overtime.ReviewOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.overtimeService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request reviewed", result)
}

// owned loads the request named in the URL and hides requests of other
// employees from non-admin callers.
func (h *OvertimeHandlerImpl) owned(w http.ResponseWriter, r *http.Request) (overtime.OvertimeResponse, bool) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return overtime.OvertimeResponse{}, false
	}

	result, err := h.overtimeService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return overtime.OvertimeResponse{}, false
	}
	if !caller.CanAccess(result.EmployeeID) {
		response.HandleError(w, overtime.ErrRequestNotFound)
		return overtime.OvertimeResponse{}, false
	}
	return result, true
}
