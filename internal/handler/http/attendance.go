package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	IssueToken(w http.ResponseWriter, r *http.Request)
	ListDaily(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService     attendance.AttendanceService
	reconciliationService reconciliation.ReconciliationService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reconciliationService reconciliation.ReconciliationService) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService:     attendanceService,
		reconciliationService: reconciliationService,
	}
}

// Scan implements AttendanceHandler. The kiosk posts the encoded token read
// from the QR code as-is.
func (h *AttendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	var req attendance.ScanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Scan decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.Scan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// IssueToken implements AttendanceHandler.
func (h *AttendanceHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.IssueTokenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeID, err = caller.ScopeEmployee(req.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.IssueToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Scan token issued", result)
}

// ListDaily implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ListDaily(w http.ResponseWriter, r *http.Request) {
	filter := attendance.DailyFilter{Date: r.URL.Query().Get("date")}

	results, err := h.attendanceService.ListDaily(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Correct implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	var req attendance.CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.Correct(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance corrected successfully", result)
}

// Reconcile implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconciliation.ReconcileRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.reconciliationService.Reconcile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}
