package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	RecordPunch(w http.ResponseWriter, r *http.Request)
	ComputeRange(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	SetOvertimeApproval(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	dtrService attendance.DTRService
	now        func() time.Time
}

func NewAttendanceHandler(dtrService attendance.DTRService) AttendanceHandler {
	return &attendanceHandlerImpl{
		dtrService: dtrService,
		now:        time.Now,
	}
}

func (h *attendanceHandlerImpl) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.dtrService.RecordPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded successfully", attendance.NewPunchResponse(result))
}

// ComputeRange recomputes daily time records for an employee over an inclusive date range.
func (h *attendanceHandlerImpl) ComputeRange(w http.ResponseWriter, r *http.Request) {
	var req attendance.ComputeRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}
	from, _ := validator.IsValidDate(req.From)
	to, _ := validator.IsValidDate(req.To)

	records, err := h.dtrService.ComputeRange(r.Context(), req.EmployeeID, from, to, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily time records computed", recordResponses(records))
}

func (h *attendanceHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	req := attendance.ComputeRangeRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}
	from, _ := validator.IsValidDate(req.From)
	to, _ := validator.IsValidDate(req.To)

	records, err := h.dtrService.ListRecords(r.Context(), req.EmployeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, recordResponses(records))
}

func (h *attendanceHandlerImpl) SetOvertimeApproval(w http.ResponseWriter, r *http.Request) {
	var req attendance.SetOvertimeApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Date = chi.URLParam(r, "date")

	if err := h.dtrService.SetOvertimeApproved(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime approval recorded", nil)
}

func (h *attendanceHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dtrService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", attendance.NewHolidayResponse(result))
}

func recordResponses(records []attendance.DailyTimeRecord) []attendance.DailyTimeRecordResponse {
	resp := make([]attendance.DailyTimeRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, attendance.NewDailyTimeRecordResponse(rec))
	}
	return resp
}
