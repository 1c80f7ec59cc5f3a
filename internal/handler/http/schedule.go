package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	CreateWorkSchedule(w http.ResponseWriter, r *http.Request)
	ListWorkSchedules(w http.ResponseWriter, r *http.Request)
	AssignSchedule(w http.ResponseWriter, r *http.Request)
	ListEmployeeScheduleAssignments(w http.ResponseWriter, r *http.Request)
	SetShift(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

func (h *scheduleHandlerImpl) CreateWorkSchedule(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateWorkScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.scheduleService.CreateWorkSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Work schedule created successfully", schedule.NewWorkScheduleResponse(result))
}

func (h *scheduleHandlerImpl) ListWorkSchedules(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListWorkSchedules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]schedule.WorkScheduleResponse, 0, len(result))
	for _, ws := range result {
		resp = append(resp, schedule.NewWorkScheduleResponse(ws))
	}
	response.Success(w, resp)
}

// AssignSchedule implements ScheduleHandler.
func (h *scheduleHandlerImpl) AssignSchedule(w http.ResponseWriter, r *http.Request) {
	var req schedule.AssignScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := h.scheduleService.AssignSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Schedule assigned successfully", schedule.NewAssignmentResponse(result))
}

func (h *scheduleHandlerImpl) ListEmployeeScheduleAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListEmployeeScheduleAssignments(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]schedule.AssignmentResponse, 0, len(result))
	for _, a := range result {
		resp = append(resp, schedule.NewAssignmentResponse(a))
	}
	response.Success(w, resp)
}

func (h *scheduleHandlerImpl) SetShift(w http.ResponseWriter, r *http.Request) {
	var req schedule.SetShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	if err := h.scheduleService.SetShift(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift rostered successfully", nil)
}
