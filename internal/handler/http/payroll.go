package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	OpenPeriod(w http.ResponseWriter, r *http.Request)
	RunPeriod(w http.ResponseWriter, r *http.Request)
	MarkComputed(w http.ResponseWriter, r *http.Request)
	ApprovePeriod(w http.ResponseWriter, r *http.Request)
	ReopenPeriod(w http.ResponseWriter, r *http.Request)
	ClosePeriod(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	ListAuditEvents(w http.ResponseWriter, r *http.Request)

	ListEntries(w http.ResponseWriter, r *http.Request)
	GetEntry(w http.ResponseWriter, r *http.Request)
	ComputeEntry(w http.ResponseWriter, r *http.Request)
	ApproveEntry(w http.ResponseWriter, r *http.Request)
	RejectEntry(w http.ResponseWriter, r *http.Request)
	ReopenEntry(w http.ResponseWriter, r *http.Request)

	SetCompensation(w http.ResponseWriter, r *http.Request)
	CreateAdjustment(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	entryService payroll.EntryService
	orchestrator payroll.RunOrchestrator
	inputService payroll.InputService
}

func NewPayrollHandler(entryService payroll.EntryService, orchestrator payroll.RunOrchestrator, inputService payroll.InputService) PayrollHandler {
	return &payrollHandlerImpl{
		entryService: entryService,
		orchestrator: orchestrator,
		inputService: inputService,
	}
}

// decodeOptional decodes a JSON body that callers may omit entirely.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	period, err := h.orchestrator.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created successfully", payroll.NewPeriodResponse(period))
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.orchestrator.ListPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		resp = append(resp, payroll.NewPeriodResponse(p))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.orchestrator.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewPeriodResponse(period))
}

type periodTransitionFunc func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error)

// transitionPeriod decodes the optional body, stamps the period and actor, and writes the updated period.
func (h *payrollHandlerImpl) transitionPeriod(w http.ResponseWriter, r *http.Request, message string, fn periodTransitionFunc) {
	var req payroll.PeriodTransitionRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrActorRequired)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")
	req.ActorID = actor.UserID

	period, err := fn(r, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, payroll.NewPeriodResponse(period))
}

func (h *payrollHandlerImpl) OpenPeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Payroll period opened", func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
		return h.orchestrator.OpenPeriod(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) MarkComputed(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Payroll period marked computed", func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
		return h.orchestrator.MarkComputed(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) ApprovePeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Payroll period approved", func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
		return h.orchestrator.ApprovePeriod(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) ReopenPeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Payroll period reopened", func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
		return h.orchestrator.ReopenPeriod(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	h.transitionPeriod(w, r, "Payroll period closed", func(r *http.Request, req payroll.PeriodTransitionRequest) (payroll.Period, error) {
		return h.orchestrator.ClosePeriod(r.Context(), req)
	})
}

// RunPeriod computes every eligible employee of the period and reports per-employee outcomes.
func (h *payrollHandlerImpl) RunPeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.RunRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")

	report, err := h.orchestrator.Run(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run finished", payroll.NewRunReportResponse(report))
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.orchestrator.ListRuns(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.RunRecordResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, payroll.NewRunRecordResponse(run))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.orchestrator.ListAuditEvents(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.AuditEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, payroll.NewAuditEventResponse(e))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryService.ListEntries(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]payroll.EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, payroll.NewEntryResponse(e))
	}
	response.Success(w, resp)
}

func (h *payrollHandlerImpl) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryService.GetEntry(r.Context(), chi.URLParam(r, "periodID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.NewEntryResponse(entry))
}

func (h *payrollHandlerImpl) ComputeEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryService.ComputeEntry(r.Context(), chi.URLParam(r, "periodID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll entry computed", payroll.NewEntryResponse(entry))
}

type entryTransitionFunc func(r *http.Request, req payroll.EntryTransitionRequest) (payroll.Entry, error)

func (h *payrollHandlerImpl) transitionEntry(w http.ResponseWriter, r *http.Request, message string, fn entryTransitionFunc) {
	var req payroll.EntryTransitionRequest
	if err := decodeOptional(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrActorRequired)
		return
	}
	req.PeriodID = chi.URLParam(r, "periodID")
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.ActorID = actor.UserID

	entry, err := fn(r, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, payroll.NewEntryResponse(entry))
}

func (h *payrollHandlerImpl) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, "Payroll entry approved", func(r *http.Request, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
		return h.entryService.ApproveEntry(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) RejectEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, "Payroll entry rejected", func(r *http.Request, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
		return h.entryService.RejectEntry(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) ReopenEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, "Payroll entry reopened", func(r *http.Request, req payroll.EntryTransitionRequest) (payroll.Entry, error) {
		return h.entryService.ReopenEntry(r.Context(), req)
	})
}

func (h *payrollHandlerImpl) SetCompensation(w http.ResponseWriter, r *http.Request) {
	var req payroll.SetCompensationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	comp, err := h.inputService.SetCompensation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation recorded successfully", payroll.NewCompensationResponse(comp))
}

func (h *payrollHandlerImpl) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")

	adj, err := h.inputService.CreateAdjustment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment created successfully", payroll.NewAdjustmentResponse(adj))
}
