package payroll

import "context"

// EntryService computes and moves individual payroll entries.
type EntryService interface {
	// ComputeEntry rebuilds the entry and all its line items in one transaction.
	ComputeEntry(ctx context.Context, periodID, employeeID string) (Entry, error)
	GetEntry(ctx context.Context, periodID, employeeID string) (Entry, error)
	ListEntries(ctx context.Context, periodID string) ([]Entry, error)
	ApproveEntry(ctx context.Context, req EntryTransitionRequest) (Entry, error)
	// RejectEntry returns a computed entry to draft. The period must be open.
	RejectEntry(ctx context.Context, req EntryTransitionRequest) (Entry, error)
	// ReopenEntry moves an approved entry back to draft in an open period; the action is audited.
	ReopenEntry(ctx context.Context, req EntryTransitionRequest) (Entry, error)
}

// RunOrchestrator drives the period lifecycle and batch computation.
type RunOrchestrator interface {
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (Period, error)
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	ListPeriods(ctx context.Context) ([]Period, error)
	OpenPeriod(ctx context.Context, req PeriodTransitionRequest) (Period, error)
	Run(ctx context.Context, req RunRequest) (RunReport, error)
	MarkComputed(ctx context.Context, req PeriodTransitionRequest) (Period, error)
	ApprovePeriod(ctx context.Context, req PeriodTransitionRequest) (Period, error)
	ReopenPeriod(ctx context.Context, req PeriodTransitionRequest) (Period, error)
	ClosePeriod(ctx context.Context, req PeriodTransitionRequest) (Period, error)
	ListRuns(ctx context.Context, periodID string) ([]RunRecord, error)
	ListAuditEvents(ctx context.Context, periodID string) ([]AuditEvent, error)
}

// InputService records compensation and adjustments consumed by computation.
type InputService interface {
	SetCompensation(ctx context.Context, req SetCompensationRequest) (Compensation, error)
	CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest) (Adjustment, error)
}
