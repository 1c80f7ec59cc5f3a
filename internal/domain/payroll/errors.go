package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

var (
	ErrPeriodNotFound     = errors.New("payroll period not found")
	ErrEntryNotFound      = errors.New("payroll entry not found")
	ErrAdjustmentNotFound = errors.New("adjustment not found")
	ErrInvalidPeriod      = errors.New("invalid payroll period")
	ErrOverlappingPeriod  = errors.New("payroll period overlaps another period of the same pay frequency")

	// Input incompleteness
	ErrNoCompensation        = errors.New("employee has no compensation record")
	ErrUnresolvedTimeRecords = errors.New("time records need review")
	ErrMissingTimeRecords    = errors.New("time records missing for cutoff")

	// Invariant violations
	ErrLineItemMismatch    = errors.New("line items do not reconcile to entry totals")
	ErrPeriodTotalMismatch = errors.New("period totals do not reconcile")

	// State transitions
	ErrInvalidPeriodTransition = errors.New("invalid payroll period transition")
	ErrInvalidEntryTransition  = errors.New("invalid payroll entry transition")
	ErrPeriodNotOpen           = errors.New("payroll period is not open for computation")
	ErrPeriodClosed            = errors.New("payroll period is closed")
	ErrEntryApproved           = errors.New("payroll entry is approved; reopen it first")
	ErrComputationInFlight     = errors.New("payroll computation in flight for period")
	ErrPendingEntries          = errors.New("eligible employees have pending or failed entries")
)

// LineItemMismatchError carries the offending totals. It matches ErrLineItemMismatch.
type LineItemMismatchError struct {
	Field   string
	Total   decimal.Decimal
	LineSum decimal.Decimal
}

func (e *LineItemMismatchError) Error() string {
	return fmt.Sprintf("%s: %s total %s, line items sum to %s", ErrLineItemMismatch, e.Field, e.Total, e.LineSum)
}

func (e *LineItemMismatchError) Is(target error) bool {
	return target == ErrLineItemMismatch
}

// FailureKind buckets a per-employee error for the run report.
type FailureKind string

const (
	FailureDataIntegrity   FailureKind = "data_integrity"
	FailureIncompleteInput FailureKind = "incomplete_input"
	FailureInvariant       FailureKind = "invariant_violation"
	FailureStateTransition FailureKind = "state_transition"
	FailureTimeout         FailureKind = "timeout"
	FailureInternal        FailureKind = "internal"
)

// ClassifyFailure maps an error to its FailureKind.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, schedule.ErrOverlappingScheduleAssignment),
		errors.Is(err, statutory.ErrNoActiveTable),
		errors.Is(err, statutory.ErrBracketGap),
		errors.Is(err, statutory.ErrBracketPartition):
		return FailureDataIntegrity
	case errors.Is(err, ErrNoCompensation),
		errors.Is(err, ErrUnresolvedTimeRecords),
		errors.Is(err, ErrMissingTimeRecords),
		errors.Is(err, employee.ErrEmployeeNotFound):
		return FailureIncompleteInput
	case errors.Is(err, ErrLineItemMismatch),
		errors.Is(err, ErrPeriodTotalMismatch):
		return FailureInvariant
	case errors.Is(err, ErrEntryApproved),
		errors.Is(err, ErrPeriodClosed),
		errors.Is(err, ErrPeriodNotOpen),
		errors.Is(err, ErrInvalidPeriodTransition),
		errors.Is(err, ErrInvalidEntryTransition):
		return FailureStateTransition
	}
	return FailureInternal
}
