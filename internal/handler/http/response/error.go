package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Malformed request bodies
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		BadRequest(w, "Malformed request body", nil)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrActorRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrManagerAccessRequired), errors.Is(err, auth.ErrOwnerAccessRequired):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, schedule.ErrWorkScheduleNotFound):
		NotFound(w, "Work schedule not found")
	case errors.Is(err, schedule.ErrEmployeeScheduleAssignmentNotFound):
		NotFound(w, "Schedule assignment not found")
	case errors.Is(err, attendance.ErrDailyTimeRecordNotFound):
		NotFound(w, "Daily time record not found")
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrAdjustmentNotFound):
		NotFound(w, "Adjustment not found")

	// Bad input
	case errors.Is(err, schedule.ErrInvalidScheduleConfig),
		errors.Is(err, schedule.ErrInvalidClockTime),
		errors.Is(err, schedule.ErrInvalidDateFormat),
		errors.Is(err, attendance.ErrInvalidDirection),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, statutory.ErrBracketPartition),
		errors.Is(err, statutory.ErrUnknownPayPeriod):
		BadRequest(w, err.Error(), nil)

	// State transitions
	case errors.Is(err, payroll.ErrInvalidPeriodTransition),
		errors.Is(err, payroll.ErrInvalidEntryTransition),
		errors.Is(err, payroll.ErrPeriodNotOpen),
		errors.Is(err, payroll.ErrPeriodClosed),
		errors.Is(err, payroll.ErrEntryApproved),
		errors.Is(err, payroll.ErrComputationInFlight),
		errors.Is(err, payroll.ErrPendingEntries),
		errors.Is(err, schedule.ErrOverlappingScheduleAssignment),
		errors.Is(err, payroll.ErrOverlappingPeriod):
		Conflict(w, err.Error())

	// Incomplete inputs
	case errors.Is(err, payroll.ErrNoCompensation),
		errors.Is(err, payroll.ErrUnresolvedTimeRecords),
		errors.Is(err, payroll.ErrMissingTimeRecords),
		errors.Is(err, schedule.ErrShiftNotRostered):
		IncompleteInput(w, err.Error())

	// Data integrity
	case errors.Is(err, statutory.ErrNoActiveTable),
		errors.Is(err, statutory.ErrBracketGap):
		DataIntegrity(w, err.Error())

	// Invariant violations carry their totals in the message
	case errors.Is(err, payroll.ErrLineItemMismatch),
		errors.Is(err, payroll.ErrPeriodTotalMismatch):
		slog.Error("payroll invariant violated", "error", err)
		InternalServerError(w, "Payroll totals failed reconciliation")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
