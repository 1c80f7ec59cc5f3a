package attendance

import (
	"context"
	"time"
)

// DTRService computes and persists daily time records.
type DTRService interface {
	// ComputeDay recomputes one employee-date; now decides whether the day is closed.
	ComputeDay(ctx context.Context, employeeID string, date time.Time, now time.Time) (DailyTimeRecord, error)
	ComputeRange(ctx context.Context, employeeID string, from, to time.Time, now time.Time) ([]DailyTimeRecord, error)
	// ComputeDayForActive computes date for every active employee. Per-employee
	// failures are logged and counted, not returned.
	ComputeDayForActive(ctx context.Context, date time.Time, now time.Time) (computed int, failed int, err error)
	RecordPunch(ctx context.Context, req RecordPunchRequest) (RawPunch, error)
	ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]DailyTimeRecord, error)
	// SetOvertimeApproved records a decision made by the external approval workflow.
	SetOvertimeApproved(ctx context.Context, req SetOvertimeApprovalRequest) error
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (Holiday, error)
}
