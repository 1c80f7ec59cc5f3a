package attendance

import (
	"context"
	"time"
)

// PunchRepository is append-only.
type PunchRepository interface {
	Create(ctx context.Context, punch RawPunch) (RawPunch, error)
	// ListBetween returns punches with from <= timestamp < to ordered by (timestamp, seq).
	ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]RawPunch, error)
}

type DailyTimeRecordRepository interface {
	// Upsert writes the record keyed by (employee_id, date). The overtime_approved
	// column is never overwritten by the calculator.
	Upsert(ctx context.Context, record DailyTimeRecord) (DailyTimeRecord, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (DailyTimeRecord, error)
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]DailyTimeRecord, error)
	SetOvertimeApproved(ctx context.Context, employeeID string, date time.Time, approved bool) error
}

type HolidayRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
}
