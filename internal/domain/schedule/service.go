package schedule

import (
	"context"
	"time"
)

// Resolver returns the schedule applicable to an employee on a date.
// A nil result with a nil error means "no schedule".
type Resolver interface {
	Resolve(ctx context.Context, employeeID string, date time.Time) (*ResolvedSchedule, error)
}

type ScheduleService interface {
	CreateWorkSchedule(ctx context.Context, req CreateWorkScheduleRequest) (WorkSchedule, error)
	AssignSchedule(ctx context.Context, req AssignScheduleRequest) (EmployeeScheduleAssignment, error)
	SetShift(ctx context.Context, req SetShiftRequest) error
	ListEmployeeScheduleAssignments(ctx context.Context, employeeID string) ([]EmployeeScheduleAssignment, error)
	ListWorkSchedules(ctx context.Context) ([]WorkSchedule, error)
	// EnsureDefaultSchedules creates the default catalog when no schedule exists.
	EnsureDefaultSchedules(ctx context.Context) error
}
