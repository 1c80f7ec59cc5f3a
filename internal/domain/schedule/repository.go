package schedule

import (
	"context"
	"time"
)

type WorkScheduleRepository interface {
	Create(ctx context.Context, workSchedule WorkSchedule) (WorkSchedule, error)
	GetByID(ctx context.Context, id string) (WorkSchedule, error)
	List(ctx context.Context) ([]WorkSchedule, error)
}

type EmployeeScheduleAssignmentRepository interface {
	Create(ctx context.Context, assignment EmployeeScheduleAssignment) (EmployeeScheduleAssignment, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]EmployeeScheduleAssignment, error)
	// GetCoveringDate returns every assignment whose window contains date.
	// More than one row means the non-overlap invariant is broken.
	GetCoveringDate(ctx context.Context, employeeID string, date time.Time) ([]EmployeeScheduleAssignment, error)
	Delete(ctx context.Context, id string) error
}

type ShiftRosterRepository interface {
	GetShiftName(ctx context.Context, employeeID string, date time.Time) (string, error)
	Upsert(ctx context.Context, entry ShiftRosterEntry) error
}
