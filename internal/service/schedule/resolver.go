package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
)

type resolverImpl struct {
	workScheduleRepo           schedule.WorkScheduleRepository
	employeeScheduleAssignRepo schedule.EmployeeScheduleAssignmentRepository
	shiftRosterRepo            schedule.ShiftRosterRepository
}

// Resolve implements schedule.Resolver. It has no side effects.
func (r *resolverImpl) Resolve(ctx context.Context, employeeID string, date time.Time) (*schedule.ResolvedSchedule, error) {
	date = schedule.DateOnly(date)

	assignments, err := r.employeeScheduleAssignRepo.GetCoveringDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule assignments: %w", err)
	}
	switch len(assignments) {
	case 0:
		return nil, nil
	case 1:
	default:
		ids := make([]string, len(assignments))
		for i, a := range assignments {
			ids[i] = a.ID
		}
		return nil, fmt.Errorf("%w: employee %s on %s matches assignments %v",
			schedule.ErrOverlappingScheduleAssignment, employeeID, date.Format("2006-01-02"), ids)
	}

	assignment := assignments[0]
	ws, err := r.workScheduleRepo.GetByID(ctx, assignment.WorkScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get work schedule %s: %w", assignment.WorkScheduleID, err)
	}

	resolved := &schedule.ResolvedSchedule{
		Schedule:     ws,
		AssignmentID: assignment.ID,
	}

	if ws.Kind == schedule.KindShifting {
		name, err := r.shiftRosterRepo.GetShiftName(ctx, employeeID, date)
		switch {
		case errors.Is(err, schedule.ErrShiftNotRostered):
			// Left unset; the calculator records no_schedule.
		case err != nil:
			return nil, fmt.Errorf("failed to get rostered shift: %w", err)
		default:
			resolved.ShiftName = &name
		}
	}

	return resolved, nil
}

func NewResolver(
	workScheduleRepo schedule.WorkScheduleRepository,
	employeeScheduleAssignRepo schedule.EmployeeScheduleAssignmentRepository,
	shiftRosterRepo schedule.ShiftRosterRepository,
) schedule.Resolver {
	return &resolverImpl{
		workScheduleRepo:           workScheduleRepo,
		employeeScheduleAssignRepo: employeeScheduleAssignRepo,
		shiftRosterRepo:            shiftRosterRepo,
	}
}
