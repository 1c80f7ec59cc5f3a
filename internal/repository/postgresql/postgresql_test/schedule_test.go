package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func fixedSchedule(name string) schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:               name,
		WorkDays:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		GracePeriodMinutes: 10,
		Break:              schedule.BreakRule{DurationMinutes: 60},
		Overtime: schedule.OvertimeRule{
			ThresholdMinutes:  30,
			Multiplier:        decimal.RequireFromString("1.25"),
			RestDayMultiplier: decimal.RequireFromString("1.30"),
		},
		NightDiff: schedule.NightDiffRule{
			Window:     schedule.ShiftWindow{Start: schedule.NewClockTime(22, 0), End: schedule.NewClockTime(6, 0)},
			Multiplier: decimal.RequireFromString("0.10"),
		},
		Config: schedule.FixedConfig{
			Shift: schedule.ShiftWindow{Start: schedule.NewClockTime(8, 0), End: schedule.NewClockTime(17, 0)},
		},
	}
}

func TestWorkScheduleRepository_Versions(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewWorkScheduleRepository(setup.DB)

	first, err := repo.Create(ctx, fixedSchedule("Day Shift"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, fixedSchedule("Day Shift"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)
	assert.Equal(t, schedule.KindFixed, second.Kind)

	loaded, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.WorkDays, loaded.WorkDays)
	assert.True(t, loaded.Overtime.Multiplier.Equal(decimal.RequireFromString("1.25")))
	assert.IsType(t, schedule.FixedConfig{}, loaded.Config)
}

func TestEmployeeScheduleAssignmentRepository_RejectsOverlap(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	employeeID, err := setup.CreateEmployee(ctx, "E-001", "Ana Cruz", "2024-01-01")
	require.NoError(t, err)
	ws, err := postgresql.NewWorkScheduleRepository(setup.DB).Create(ctx, fixedSchedule("Day Shift"))
	require.NoError(t, err)

	repo := postgresql.NewEmployeeScheduleAssignmentRepository(setup.DB)
	end := day("2025-01-31")
	_, err = repo.Create(ctx, schedule.EmployeeScheduleAssignment{
		EmployeeID: employeeID, WorkScheduleID: ws.ID, StartDate: day("2025-01-01"), EndDate: &end,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, schedule.EmployeeScheduleAssignment{
		EmployeeID: employeeID, WorkScheduleID: ws.ID, StartDate: day("2025-01-31"),
	})
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23P01", pgErr.Code)
	assert.Equal(t, "no_overlapping_schedules", pgErr.ConstraintName)

	_, err = repo.Create(ctx, schedule.EmployeeScheduleAssignment{
		EmployeeID: employeeID, WorkScheduleID: ws.ID, StartDate: day("2025-02-01"),
	})
	require.NoError(t, err)

	covering, err := repo.GetCoveringDate(ctx, employeeID, day("2025-03-10"))
	require.NoError(t, err)
	require.Len(t, covering, 1)
	assert.Nil(t, covering[0].EndDate)
}
