package fixtures

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

func clockPtr(c schedule.ClockTime) *schedule.ClockTime { return &c }

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// Night differential applies 22:00-06:00 at 10% on every default schedule.
func defaultNightDiff() schedule.NightDiffRule {
	return schedule.NightDiffRule{
		Window:     schedule.ShiftWindow{Start: schedule.NewClockTime(22, 0), End: schedule.NewClockTime(6, 0)},
		Multiplier: decimal.RequireFromString("0.10"),
	}
}

func defaultOvertime() schedule.OvertimeRule {
	return schedule.OvertimeRule{
		ThresholdMinutes:  30,
		Multiplier:        decimal.RequireFromString("1.25"),
		RestDayMultiplier: decimal.RequireFromString("1.30"),
	}
}

// ==========================================
// DEFAULT WORK SCHEDULES
// ==========================================

// GetDefaultWorkSchedule returns the standard Mon-Fri 09:00-18:00 schedule with a 12:00 lunch hour.
func GetDefaultWorkSchedule() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:               "Standard Office Hours",
		Version:            1,
		Kind:               schedule.KindFixed,
		WorkDays:           weekdays,
		GracePeriodMinutes: 15,
		Break:              schedule.BreakRule{Start: clockPtr(schedule.NewClockTime(12, 0)), DurationMinutes: 60},
		Overtime:           defaultOvertime(),
		NightDiff:          defaultNightDiff(),
		Config: schedule.FixedConfig{
			Shift: schedule.ShiftWindow{Start: schedule.NewClockTime(9, 0), End: schedule.NewClockTime(18, 0)},
		},
	}
}

// GetNightShiftWorkSchedule returns an overnight 22:00-06:00 schedule.
func GetNightShiftWorkSchedule() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:               "Night Shift",
		Version:            1,
		Kind:               schedule.KindFixed,
		WorkDays:           weekdays,
		GracePeriodMinutes: 15,
		Break:              schedule.BreakRule{Start: clockPtr(schedule.NewClockTime(1, 0)), DurationMinutes: 60},
		Overtime:           defaultOvertime(),
		NightDiff:          defaultNightDiff(),
		Config: schedule.FixedConfig{
			Shift: schedule.ShiftWindow{Start: schedule.NewClockTime(22, 0), End: schedule.NewClockTime(6, 0)},
		},
	}
}

// GetRotatingShiftWorkSchedule returns a shifting schedule with morning, afternoon and night shifts.
func GetRotatingShiftWorkSchedule() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:               "Rotating Shifts",
		Version:            1,
		Kind:               schedule.KindShifting,
		WorkDays:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		GracePeriodMinutes: 10,
		Break:              schedule.BreakRule{DurationMinutes: 60},
		Overtime:           defaultOvertime(),
		NightDiff:          defaultNightDiff(),
		Config: schedule.ShiftingConfig{
			Shifts: map[string]schedule.ShiftWindow{
				"morning":   {Start: schedule.NewClockTime(6, 0), End: schedule.NewClockTime(15, 0)},
				"afternoon": {Start: schedule.NewClockTime(14, 0), End: schedule.NewClockTime(23, 0)},
				"night":     {Start: schedule.NewClockTime(22, 0), End: schedule.NewClockTime(7, 0)},
			},
		},
	}
}

// GetFlexibleWorkSchedule returns a flexible schedule: 07:00-19:00 band, 10:00-15:00 core, 8 hours required.
func GetFlexibleWorkSchedule() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:      "Flexible Hours",
		Version:   1,
		Kind:      schedule.KindFlexible,
		WorkDays:  weekdays,
		Break:     schedule.BreakRule{DurationMinutes: 60},
		Overtime:  defaultOvertime(),
		NightDiff: defaultNightDiff(),
		Config: schedule.FlexibleConfig{
			Band:                 schedule.ShiftWindow{Start: schedule.NewClockTime(7, 0), End: schedule.NewClockTime(19, 0)},
			Core:                 schedule.ShiftWindow{Start: schedule.NewClockTime(10, 0), End: schedule.NewClockTime(15, 0)},
			RequiredDailyMinutes: 8 * 60,
		},
	}
}

// GetCompressedWorkSchedule returns a four-day 07:00-18:00 compressed week.
func GetCompressedWorkSchedule() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		Name:               "Compressed Work Week",
		Version:            1,
		Kind:               schedule.KindCompressed,
		WorkDays:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
		GracePeriodMinutes: 15,
		Break:              schedule.BreakRule{Start: clockPtr(schedule.NewClockTime(12, 0)), DurationMinutes: 60},
		Overtime:           defaultOvertime(),
		NightDiff:          defaultNightDiff(),
		Config: schedule.CompressedConfig{
			Shift: schedule.ShiftWindow{Start: schedule.NewClockTime(7, 0), End: schedule.NewClockTime(18, 0)},
		},
	}
}

// GetAllDefaultWorkSchedules returns every default schedule.
func GetAllDefaultWorkSchedules() []schedule.WorkSchedule {
	return []schedule.WorkSchedule{
		GetDefaultWorkSchedule(),
		GetNightShiftWorkSchedule(),
		GetRotatingShiftWorkSchedule(),
		GetFlexibleWorkSchedule(),
		GetCompressedWorkSchedule(),
	}
}
