package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects the calculation strategy for a schedule.
type Kind string

const (
	KindFixed      Kind = "fixed"
	KindFlexible   Kind = "flexible"
	KindShifting   Kind = "shifting"
	KindCompressed Kind = "compressed"
)

var KindValues = []string{
	string(KindFixed),
	string(KindFlexible),
	string(KindShifting),
	string(KindCompressed),
}

// WorkSchedule is one immutable version of a schedule configuration.
// A change to the configuration produces a new row with Version+1.
type WorkSchedule struct {
	ID                 string
	Name               string
	Version            int
	Kind               Kind
	WorkDays           []time.Weekday
	GracePeriodMinutes int
	Break              BreakRule
	Overtime           OvertimeRule
	NightDiff          NightDiffRule
	Config             Variant
	CreatedAt          time.Time
}

// IsWorkDay reports whether the weekday is part of the schedule's work-day set.
func (ws WorkSchedule) IsWorkDay(day time.Weekday) bool {
	for _, d := range ws.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

// BreakRule describes the unpaid break. A nil Start means the break may be taken anytime.
type BreakRule struct {
	Start           *ClockTime `json:"start,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

type OvertimeRule struct {
	// ThresholdMinutes is the minimum excess before any overtime is counted.
	ThresholdMinutes  int             `json:"threshold_minutes"`
	Multiplier        decimal.Decimal `json:"multiplier"`
	RestDayMultiplier decimal.Decimal `json:"rest_day_multiplier"`
}

type NightDiffRule struct {
	Window ShiftWindow `json:"window"`
	// Multiplier is the premium on top of the hourly rate (0.10 = 10%).
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Variant is the kind-specific part of a schedule. The set is closed:
// FixedConfig, FlexibleConfig, ShiftingConfig and CompressedConfig.
type Variant interface {
	Kind() Kind
	isVariant()
}

type FixedConfig struct {
	Shift ShiftWindow `json:"shift"`
}

type FlexibleConfig struct {
	// Band bounds when punches are accepted for the day.
	Band                 ShiftWindow `json:"band"`
	Core                 ShiftWindow `json:"core"`
	RequiredDailyMinutes int         `json:"required_daily_minutes"`
}

type ShiftingConfig struct {
	Shifts map[string]ShiftWindow `json:"shifts"`
}

// CompressedConfig packs the week into fewer, longer days. Each day is scored
// against Shift; the weekly total follows from Shift and WorkDays.
type CompressedConfig struct {
	Shift ShiftWindow `json:"shift"`
}

func (FixedConfig) Kind() Kind      { return KindFixed }
func (FlexibleConfig) Kind() Kind   { return KindFlexible }
func (ShiftingConfig) Kind() Kind   { return KindShifting }
func (CompressedConfig) Kind() Kind { return KindCompressed }

func (FixedConfig) isVariant()      {}
func (FlexibleConfig) isVariant()   {}
func (ShiftingConfig) isVariant()   {}
func (CompressedConfig) isVariant() {}

// MarshalVariant encodes the variant for the config JSONB column.
func MarshalVariant(v Variant) ([]byte, error) {
	if v == nil {
		return nil, ErrInvalidScheduleConfig
	}
	return json.Marshal(v)
}

// UnmarshalVariant decodes the config column for the given kind.
func UnmarshalVariant(kind Kind, data []byte) (Variant, error) {
	switch kind {
	case KindFixed:
		var v FixedConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode fixed schedule config: %w", err)
		}
		return v, nil
	case KindFlexible:
		var v FlexibleConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode flexible schedule config: %w", err)
		}
		return v, nil
	case KindShifting:
		var v ShiftingConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode shifting schedule config: %w", err)
		}
		return v, nil
	case KindCompressed:
		var v CompressedConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode compressed schedule config: %w", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidScheduleConfig, kind)
}

// EmployeeScheduleAssignment binds an employee to one schedule version for
// [StartDate, EndDate]. A nil EndDate is open-ended.
type EmployeeScheduleAssignment struct {
	ID             string
	EmployeeID     string
	WorkScheduleID string
	StartDate      time.Time
	EndDate        *time.Time
	CreatedAt      time.Time
}

// Covers reports whether the assignment window contains date (date-only comparison).
func (a EmployeeScheduleAssignment) Covers(date time.Time) bool {
	d := DateOnly(date)
	if d.Before(DateOnly(a.StartDate)) {
		return false
	}
	return a.EndDate == nil || !d.After(DateOnly(*a.EndDate))
}

// Overlaps reports whether two assignment windows share at least one day.
func (a EmployeeScheduleAssignment) Overlaps(b EmployeeScheduleAssignment) bool {
	aEnd, bEnd := farFuture, farFuture
	if a.EndDate != nil {
		aEnd = DateOnly(*a.EndDate)
	}
	if b.EndDate != nil {
		bEnd = DateOnly(*b.EndDate)
	}
	return !DateOnly(a.StartDate).After(bEnd) && !DateOnly(b.StartDate).After(aEnd)
}

var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// ShiftRosterEntry names the shift a Shifting-schedule employee works on a date.
type ShiftRosterEntry struct {
	EmployeeID string
	Date       time.Time
	ShiftName  string
}

// ResolvedSchedule is the schedule applicable to one employee-date.
type ResolvedSchedule struct {
	Schedule     WorkSchedule
	AssignmentID string
	// ShiftName is set for Shifting schedules when a roster entry exists.
	ShiftName *string
}

// DateOnly strips the clock part, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
