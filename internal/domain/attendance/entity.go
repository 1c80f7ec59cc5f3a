package attendance

import (
	"time"
)

// Direction is the kind of a kiosk/biometric punch.
type Direction string

const (
	DirectionIn       Direction = "in"
	DirectionBreakOut Direction = "break_out"
	DirectionBreakIn  Direction = "break_in"
	DirectionOut      Direction = "out"
)

var DirectionValues = []string{
	string(DirectionIn),
	string(DirectionBreakOut),
	string(DirectionBreakIn),
	string(DirectionOut),
}

// RawPunch is append-only. Seq preserves insertion order and breaks timestamp ties.
type RawPunch struct {
	ID         string
	Seq        int64
	EmployeeID string
	Direction  Direction
	Timestamp  time.Time
	Source     string
	CapturedAt time.Time
}

type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusHoliday    Status = "holiday"
	StatusRestDay    Status = "rest_day"
	StatusNoSchedule Status = "no_schedule"
)

// Review reasons recorded on a DTR.
const (
	ReasonMissingClockOut   = "missing clock-out"
	ReasonNoSchedule        = "no schedule assigned"
	ReasonShiftUnresolvable = "shift not rostered"
	ReasonCoreHoursAbsence  = "absent during core hours"
	ReasonInvalidPunches    = "no valid punch sequence"
	ReasonDayNotClosed      = "day not closed"
)

// PunchAnomaly records a punch excluded from time math, kept for audit.
type PunchAnomaly struct {
	PunchID   string    `json:"punch_id"`
	Direction Direction `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

// DailyTimeRecord is unique per (EmployeeID, Date). It is written only by the DTR calculator.
type DailyTimeRecord struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	WorkScheduleID  *string
	ScheduleVersion *int
	ShiftName       *string
	Status          Status
	FirstIn         *time.Time
	LastOut         *time.Time

	WorkMinutes      int
	BreakMinutes     int
	LateMinutes      int
	UndertimeMinutes int
	OvertimeMinutes  int
	NightDiffMinutes int

	// OvertimeApproved is set by the external approval workflow only.
	OvertimeApproved bool
	IsRestDay        bool
	HolidayType      *HolidayType

	NeedsReview  bool
	ReviewReason *string
	Anomalies    []PunchAnomaly

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaidOvertimeMinutes is the overtime that may be paid downstream.
func (d DailyTimeRecord) PaidOvertimeMinutes() int {
	if !d.OvertimeApproved {
		return 0
	}
	return d.OvertimeMinutes
}

type HolidayType string

const (
	HolidayRegular HolidayType = "regular"
	HolidaySpecial HolidayType = "special"
)

// Holiday is one calendar entry. Non-national holidays apply only to the named work location.
type Holiday struct {
	ID           string
	Date         time.Time
	Name         string
	Type         HolidayType
	IsNational   bool
	WorkLocation *string
}

// AppliesTo reports whether the holiday applies to an employee at workLocation.
func (h Holiday) AppliesTo(workLocation *string) bool {
	if h.IsNational {
		return true
	}
	return h.WorkLocation != nil && workLocation != nil && *h.WorkLocation == *workLocation
}
