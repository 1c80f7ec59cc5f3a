package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day, stored as minutes after midnight.
type ClockTime int

const minutesPerDay = 24 * 60

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// On returns the instant of this clock time on the given calendar date in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, loc)
}

// ShiftWindow is a start/end pair. End at or before Start means the window crosses midnight.
type ShiftWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// CrossesMidnight reports whether the window ends on the following day.
func (w ShiftWindow) CrossesMidnight() bool {
	return w.End <= w.Start
}

// Minutes is the window length.
func (w ShiftWindow) Minutes() int {
	if w.CrossesMidnight() {
		return int(w.End) + minutesPerDay - int(w.Start)
	}
	return int(w.End - w.Start)
}

// On anchors the window to a calendar date: start on date, end on date or date+1.
func (w ShiftWindow) On(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := w.Start.On(date, loc)
	end := w.End.On(date, loc)
	if w.CrossesMidnight() {
		end = w.End.On(date.AddDate(0, 0, 1), loc)
	}
	return start, end
}
