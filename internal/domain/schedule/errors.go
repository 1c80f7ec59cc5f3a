package schedule

import "errors"

var (
	// Work Schedule Errors
	ErrWorkScheduleNotFound  = errors.New("work schedule not found")
	ErrInvalidScheduleConfig = errors.New("invalid work schedule configuration")
	ErrInvalidClockTime      = errors.New("invalid clock time, use HH:MM")

	// Employee Schedule Assignment Errors
	ErrEmployeeScheduleAssignmentNotFound = errors.New("employee schedule assignment not found")
	// ErrOverlappingScheduleAssignment is a data-integrity error: it is surfaced, never auto-resolved.
	ErrOverlappingScheduleAssignment = errors.New("overlapping schedule assignment detected")

	// Shift roster
	ErrShiftNotRostered = errors.New("no shift rostered for this date")

	// Validation Errors
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)
