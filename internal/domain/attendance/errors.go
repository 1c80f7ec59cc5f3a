package attendance

import "errors"

// Attendance domain errors
var (
	ErrDailyTimeRecordNotFound = errors.New("daily time record not found")
	ErrInvalidDirection        = errors.New("invalid punch direction")
	ErrEmployeeRequired        = errors.New("employee ID is required")
	ErrInvalidDateRange        = errors.New("invalid date range")
	ErrHolidayNotFound         = errors.New("holiday not found")
)
