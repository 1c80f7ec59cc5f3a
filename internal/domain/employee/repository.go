package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListEmployedDuring returns employees employed at any point in [from, to], ordered by employee code.
	ListEmployedDuring(ctx context.Context, from, to time.Time) ([]Employee, error)
	// GetActive returns employees whose status is active.
	GetActive(ctx context.Context) ([]Employee, error)
}
