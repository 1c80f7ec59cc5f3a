package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeScheduleAssignmentRepository struct {
	db *database.DB
}

func scanAssignments(rows pgx.Rows) ([]schedule.EmployeeScheduleAssignment, error) {
	defer rows.Close()

	var assignments []schedule.EmployeeScheduleAssignment
	for rows.Next() {
		var a schedule.EmployeeScheduleAssignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.WorkScheduleID, &a.StartDate, &a.EndDate, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create implements schedule.EmployeeScheduleAssignmentRepository. The
// no_overlapping_schedules exclusion constraint rejects overlapping windows
// with SQLSTATE 23P01.
func (e *employeeScheduleAssignmentRepository) Create(ctx context.Context, assignment schedule.EmployeeScheduleAssignment) (schedule.EmployeeScheduleAssignment, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employee_schedule_assignments (
			id, employee_id, work_schedule_id, start_date, end_date, created_at
		) VALUES (uuidv7(), $1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		assignment.EmployeeID, assignment.WorkScheduleID, assignment.StartDate, assignment.EndDate,
	).Scan(&assignment.ID, &assignment.CreatedAt)
	if err != nil {
		return schedule.EmployeeScheduleAssignment{}, err
	}

	return assignment, nil
}

// GetByEmployeeID implements schedule.EmployeeScheduleAssignmentRepository.
func (e *employeeScheduleAssignmentRepository) GetByEmployeeID(ctx context.Context, employeeID string) ([]schedule.EmployeeScheduleAssignment, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_id, work_schedule_id, start_date, end_date, created_at
		FROM employee_schedule_assignments
		WHERE employee_id = $1
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return scanAssignments(rows)
}

// GetCoveringDate implements schedule.EmployeeScheduleAssignmentRepository.
func (e *employeeScheduleAssignmentRepository) GetCoveringDate(ctx context.Context, employeeID string, date time.Time) ([]schedule.EmployeeScheduleAssignment, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_id, work_schedule_id, start_date, end_date, created_at
		FROM employee_schedule_assignments
		WHERE employee_id = $1
		  AND $2::date BETWEEN start_date AND COALESCE(end_date, 'infinity'::date)
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get covering assignments: %w", err)
	}
	return scanAssignments(rows)
}

// Delete implements schedule.EmployeeScheduleAssignmentRepository.
func (e *employeeScheduleAssignmentRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM employee_schedule_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment with id %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return schedule.ErrEmployeeScheduleAssignmentNotFound
	}
	return nil
}

func NewEmployeeScheduleAssignmentRepository(db *database.DB) schedule.EmployeeScheduleAssignmentRepository {
	return &employeeScheduleAssignmentRepository{db: db}
}
