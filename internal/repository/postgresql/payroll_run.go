package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

type runRepository struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepository{db: db}
}

// Create stores the run under the caller's ID so the report and the row match.
func (r *runRepository) Create(ctx context.Context, run payroll.RunRecord) (payroll.RunRecord, error) {
	q := GetQuerier(ctx, r.db)

	failures := run.Failures
	if failures == nil {
		failures = []payroll.EmployeeFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return payroll.RunRecord{}, fmt.Errorf("failed to encode run failures: %w", err)
	}

	query := `
		INSERT INTO payroll_runs (
			id, period_id, started_at, finished_at, requested, succeeded, failures, cancelled,
			gross_total, deductions_total, net_total, employee_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = q.Exec(ctx, query,
		run.ID, run.PeriodID, run.StartedAt, run.FinishedAt, run.Requested, run.Succeeded, failuresJSON, run.Cancelled,
		run.Totals.Gross, run.Totals.Deductions, run.Totals.Net, run.Totals.EmployeeCount,
	)
	if err != nil {
		return payroll.RunRecord{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return run, nil
}

func (r *runRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.RunRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, period_id, started_at, finished_at, requested, succeeded, failures, cancelled,
			   gross_total, deductions_total, net_total, employee_count
		FROM payroll_runs
		WHERE period_id = $1
		ORDER BY started_at
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.RunRecord
	for rows.Next() {
		var (
			run      payroll.RunRecord
			failures []byte
		)
		if err := rows.Scan(
			&run.ID, &run.PeriodID, &run.StartedAt, &run.FinishedAt, &run.Requested, &run.Succeeded, &failures, &run.Cancelled,
			&run.Totals.Gross, &run.Totals.Deductions, &run.Totals.Net, &run.Totals.EmployeeCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		if err := json.Unmarshal(failures, &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to decode run failures: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) payroll.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, event payroll.AuditEvent) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO payroll_audit_events (id, period_id, entry_id, action, from_status, to_status, actor_id, reason, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW())
	`, event.PeriodID, event.EntryID, event.Action, event.FromStatus, event.ToStatus, event.ActorID, event.Reason)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.AuditEvent, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, period_id, entry_id, action, from_status, to_status, actor_id, reason, created_at
		FROM payroll_audit_events
		WHERE period_id = $1
		ORDER BY created_at, id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []payroll.AuditEvent
	for rows.Next() {
		var e payroll.AuditEvent
		if err := rows.Scan(&e.ID, &e.PeriodID, &e.EntryID, &e.Action, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
