package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type entryRepository struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) payroll.EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `
	id, period_id, employee_id, employee_code, employee_name, basic_salary, rate_type,
	time_summary, gross_pay, taxable_income, total_deductions, net_pay, status,
	computed_at, approved_at, approved_by, created_at, updated_at
`

func scanEntry(row pgx.Row) (payroll.Entry, error) {
	var (
		e       payroll.Entry
		summary []byte
	)
	err := row.Scan(
		&e.ID, &e.PeriodID, &e.EmployeeID, &e.EmployeeCode, &e.EmployeeName, &e.BasicSalary, &e.RateType,
		&summary, &e.GrossPay, &e.TaxableIncome, &e.TotalDeductions, &e.NetPay, &e.Status,
		&e.ComputedAt, &e.ApprovedAt, &e.ApprovedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return payroll.Entry{}, err
	}
	if err := json.Unmarshal(summary, &e.Summary); err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to decode time summary: %w", err)
	}
	return e, nil
}

// loadLines fills Earnings and Deductions for the given entries in sort order.
func (r *entryRepository) loadLines(ctx context.Context, entries []payroll.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	ids := make([]string, len(entries))
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = i
	}

	rows, err := q.Query(ctx, `
		SELECT id, entry_id, type, code, description, basis, rate, amount, taxable, adjustment_id, sort_order
		FROM payroll_earnings
		WHERE entry_id = ANY($1::uuid[])
		ORDER BY entry_id, sort_order
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to list earnings: %w", err)
	}
	for rows.Next() {
		var l payroll.Earning
		if err := rows.Scan(&l.ID, &l.EntryID, &l.Type, &l.Code, &l.Description, &l.Basis, &l.Rate, &l.Amount, &l.Taxable, &l.AdjustmentID, &l.SortOrder); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan earning: %w", err)
		}
		i := index[l.EntryID]
		entries[i].Earnings = append(entries[i].Earnings, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list earnings: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, entry_id, type, code, description, basis, rate, amount, employer_amount,
			   is_employee_share, is_employer_share, adjustment_id, sort_order
		FROM payroll_deductions
		WHERE entry_id = ANY($1::uuid[])
		ORDER BY entry_id, sort_order
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to list deductions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l payroll.Deduction
		if err := rows.Scan(
			&l.ID, &l.EntryID, &l.Type, &l.Code, &l.Description, &l.Basis, &l.Rate, &l.Amount, &l.EmployerAmount,
			&l.IsEmployeeShare, &l.IsEmployerShare, &l.AdjustmentID, &l.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to scan deduction: %w", err)
		}
		i := index[l.EntryID]
		entries[i].Deductions = append(entries[i].Deductions, l)
	}
	return rows.Err()
}

func (r *entryRepository) withLines(ctx context.Context, e payroll.Entry) (payroll.Entry, error) {
	entries := []payroll.Entry{e}
	if err := r.loadLines(ctx, entries); err != nil {
		return payroll.Entry{}, err
	}
	return entries[0], nil
}

func (r *entryRepository) GetByPeriodAndEmployee(ctx context.Context, periodID, employeeID string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM payroll_entries WHERE period_id = $1 AND employee_id = $2`

	e, err := scanEntry(q.QueryRow(ctx, query, periodID, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}
	return r.withLines(ctx, e)
}

func (r *entryRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + ` FROM payroll_entries WHERE period_id = $1 ORDER BY employee_code`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	var entries []payroll.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}

	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save upserts the entry and replaces its line items. Callers run it inside a
// transaction so a reader never sees a header without its lines.
func (r *entryRepository) Save(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	summary, err := json.Marshal(entry.Summary)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to encode time summary: %w", err)
	}

	query := `
		INSERT INTO payroll_entries (
			id, period_id, employee_id, employee_code, employee_name, basic_salary, rate_type,
			time_summary, gross_pay, taxable_income, total_deductions, net_pay, status,
			computed_at, approved_at, approved_by, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, NOW(), NOW()
		)
		ON CONFLICT (period_id, employee_id) DO UPDATE SET
			employee_code = EXCLUDED.employee_code,
			employee_name = EXCLUDED.employee_name,
			basic_salary = EXCLUDED.basic_salary,
			rate_type = EXCLUDED.rate_type,
			time_summary = EXCLUDED.time_summary,
			gross_pay = EXCLUDED.gross_pay,
			taxable_income = EXCLUDED.taxable_income,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			status = EXCLUDED.status,
			computed_at = EXCLUDED.computed_at,
			approved_at = EXCLUDED.approved_at,
			approved_by = EXCLUDED.approved_by,
			updated_at = NOW()
		RETURNING ` + entryColumns

	saved, err := scanEntry(q.QueryRow(ctx, query,
		entry.PeriodID, entry.EmployeeID, entry.EmployeeCode, entry.EmployeeName, entry.BasicSalary, entry.RateType,
		summary, entry.GrossPay, entry.TaxableIncome, entry.TotalDeductions, entry.NetPay, entry.Status,
		entry.ComputedAt, entry.ApprovedAt, entry.ApprovedBy,
	))
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to save payroll entry: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM payroll_earnings WHERE entry_id = $1`, saved.ID)
	batch.Queue(`DELETE FROM payroll_deductions WHERE entry_id = $1`, saved.ID)
	for _, l := range entry.Earnings {
		batch.Queue(`
			INSERT INTO payroll_earnings (id, entry_id, type, code, description, basis, rate, amount, taxable, adjustment_id, sort_order)
			VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, saved.ID, l.Type, l.Code, l.Description, l.Basis, l.Rate, l.Amount, l.Taxable, l.AdjustmentID, l.SortOrder)
	}
	for _, l := range entry.Deductions {
		batch.Queue(`
			INSERT INTO payroll_deductions (
				id, entry_id, type, code, description, basis, rate, amount, employer_amount,
				is_employee_share, is_employer_share, adjustment_id, sort_order
			) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, saved.ID, l.Type, l.Code, l.Description, l.Basis, l.Rate, l.Amount, l.EmployerAmount,
			l.IsEmployeeShare, l.IsEmployerShare, l.AdjustmentID, l.SortOrder)
	}

	results := q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return payroll.Entry{}, fmt.Errorf("failed to write payroll line items: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to write payroll line items: %w", err)
	}

	return r.withLines(ctx, saved)
}

func (r *entryRepository) UpdateStatus(ctx context.Context, id string, from, to payroll.EntryStatus, actorID *string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_entries
		SET status = $3::text,
			approved_at = CASE WHEN $3::text = 'approved' THEN NOW() ELSE NULL END,
			approved_by = CASE WHEN $3::text = 'approved' THEN $4 ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2::text
		RETURNING ` + entryColumns

	e, err := scanEntry(q.QueryRow(ctx, query, id, string(from), string(to), actorID))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return payroll.Entry{}, fmt.Errorf("failed to update payroll entry status: %w", err)
		}
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payroll_entries WHERE id = $1)`, id).Scan(&exists); err != nil {
			return payroll.Entry{}, fmt.Errorf("failed to check payroll entry: %w", err)
		}
		if !exists {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("%w: entry is not %s", payroll.ErrInvalidEntryTransition, from)
	}
	return r.withLines(ctx, e)
}

func (r *entryRepository) ApproveComputed(ctx context.Context, periodID, actorID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `
		UPDATE payroll_entries
		SET status = 'approved', approved_at = NOW(), approved_by = $2, updated_at = NOW()
		WHERE period_id = $1 AND status = 'computed'
	`, periodID, actorID)
	if err != nil {
		return 0, fmt.Errorf("failed to approve payroll entries: %w", err)
	}
	return commandTag.RowsAffected(), nil
}

func (r *entryRepository) CountedEmployeeIDs(ctx context.Context, periodID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT employee_id FROM payroll_entries
		WHERE period_id = $1 AND status IN ('computed', 'approved')
		ORDER BY employee_id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list counted employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
