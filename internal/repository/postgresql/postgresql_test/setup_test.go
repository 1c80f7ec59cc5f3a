package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
)

// TestDatabaseSetup wraps a connection to a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL. The test is skipped when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to reset test database: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows in dependency order.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_audit_events",
		"payroll_runs",
		"payroll_deductions",
		"payroll_earnings",
		"payroll_entries",
		"payroll_periods",
		"payroll_adjustments",
		"employee_compensations",
		"statutory_tables",
		"daily_time_records",
		"holidays",
		"raw_punches",
		"shift_rosters",
		"employee_schedule_assignments",
		"work_schedules",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// CreateEmployee inserts an active employee and returns its ID.
func (t *TestDatabaseSetup) CreateEmployee(ctx context.Context, code, name, hireDate string) (string, error) {
	var id string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO employees (id, employee_code, full_name, employment_type, employment_status, hire_date)
		VALUES (uuidv7(), $1, $2, 'permanent', 'active', $3::date)
		RETURNING id
	`, code, name, hireDate).Scan(&id)
	return id, err
}

// Close closes the pool.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
