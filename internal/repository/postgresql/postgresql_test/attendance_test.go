package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunchRepository_OrdersBySeqOnTies(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	employeeID, err := setup.CreateEmployee(ctx, "E-001", "Ana Cruz", "2024-01-01")
	require.NoError(t, err)

	repo := postgresql.NewPunchRepository(setup.DB)
	at := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	for _, d := range []attendance.Direction{attendance.DirectionIn, attendance.DirectionOut} {
		_, err := repo.Create(ctx, attendance.RawPunch{EmployeeID: employeeID, Direction: d, Timestamp: at, Source: "kiosk"})
		require.NoError(t, err)
	}

	punches, err := repo.ListBetween(ctx, employeeID, at, at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, punches, 2)
	assert.Equal(t, attendance.DirectionIn, punches[0].Direction)
	assert.Less(t, punches[0].Seq, punches[1].Seq)
}

func TestDailyTimeRecordRepository_UpsertKeepsOvertimeApproval(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	employeeID, err := setup.CreateEmployee(ctx, "E-001", "Ana Cruz", "2024-01-01")
	require.NoError(t, err)

	repo := postgresql.NewDailyTimeRecordRepository(setup.DB)
	date := day("2025-01-06")
	_, err = repo.Upsert(ctx, attendance.DailyTimeRecord{
		EmployeeID: employeeID, Date: date, Status: attendance.StatusPresent, WorkMinutes: 480, OvertimeMinutes: 60,
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetOvertimeApproved(ctx, employeeID, date, true))

	reason := attendance.ReasonMissingClockOut
	saved, err := repo.Upsert(ctx, attendance.DailyTimeRecord{
		EmployeeID: employeeID, Date: date, Status: attendance.StatusPresent, WorkMinutes: 480, OvertimeMinutes: 90,
		NeedsReview: true, ReviewReason: &reason,
		Anomalies: []attendance.PunchAnomaly{{PunchID: "p-1", Direction: attendance.DirectionOut, Reason: "duplicate"}},
	})
	require.NoError(t, err)
	assert.True(t, saved.OvertimeApproved)
	assert.Equal(t, 90, saved.OvertimeMinutes)
	require.Len(t, saved.Anomalies, 1)

	records, err := repo.ListByEmployeeRange(ctx, employeeID, date, date)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, saved.ID, records[0].ID)
}
