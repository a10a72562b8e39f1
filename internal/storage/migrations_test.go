package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_ReachesExpectedVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
	assert.Equal(t, len(migrations), version)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	tests := []struct {
		kind string
		name string
	}{
		{"table", "notifications"},
		{"table", "employees"},
		{"table", "tasks"},
		{"table", "budgets"},
		{"table", "metric_history"},
		{"index", "idx_notifications_owner_read"},
		{"index", "idx_notifications_created"},
		{"index", "idx_tasks_assignee"},
		{"index", "idx_metric_history_metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var count int
			err := store.db.Get(&count,
				`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, tt.kind, tt.name)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestMigrate_EmployeeHealthColumns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var columns []string
	require.NoError(t, store.db.Select(&columns, `SELECT name FROM pragma_table_info('employees')`))
	assert.Contains(t, columns, "attendance_rate")
	assert.Contains(t, columns, "avg_daily_hours")
}

func TestMigrate_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // nil context is the case under test
	err := store.Migrate(nil)
	require.ErrorIs(t, err, ErrNilContext)
}
