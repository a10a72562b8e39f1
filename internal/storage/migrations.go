package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS notifications (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL,
					message TEXT NOT NULL DEFAULT '',
					action_url TEXT,
					action_type TEXT,
					metadata TEXT,
					is_read INTEGER NOT NULL DEFAULT 0,
					read_at DATETIME,
					created_at DATETIME
				)`,

				`CREATE TABLE IF NOT EXISTS employees (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					experience_months REAL NOT NULL DEFAULT 0,
					completion_rate REAL NOT NULL DEFAULT 0,
					open_tasks INTEGER NOT NULL DEFAULT 0,
					available_hours REAL NOT NULL DEFAULT 0,
					avg_task_hours REAL NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS tasks (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL DEFAULT '',
					assignee_id TEXT,
					priority TEXT NOT NULL DEFAULT 'medium',
					complexity TEXT NOT NULL DEFAULT 'moderate',
					estimated_hours REAL NOT NULL,
					required_skills TEXT,
					deadline DATETIME,
					done INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add budgets, metric history and employee health columns",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					allocated REAL NOT NULL DEFAULT 0,
					spent REAL NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS metric_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					metric TEXT NOT NULL,
					recorded_at DATETIME NOT NULL,
					value REAL NOT NULL
				)`,
				`ALTER TABLE employees ADD COLUMN attendance_rate REAL NOT NULL DEFAULT 0`,
				`ALTER TABLE employees ADD COLUMN avg_daily_hours REAL NOT NULL DEFAULT 0`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add indexes for feed and series queries",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_notifications_owner_read ON notifications(owner_id, is_read)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
				`CREATE INDEX IF NOT EXISTS idx_metric_history_metric ON metric_history(metric, recorded_at)`,
			)
		},
	},
}

// Migrate applies every pending migration inside its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.GetContext(ctx, &currentVersion, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.DB.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	if err := s.db.GetContext(ctx, &finalVersion, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the applied schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, "PRAGMA user_version")
	return version, err
}
