package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
)

const employeeColumns = `id, name, experience_months, completion_rate, open_tasks, available_hours,
	avg_task_hours, attendance_rate, avg_daily_hours`

// SaveEmployee inserts or updates an employee metric snapshot.
func (s *SQLiteStorage) SaveEmployee(ctx context.Context, e *model.EmployeeMetric) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEmployee(e); err != nil {
		return err
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`, updated_at)
		VALUES (:id, :name, :experience_months, :completion_rate, :open_tasks, :available_hours,
			:avg_task_hours, :attendance_rate, :avg_daily_hours, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			experience_months = excluded.experience_months,
			completion_rate = excluded.completion_rate,
			open_tasks = excluded.open_tasks,
			available_hours = excluded.available_hours,
			avg_task_hours = excluded.avg_task_hours,
			attendance_rate = excluded.attendance_rate,
			avg_daily_hours = excluded.avg_daily_hours,
			updated_at = CURRENT_TIMESTAMP`, e)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by id.
func (s *SQLiteStorage) GetEmployee(ctx context.Context, id string) (*model.EmployeeMetric, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var e model.EmployeeMetric
	err := s.db.GetContext(ctx, &e, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	return &e, nil
}

// ListEmployees returns every employee ordered by name.
func (s *SQLiteStorage) ListEmployees(ctx context.Context) ([]model.EmployeeMetric, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	employees := []model.EmployeeMetric{}
	if err := s.db.SelectContext(ctx, &employees,
		`SELECT `+employeeColumns+` FROM employees ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	return employees, nil
}
