package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/pulse/internal/model"
)

type taskTotals struct {
	Total    int     `db:"total"`
	Done     int     `db:"done"`
	AvgHours float64 `db:"avg_hours"`
}

type budgetTotals struct {
	Allocated float64 `db:"allocated"`
	Spent     float64 `db:"spent"`
}

// TeamSnapshot assembles the insight generator's input from stored employees, tasks
// and budgets. Ratios over empty tables are 0.
func (s *SQLiteStorage) TeamSnapshot(ctx context.Context) (model.TeamSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return model.TeamSnapshot{}, err
	}

	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return model.TeamSnapshot{}, err
	}

	var tasks taskTotals
	if err := s.db.GetContext(ctx, &tasks, `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(done), 0) AS done,
			COALESCE(AVG(estimated_hours), 0) AS avg_hours
		FROM tasks`); err != nil {
		return model.TeamSnapshot{}, fmt.Errorf("failed to aggregate tasks: %w", err)
	}

	var budget budgetTotals
	if err := s.db.GetContext(ctx, &budget, `
		SELECT COALESCE(SUM(allocated), 0) AS allocated,
			COALESCE(SUM(spent), 0) AS spent
		FROM budgets`); err != nil {
		return model.TeamSnapshot{}, fmt.Errorf("failed to aggregate budgets: %w", err)
	}

	snapshot := model.TeamSnapshot{
		Employees:         employees,
		AvgTaskHours:      tasks.AvgHours,
		BudgetUtilization: model.Budget{Allocated: budget.Allocated, Spent: budget.Spent}.Utilization(),
	}
	if tasks.Total > 0 {
		snapshot.CompletionRate = float64(tasks.Done) / float64(tasks.Total) * 100
	}
	return snapshot, nil
}
