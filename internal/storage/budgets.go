package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Veraticus/pulse/internal/model"
)

// SaveBudget inserts or updates a budget. An empty ID is filled with a new UUID.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, b *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(b); err != nil {
		return err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO budgets (id, name, allocated, spent)
		VALUES (:id, :name, :allocated, :spent)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			allocated = excluded.allocated,
			spent = excluded.spent`, b)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// ListBudgets returns every budget ordered by name.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	budgets := []model.Budget{}
	if err := s.db.SelectContext(ctx, &budgets,
		`SELECT id, name, allocated, spent FROM budgets ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	return budgets, nil
}

// AppendMetric records one observation of a metric.
func (s *SQLiteStorage) AppendMetric(ctx context.Context, p model.MetricPoint) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMetricPoint(p); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metric_history (metric, recorded_at, value) VALUES (?, ?, ?)`,
		p.Metric, p.RecordedAt.UTC(), p.Value)
	if err != nil {
		return fmt.Errorf("failed to append metric: %w", err)
	}
	return nil
}

// GetMetricSeries returns a metric's observations in chronological order.
func (s *SQLiteStorage) GetMetricSeries(ctx context.Context, metric string) ([]model.MetricPoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(metric, "metric"); err != nil {
		return nil, err
	}

	points := []model.MetricPoint{}
	if err := s.db.SelectContext(ctx, &points, `
		SELECT metric, recorded_at, value
		FROM metric_history
		WHERE metric = ?
		ORDER BY recorded_at, id`, metric); err != nil {
		return nil, fmt.Errorf("failed to query metric series: %w", err)
	}
	return points, nil
}

// ListMetrics returns the distinct metric names that have history.
func (s *SQLiteStorage) ListMetrics(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	names := []string{}
	if err := s.db.SelectContext(ctx, &names,
		`SELECT DISTINCT metric FROM metric_history ORDER BY metric`); err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	return names, nil
}
