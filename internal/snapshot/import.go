package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
)

// Result counts the records written by Import.
type Result struct {
	Notifications int `json:"notifications"`
	Employees     int `json:"employees"`
	Tasks         int `json:"tasks"`
	Budgets       int `json:"budgets"`
	Metrics       int `json:"metric_points"`
}

// Total is the number of records written.
func (r Result) Total() int {
	return r.Notifications + r.Employees + r.Tasks + r.Budgets + r.Metrics
}

// Import writes every record of f to store. Employees are written before tasks so
// assignees exist when tasks reference them. progress, when set, is called once per
// record written. Import stops at the first failure and reports what was written.
func Import(ctx context.Context, store service.Storage, f *File, progress func()) (Result, error) {
	var res Result
	tick := func() {
		if progress != nil {
			progress()
		}
	}

	// Convert up front so a bad task or point fails before anything is written.
	tasks, err := f.TaskRecords()
	if err != nil {
		return res, err
	}
	points := make([]model.MetricPoint, 0)
	for _, name := range f.MetricNames() {
		for _, p := range f.Metrics[name] {
			point, err := p.ToModel(name)
			if err != nil {
				return res, err
			}
			points = append(points, point)
		}
	}

	for i := range f.Employees {
		if err := store.SaveEmployee(ctx, &f.Employees[i]); err != nil {
			return res, fmt.Errorf("employee %q: %w", f.Employees[i].ID, err)
		}
		res.Employees++
		tick()
	}

	for i := range tasks {
		if err := store.SaveTask(ctx, &tasks[i]); err != nil {
			return res, fmt.Errorf("task %q: %w", tasks[i].ID, err)
		}
		res.Tasks++
		tick()
	}

	for _, n := range f.NotificationRecords() {
		if n.CreatedAt.IsZero() {
			slog.Debug("notification has no usable timestamp", "id", n.ID)
		}
		if err := store.SaveNotification(ctx, &n); err != nil {
			return res, fmt.Errorf("notification %q: %w", n.ID, err)
		}
		res.Notifications++
		tick()
	}

	for i := range f.Budgets {
		if err := store.SaveBudget(ctx, &f.Budgets[i]); err != nil {
			return res, fmt.Errorf("budget %q: %w", f.Budgets[i].Name, err)
		}
		res.Budgets++
		tick()
	}

	for _, p := range points {
		if err := store.AppendMetric(ctx, p); err != nil {
			return res, fmt.Errorf("metric %q: %w", p.Metric, err)
		}
		res.Metrics++
		tick()
	}

	return res, nil
}
