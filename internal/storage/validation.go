// Package storage provides the SQLite persistence layer for notifications, employees,
// tasks, budgets and metric history.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/pulse/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidNotification = errors.New("invalid notification")
	ErrInvalidBudget       = errors.New("invalid budget")
	ErrInvalidMetric       = errors.New("invalid metric point")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateNotification checks the fields the store requires. Unknown categories are
// accepted and scored with the default weight.
func validateNotification(n *model.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: notification", ErrNilParameter)
	}
	if strings.TrimSpace(n.OwnerID) == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidNotification)
	}
	if strings.TrimSpace(string(n.Category)) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidNotification)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidNotification)
	}
	return nil
}

func validateEmployee(e *model.EmployeeMetric) error {
	if e == nil {
		return fmt.Errorf("%w: employee", ErrNilParameter)
	}
	return e.Validate()
}

func validateTask(t *model.TaskRequirement) error {
	if t == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	return t.Validate()
}

func validateBudget(b *model.Budget) error {
	if b == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBudget)
	}
	if b.Allocated < 0 || b.Spent < 0 {
		return fmt.Errorf("%w: amounts must be non-negative", ErrInvalidBudget)
	}
	return nil
}

func validateMetricPoint(p model.MetricPoint) error {
	if strings.TrimSpace(p.Metric) == "" {
		return fmt.Errorf("%w: missing metric name", ErrInvalidMetric)
	}
	if p.RecordedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidMetric)
	}
	return nil
}
