package model

import (
	"errors"
	"fmt"
	"strings"
)

// Caller contract violations. Scoring functions are total for well-formed input;
// these are returned when a required identity or estimate is missing.
var (
	ErrInvalidEmployee = errors.New("invalid employee")
	ErrInvalidTask     = errors.New("invalid task")
)

// EmployeeMetric is an on-demand snapshot of one employee's working history.
type EmployeeMetric struct {
	ID               string  `json:"id" yaml:"id" db:"id"`
	Name             string  `json:"name" yaml:"name" db:"name"`
	ExperienceMonths float64 `json:"experience_months" yaml:"experience_months" db:"experience_months"`
	// CompletionRate is a percentage in [0,100].
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate" db:"completion_rate"`
	OpenTasks      int     `json:"open_tasks" yaml:"open_tasks" db:"open_tasks"`
	// AvailableHours is the weekly capacity.
	AvailableHours float64 `json:"available_hours" yaml:"available_hours" db:"available_hours"`
	AvgTaskHours   float64 `json:"avg_task_hours" yaml:"avg_task_hours" db:"avg_task_hours"`
	AttendanceRate float64 `json:"attendance_rate" yaml:"attendance_rate" db:"attendance_rate"`
	AvgDailyHours  float64 `json:"avg_daily_hours" yaml:"avg_daily_hours" db:"avg_daily_hours"`
}

// Validate checks the identity and range invariants of the metric.
func (e EmployeeMetric) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEmployee)
	}
	if e.CompletionRate < 0 || e.CompletionRate > 100 {
		return fmt.Errorf("%w: completion rate %.1f outside [0,100]", ErrInvalidEmployee, e.CompletionRate)
	}
	if e.ExperienceMonths < 0 {
		return fmt.Errorf("%w: negative experience", ErrInvalidEmployee)
	}
	if e.AvailableHours < 0 {
		return fmt.Errorf("%w: negative available hours", ErrInvalidEmployee)
	}
	return nil
}

// DisplayName returns the name, falling back to the id.
func (e EmployeeMetric) DisplayName() string {
	if strings.TrimSpace(e.Name) != "" {
		return e.Name
	}
	return e.ID
}
