package model

import (
	"fmt"
	"time"
)

// Priority is the urgency tier of a task.
type Priority string

// Task priority tiers.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is a known priority tier.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Complexity is the effort tier of a task.
type Complexity string

// Task complexity tiers.
const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// IsValid reports whether c is a known complexity tier.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	default:
		return false
	}
}

// TaskRequirement describes the work an assignee must take on.
type TaskRequirement struct {
	Deadline       *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	ID             string     `json:"id,omitempty" yaml:"id,omitempty"`
	Title          string     `json:"title,omitempty" yaml:"title,omitempty"`
	AssigneeID     string     `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	Priority       Priority   `json:"priority" yaml:"priority"`
	Complexity     Complexity `json:"complexity" yaml:"complexity"`
	RequiredSkills []string   `json:"required_skills,omitempty" yaml:"required_skills,omitempty"`
	EstimatedHours float64    `json:"estimated_hours" yaml:"estimated_hours"`
	Done           bool       `json:"done,omitempty" yaml:"done,omitempty"`
}

// Validate checks that the estimate is usable. Unknown tiers are not an error;
// they simply never trigger tier-specific adjustments.
func (t TaskRequirement) Validate() error {
	if t.EstimatedHours <= 0 {
		return fmt.Errorf("%w: estimated hours must be positive, got %.2f", ErrInvalidTask, t.EstimatedHours)
	}
	return nil
}

// DaysUntil returns the fractional number of days from now to the deadline,
// and false when the task has no deadline.
func (t TaskRequirement) DaysUntil(now time.Time) (float64, bool) {
	if t.Deadline == nil || t.Deadline.IsZero() {
		return 0, false
	}
	return t.Deadline.Sub(now).Hours() / 24, true
}
