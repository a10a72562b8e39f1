package model

import "time"

// WorkloadImpact describes how much a new assignment burdens an employee.
type WorkloadImpact string

// Workload impact tiers.
const (
	ImpactLow    WorkloadImpact = "low"
	ImpactMedium WorkloadImpact = "medium"
	ImpactHigh   WorkloadImpact = "high"
)

// AssignmentRecommendation is an ephemeral scored match of an employee to a task.
type AssignmentRecommendation struct {
	ProjectedCompletion time.Time      `json:"projected_completion"`
	EmployeeID          string         `json:"employee_id"`
	EmployeeName        string         `json:"employee_name"`
	WorkloadImpact      WorkloadImpact `json:"workload_impact"`
	Reasons             []string       `json:"reasons"`
	Score               int            `json:"score"`
	Confidence          int            `json:"confidence"`
}
