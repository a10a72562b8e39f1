package model

// InsightKind is the advisory flavour of an insight.
type InsightKind string

// Insight kinds.
const (
	KindOptimization InsightKind = "optimization"
	KindWarning      InsightKind = "warning"
	KindOpportunity  InsightKind = "opportunity"
)

// InsightCategory is the business area an insight concerns.
type InsightCategory string

// Insight categories.
const (
	InsightTeam     InsightCategory = "team"
	InsightProcess  InsightCategory = "process"
	InsightResource InsightCategory = "resource"
	InsightBudget   InsightCategory = "budget"
)

// Impact grades how much an insight matters.
type Impact string

// Impact tiers.
const (
	ImpactTierLow    Impact = "low"
	ImpactTierMedium Impact = "medium"
	ImpactTierHigh   Impact = "high"
)

// PerformanceInsight is one advisory message produced from a team snapshot.
type PerformanceInsight struct {
	Data            map[string]any  `json:"data,omitempty"`
	Check           string          `json:"check"`
	Kind            InsightKind     `json:"kind"`
	Category        InsightCategory `json:"category"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Impact          Impact          `json:"impact"`
	Recommendations []string        `json:"recommendations"`
	Actionable      bool            `json:"actionable"`
}

// TeamSnapshot is the input to the insight generator.
type TeamSnapshot struct {
	Employees []EmployeeMetric `json:"employees"`
	// CompletionRate is the overall task completion percentage.
	CompletionRate float64 `json:"completion_rate"`
	// AvgTaskHours is the average task duration in hours.
	AvgTaskHours float64 `json:"avg_task_hours"`
	// BudgetUtilization is the percentage of budget spent.
	BudgetUtilization float64 `json:"budget_utilization"`
}
