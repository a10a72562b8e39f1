package model

// RiskLevel is an ordered qualitative risk tier.
type RiskLevel string

// Risk tiers from best to worst.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity returns the tier's position in the ladder, 0 for low up to 3 for critical.
// Unknown values sort below low.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// TaskRisk is the explainable risk assessment of a single task.
type TaskRisk struct {
	Level       RiskLevel `json:"risk_level"`
	Factors     []string  `json:"factors"`
	Mitigations []string  `json:"mitigations"`
	Score       int       `json:"score"`
	// Probability is Score capped at 100.
	Probability int `json:"probability"`
}

// EmployeeHealth is the input to churn assessment.
type EmployeeHealth struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	AttendanceRate float64 `json:"attendance_rate"`
	CompletionRate float64 `json:"completion_rate"`
	AvgHours       float64 `json:"avg_hours"`
	TargetHours    float64 `json:"target_hours"`
}

// ChurnRisk is the health composite and tier for one employee.
type ChurnRisk struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Level        RiskLevel `json:"risk_level"`
	Factors      []string  `json:"factors"`
	Composite    float64   `json:"composite"`
}
