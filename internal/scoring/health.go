package scoring

import (
	"fmt"
	"math"

	"github.com/Veraticus/pulse/internal/model"
)

// Health composite weights and churn factor thresholds.
const (
	attendanceShare = 0.3
	completionShare = 0.4
	hoursShare      = 0.3

	lowAttendanceBelow = 80
	lowCompletionBelow = 70
	hoursDeviation     = 2
)

// HealthComposite combines attendance, completion and hours-to-target into [0,100].
// The hours ratio is capped at 1 so overtime never raises health. A non-positive
// target falls back to cfg.TargetDailyHours; if that is also unusable the hours term is 0.
func HealthComposite(attendance, completion, avgHours, targetHours float64, cfg Config) float64 {
	if targetHours <= 0 {
		targetHours = cfg.TargetDailyHours
	}
	hoursRatio := saturate(avgHours, targetHours)

	composite := clamp(attendance, 0, 100)*attendanceShare +
		clamp(completion, 0, 100)*completionShare +
		hoursRatio*100*hoursShare

	return clamp(composite, 0, 100)
}

// HealthTier maps a health composite onto a churn risk tier. Lower health means
// higher risk.
func HealthTier(composite float64, cfg Config) model.RiskLevel {
	switch {
	case composite < cfg.HealthCriticalBelow:
		return model.RiskCritical
	case composite < cfg.HealthHighBelow:
		return model.RiskHigh
	case composite < cfg.HealthMediumBelow:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// ChurnRiskLevel returns the churn tier for raw health inputs.
func ChurnRiskLevel(attendance, completion, avgHours, targetHours float64, cfg Config) model.RiskLevel {
	return HealthTier(HealthComposite(attendance, completion, avgHours, targetHours, cfg), cfg)
}

// AssessChurn produces the full churn assessment for one employee.
func AssessChurn(h model.EmployeeHealth, cfg Config) model.ChurnRisk {
	composite := HealthComposite(h.AttendanceRate, h.CompletionRate, h.AvgHours, h.TargetHours, cfg)

	target := h.TargetHours
	if target <= 0 {
		target = cfg.TargetDailyHours
	}

	factors := []string{}
	if h.AttendanceRate < lowAttendanceBelow {
		factors = append(factors, fmt.Sprintf("Attendance below %d%% (%.0f%%)", lowAttendanceBelow, h.AttendanceRate))
	}
	if h.CompletionRate < lowCompletionBelow {
		factors = append(factors, fmt.Sprintf("Completion below %d%% (%.0f%%)", lowCompletionBelow, h.CompletionRate))
	}
	if target > 0 && math.Abs(h.AvgHours-target) > hoursDeviation {
		factors = append(factors, fmt.Sprintf("Working hours deviate from target (%.1fh vs %.1fh)", h.AvgHours, target))
	}

	name := h.EmployeeName
	if name == "" {
		name = h.EmployeeID
	}

	return model.ChurnRisk{
		EmployeeID:   h.EmployeeID,
		EmployeeName: name,
		Level:        HealthTier(composite, cfg),
		Factors:      factors,
		Composite:    composite,
	}
}

// HealthFromMetric derives churn inputs from an employee metric snapshot.
func HealthFromMetric(e model.EmployeeMetric, cfg Config) model.EmployeeHealth {
	return model.EmployeeHealth{
		EmployeeID:     e.ID,
		EmployeeName:   e.DisplayName(),
		AttendanceRate: e.AttendanceRate,
		CompletionRate: e.CompletionRate,
		AvgHours:       e.AvgDailyHours,
		TargetHours:    cfg.TargetDailyHours,
	}
}
