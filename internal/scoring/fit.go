package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

// Confidence adjustments applied on top of baseConfidence.
const (
	baseConfidence = 70

	confidenceExcellentCompletion = 90
	confidenceGoodCompletion      = 80
	confidencePoorCompletion      = 70

	confidenceVeteranMonths     = 36
	confidenceExperiencedMonths = 12
	confidenceNoviceMonths      = 6

	confidenceLightLoad = 3
	confidenceHeavyLoad = 7
)

// Reason thresholds.
const (
	reasonHighCompletion = 85
	reasonLightLoad      = 4
	reasonHeavyLoad      = 7
	reasonVeteranMonths  = 24
	reasonIdealScore     = 80
)

// FitScore estimates how well an employee matches a task, in [0,100].
//
// It is a weighted sum of experience, inverse workload, completion rate and
// availability, boosted for reliable employees on urgent tasks and for experienced
// employees on complex tasks. The result is non-decreasing in completion rate and in
// the availability ratio.
func FitScore(e model.EmployeeMetric, t model.TaskRequirement, cfg Config) int {
	skill := saturate(e.ExperienceMonths, cfg.SkillSaturationMonths)
	workload := math.Max(0, 1-safeDiv(float64(e.OpenTasks), cfg.WorkloadCeiling))
	completion := clamp(e.CompletionRate, 0, 100) / 100
	availability := saturate(e.AvailableHours, t.EstimatedHours)

	score := 100 * (skill*cfg.SkillWeight +
		workload*cfg.WorkloadWeight +
		completion*cfg.CompletionWeight +
		availability*cfg.AvailabilityWeight)

	if t.Priority == model.PriorityUrgent && e.CompletionRate > cfg.UrgentCompletionFloor {
		score *= cfg.UrgentMultiplier
	}
	if t.Complexity == model.ComplexityComplex && e.ExperienceMonths > cfg.ComplexExperienceMonths {
		score *= cfg.ComplexityMultiplier
	}

	return clampInt(int(math.Round(clamp(score, 0, 100))), 0, 100)
}

// Confidence estimates how far a recommendation can be trusted, in [0,100].
// It is independent of the fit score.
func Confidence(e model.EmployeeMetric, _ model.TaskRequirement) int {
	confidence := baseConfidence

	switch {
	case e.CompletionRate > confidenceExcellentCompletion:
		confidence += 15
	case e.CompletionRate > confidenceGoodCompletion:
		confidence += 10
	case e.CompletionRate < confidencePoorCompletion:
		confidence -= 20
	}

	switch {
	case e.ExperienceMonths > confidenceVeteranMonths:
		confidence += 10
	case e.ExperienceMonths > confidenceExperiencedMonths:
		confidence += 5
	case e.ExperienceMonths < confidenceNoviceMonths:
		confidence -= 10
	}

	switch {
	case e.OpenTasks < confidenceLightLoad:
		confidence += 5
	case e.OpenTasks > confidenceHeavyLoad:
		confidence -= 15
	}

	return clampInt(confidence, 0, 100)
}

// Reasons explains a recommendation in human-readable terms.
func Reasons(e model.EmployeeMetric, t model.TaskRequirement, score int) []string {
	var reasons []string

	if e.CompletionRate > reasonHighCompletion {
		reasons = append(reasons, fmt.Sprintf("High completion rate (%.0f%%)", e.CompletionRate))
	}

	switch {
	case e.OpenTasks < reasonLightLoad:
		reasons = append(reasons, "Low current workload")
	case e.OpenTasks > reasonHeavyLoad:
		reasons = append(reasons, fmt.Sprintf("High current workload (%d open tasks)", e.OpenTasks))
	}

	if e.ExperienceMonths > reasonVeteranMonths {
		reasons = append(reasons, fmt.Sprintf("%.0f years of experience", math.Round(e.ExperienceMonths/12)))
	}

	if e.AvailableHours >= t.EstimatedHours {
		reasons = append(reasons, "Enough available time")
	} else {
		reasons = append(reasons, "Limited available time")
	}

	if score > reasonIdealScore {
		reasons = append(reasons, "Strong fit for this task")
	}

	return reasons
}

// ProjectCompletion estimates when the employee would finish the task.
// Employees without completion history are assumed to work at cfg.DefaultEfficiency.
func ProjectCompletion(e model.EmployeeMetric, t model.TaskRequirement, now time.Time, cfg Config) time.Time {
	efficiency := clamp(e.CompletionRate, 0, 100) / 100
	if efficiency <= 0 {
		efficiency = cfg.DefaultEfficiency
	}

	adjusted := safeDiv(t.EstimatedHours, efficiency)
	days := int(math.Ceil(safeDiv(adjusted, cfg.HoursPerWorkday)))

	return now.AddDate(0, 0, days)
}

// AssessWorkloadImpact grades how much the task would burden the employee.
func AssessWorkloadImpact(e model.EmployeeMetric, t model.TaskRequirement) model.WorkloadImpact {
	if e.AvailableHours <= 0 {
		return model.ImpactHigh
	}

	newLoad := e.OpenTasks + 1
	hourImpact := t.EstimatedHours / e.AvailableHours

	switch {
	case newLoad <= 3 && hourImpact < 0.3:
		return model.ImpactLow
	case newLoad <= 6 && hourImpact < 0.6:
		return model.ImpactMedium
	default:
		return model.ImpactHigh
	}
}

// saturate returns value/limit capped at 1, and 0 for non-positive input.
func saturate(value, limit float64) float64 {
	if value <= 0 || limit <= 0 {
		return 0
	}
	return math.Min(value/limit, 1)
}

// safeDiv returns 0 instead of NaN or Inf for a zero denominator.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
