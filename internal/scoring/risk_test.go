package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/model"
)

func TestRiskTierForScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{0, model.RiskLow},
		{29, model.RiskLow},
		{30, model.RiskMedium},
		{31, model.RiskMedium},
		{49, model.RiskMedium},
		{50, model.RiskHigh},
		{51, model.RiskHigh},
		{69, model.RiskHigh},
		{70, model.RiskCritical},
		{71, model.RiskCritical},
		{100, model.RiskCritical},
		{150, model.RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskTierForScore(tt.score, cfg), "score %d", tt.score)
	}
}

func TestRiskTierForScore_Exhaustive(t *testing.T) {
	cfg := DefaultConfig()
	prev := -1
	for score := 0; score <= 100; score++ {
		tier := RiskTierForScore(score, cfg)
		require.NotEqual(t, -1, tier.Severity(), "score %d", score)
		require.GreaterOrEqual(t, tier.Severity(), prev, "score %d", score)
		prev = tier.Severity()
	}
}

func TestAssessTaskRisk(t *testing.T) {
	cfg := DefaultConfig()
	days := func(d float64) *float64 { return &d }

	t.Run("no factors", func(t *testing.T) {
		risk := AssessTaskRisk(model.TaskRequirement{EstimatedHours: 4, Priority: model.PriorityLow}, nil, nil, cfg)
		assert.Equal(t, model.RiskLow, risk.Level)
		assert.Zero(t, risk.Score)
		assert.Zero(t, risk.Probability)
		assert.Empty(t, risk.Factors)
		assert.Empty(t, risk.Mitigations)
	})

	t.Run("near deadline only", func(t *testing.T) {
		risk := AssessTaskRisk(model.TaskRequirement{EstimatedHours: 4}, nil, days(3), cfg)
		assert.Equal(t, 15, risk.Score)
		assert.Equal(t, model.RiskLow, risk.Level)
		assert.Equal(t, []string{"Deadline is less than 5 days away"}, risk.Factors)
		assert.Equal(t, mitigationsByGroup[groupDeadline], risk.Mitigations)
	})

	t.Run("deadline thresholds are exclusive", func(t *testing.T) {
		assert.Equal(t, 15, AssessTaskRisk(model.TaskRequirement{EstimatedHours: 1}, nil, days(2), cfg).Score)
		assert.Equal(t, 0, AssessTaskRisk(model.TaskRequirement{EstimatedHours: 1}, nil, days(5), cfg).Score)
		assert.Equal(t, 30, AssessTaskRisk(model.TaskRequirement{EstimatedHours: 1}, nil, days(-1), cfg).Score)
	})

	t.Run("every factor fires", func(t *testing.T) {
		task := model.TaskRequirement{EstimatedHours: 50, Priority: model.PriorityUrgent, Complexity: model.ComplexityComplex}
		assignee := &model.EmployeeMetric{ID: "e1", CompletionRate: 60, OpenTasks: 8, ExperienceMonths: 3}

		risk := AssessTaskRisk(task, assignee, days(1), cfg)
		assert.Equal(t, 120, risk.Score)
		assert.Equal(t, 100, risk.Probability)
		assert.Equal(t, model.RiskCritical, risk.Level)
		assert.Len(t, risk.Factors, 6)
		assert.Equal(t, "Escalate to the team lead for review", risk.Mitigations[len(risk.Mitigations)-1])

		for _, group := range []riskGroup{groupDeadline, groupCapability, groupWorkload, groupExperience, groupComplexity, groupScope} {
			for _, m := range mitigationsByGroup[group] {
				assert.Contains(t, risk.Mitigations, m)
			}
		}
	})

	t.Run("escalation starts at the high tier", func(t *testing.T) {
		task := model.TaskRequirement{EstimatedHours: 10, Complexity: model.ComplexityComplex}

		medium := AssessTaskRisk(task, nil, days(1), cfg)
		assert.Equal(t, 45, medium.Score)
		assert.Equal(t, model.RiskMedium, medium.Level)
		assert.NotContains(t, medium.Mitigations, "Escalate to the team lead for review")

		critical := AssessTaskRisk(task, &model.EmployeeMetric{ID: "e1", CompletionRate: 50, ExperienceMonths: 12}, days(1), cfg)
		assert.Equal(t, 70, critical.Score)
		assert.Equal(t, model.RiskCritical, critical.Level)
		assert.Contains(t, critical.Mitigations, "Escalate to the team lead for review")
	})

	t.Run("experience factor needs a complex task", func(t *testing.T) {
		assignee := &model.EmployeeMetric{ID: "e1", CompletionRate: 90, ExperienceMonths: 1}
		risk := AssessTaskRisk(model.TaskRequirement{EstimatedHours: 10, Complexity: model.ComplexityModerate}, assignee, nil, cfg)
		assert.Zero(t, risk.Score)
	})

	t.Run("deterministic", func(t *testing.T) {
		task := model.TaskRequirement{EstimatedHours: 60, Priority: model.PriorityUrgent, Complexity: model.ComplexityComplex}
		assignee := &model.EmployeeMetric{ID: "e1", CompletionRate: 10, OpenTasks: 12}
		assert.Equal(t, AssessTaskRisk(task, assignee, days(0.5), cfg), AssessTaskRisk(task, assignee, days(0.5), cfg))
	})
}

func TestAssessTaskRiskAt(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(36 * time.Hour)

	risk := AssessTaskRiskAt(model.TaskRequirement{EstimatedHours: 5, Deadline: &deadline}, nil, now, cfg)
	assert.Equal(t, 30, risk.Score)
	assert.Equal(t, model.RiskMedium, risk.Level)

	risk = AssessTaskRiskAt(model.TaskRequirement{EstimatedHours: 5}, nil, now, cfg)
	assert.Zero(t, risk.Score)
}
