package scoring

import (
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

// Task risk contributions.
const (
	imminentDeadlineDays   = 2
	imminentDeadlinePoints = 30
	nearDeadlineDays       = 5
	nearDeadlinePoints     = 15

	unreliableCompletionBelow = 70
	unreliablePoints          = 25
	overloadedPoints          = 20
	inexperiencedPoints       = 15
	complexityPoints          = 15
	urgentScopePoints         = 15
)

// riskGroup names the family a risk factor belongs to; each family carries its own
// mitigations.
type riskGroup int

const (
	groupDeadline riskGroup = iota
	groupCapability
	groupWorkload
	groupExperience
	groupComplexity
	groupScope
	groupEscalation
)

var mitigationsByGroup = map[riskGroup][]string{
	groupDeadline: {
		"Negotiate a deadline extension",
		"Add resources to the task",
	},
	groupCapability: {
		"Consider reassigning to a more reliable team member",
		"Schedule daily check-ins",
	},
	groupWorkload: {
		"Reduce the assignee's current workload",
	},
	groupExperience: {
		"Pair the assignee with a senior team member",
	},
	groupComplexity: {
		"Break the task into smaller subtasks",
		"Schedule frequent progress reviews",
	},
	groupScope: {
		"Define interim milestones and deliverables",
	},
	groupEscalation: {
		"Escalate to the team lead for review",
	},
}

// RiskTierForScore maps a risk score onto its tier.
func RiskTierForScore(score int, cfg Config) model.RiskLevel {
	switch {
	case score >= cfg.RiskCriticalFrom:
		return model.RiskCritical
	case score >= cfg.RiskHighFrom:
		return model.RiskHigh
	case score >= cfg.RiskMediumFrom:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// AssessTaskRiskAt assesses task risk using the task's own deadline relative to now.
func AssessTaskRiskAt(task model.TaskRequirement, assignee *model.EmployeeMetric, now time.Time, cfg Config) model.TaskRisk {
	var days *float64
	if d, ok := task.DaysUntil(now); ok {
		days = &d
	}
	return AssessTaskRisk(task, assignee, days, cfg)
}

// AssessTaskRisk scores the delivery risk of a task given its assignee.
//
// Both the assignee and the days until the deadline are optional. Without an assignee
// no capability, workload or experience factors apply; without a deadline no deadline
// factor applies. Every factor contributes at least one mitigation and the lists are
// deterministic for identical input.
func AssessTaskRisk(task model.TaskRequirement, assignee *model.EmployeeMetric, daysUntilDeadline *float64, cfg Config) model.TaskRisk {
	var (
		score   int
		factors []string
		groups  []riskGroup
	)
	add := func(points int, group riskGroup, factor string) {
		score += points
		factors = append(factors, factor)
		if !slices.Contains(groups, group) {
			groups = append(groups, group)
		}
	}

	if daysUntilDeadline != nil {
		switch days := *daysUntilDeadline; {
		case days < imminentDeadlineDays:
			add(imminentDeadlinePoints, groupDeadline, "Deadline is less than 2 days away")
		case days < nearDeadlineDays:
			add(nearDeadlinePoints, groupDeadline, "Deadline is less than 5 days away")
		}
	}

	isComplex := task.Complexity == model.ComplexityComplex

	if assignee != nil {
		if assignee.CompletionRate < unreliableCompletionBelow {
			add(unreliablePoints, groupCapability,
				fmt.Sprintf("Assignee completion rate is low (%.0f%%)", assignee.CompletionRate))
		}
		if assignee.OpenTasks > cfg.OverloadThreshold {
			add(overloadedPoints, groupWorkload,
				fmt.Sprintf("Assignee is overloaded (%d open tasks)", assignee.OpenTasks))
		}
		if isComplex && assignee.ExperienceMonths < cfg.JuniorExperienceMonths {
			add(inexperiencedPoints, groupExperience, "Assignee lacks experience for a complex task")
		}
	}

	if isComplex {
		add(complexityPoints, groupComplexity, "Task is complex")
	}
	if task.Priority == model.PriorityUrgent && task.EstimatedHours > cfg.ComplexTaskHoursThreshold {
		add(urgentScopePoints, groupScope,
			fmt.Sprintf("Urgent task with a large estimate (%.0f hours)", task.EstimatedHours))
	}

	if score >= cfg.RiskHighFrom {
		groups = append(groups, groupEscalation)
	}

	mitigations := []string{}
	for _, g := range groups {
		for _, m := range mitigationsByGroup[g] {
			if !slices.Contains(mitigations, m) {
				mitigations = append(mitigations, m)
			}
		}
	}
	if factors == nil {
		factors = []string{}
	}

	return model.TaskRisk{
		Level:       RiskTierForScore(score, cfg),
		Factors:     factors,
		Mitigations: mitigations,
		Score:       score,
		Probability: min(score, 100),
	}
}
