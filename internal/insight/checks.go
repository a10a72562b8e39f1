package insight

import (
	"fmt"
	"math"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/scoring"
)

// Check names, in generator order.
const (
	CheckOverloaded     = "overloaded_employees"
	CheckUnderutilized  = "underutilized_employees"
	CheckLowCompletion  = "low_completion"
	CheckHighCompletion = "high_completion"
	CheckSkillGap       = "skill_gap"
	CheckBudget         = "budget_utilization"
	CheckTaskComplexity = "task_complexity"
	CheckTopPerformers  = "top_performers"
)

// Payload keys for insights that list employees.
const (
	DataOverloaded    = "overloadedEmployees"
	DataUnderutilized = "underutilizedEmployees"
	DataTopPerformers = "topPerformers"
)

// Check inspects a team snapshot and returns at most one insight.
type Check interface {
	Name() string
	Evaluate(snapshot model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight
}

type checkFunc struct {
	eval func(model.TeamSnapshot, scoring.Config) *model.PerformanceInsight
	name string
}

func (c checkFunc) Name() string { return c.name }

func (c checkFunc) Evaluate(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	in := c.eval(s, cfg)
	if in != nil {
		in.Check = c.name
	}
	return in
}

// NewCheck adapts a function into a Check.
func NewCheck(name string, eval func(model.TeamSnapshot, scoring.Config) *model.PerformanceInsight) Check {
	return checkFunc{name: name, eval: eval}
}

// DefaultChecks returns the standard battery in its fixed output order.
func DefaultChecks() []Check {
	return []Check{
		NewCheck(CheckOverloaded, overloaded),
		NewCheck(CheckUnderutilized, underutilized),
		NewCheck(CheckLowCompletion, lowCompletion),
		NewCheck(CheckHighCompletion, highCompletion),
		NewCheck(CheckSkillGap, skillGap),
		NewCheck(CheckBudget, budget),
		NewCheck(CheckTaskComplexity, taskComplexity),
		NewCheck(CheckTopPerformers, topPerformers),
	}
}

func names(employees []model.EmployeeMetric, keep func(model.EmployeeMetric) bool) []string {
	var out []string
	for _, e := range employees {
		if keep(e) {
			out = append(out, e.DisplayName())
		}
	}
	return out
}

func overloaded(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	list := names(s.Employees, func(e model.EmployeeMetric) bool {
		return e.OpenTasks > cfg.OverloadThreshold
	})
	if len(list) == 0 {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindWarning,
		Category:    model.InsightResource,
		Title:       "Overloaded employees",
		Description: fmt.Sprintf("%d employees have more than %d open tasks", len(list), cfg.OverloadThreshold),
		Impact:      model.ImpactTierHigh,
		Actionable:  true,
		Recommendations: []string{
			"Redistribute work to other team members",
			"Consider hiring additional staff",
			"Defer low-priority tasks",
		},
		Data: map[string]any{DataOverloaded: list},
	}
}

func underutilized(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	list := names(s.Employees, func(e model.EmployeeMetric) bool {
		return e.OpenTasks < cfg.UnderutilizedThreshold
	})
	if len(list) == 0 {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindOpportunity,
		Category:    model.InsightResource,
		Title:       "Underutilized capacity",
		Description: fmt.Sprintf("%d employees have fewer than %d open tasks", len(list), cfg.UnderutilizedThreshold),
		Impact:      model.ImpactTierMedium,
		Actionable:  true,
		Recommendations: []string{
			"Assign more tasks to these employees",
			"Offer training in new skills",
			"Consider starting a new project",
		},
		Data: map[string]any{DataUnderutilized: list},
	}
}

func lowCompletion(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	if s.CompletionRate >= cfg.LowCompletionThreshold {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindWarning,
		Category:    model.InsightProcess,
		Title:       "Low completion rate",
		Description: fmt.Sprintf("Task completion rate is %.1f%%, below the %.0f%% target", s.CompletionRate, cfg.LowCompletionThreshold),
		Impact:      model.ImpactTierHigh,
		Actionable:  true,
		Recommendations: []string{
			"Review the current workflow",
			"Identify bottlenecks in the process",
			"Run time management training",
			"Reduce the number of tasks in progress at once",
		},
	}
}

func highCompletion(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	if s.CompletionRate <= cfg.HighCompletionThreshold {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindOptimization,
		Category:    model.InsightProcess,
		Title:       "Excellent completion rate",
		Description: fmt.Sprintf("The team is sustaining a %.1f%% completion rate", s.CompletionRate),
		Impact:      model.ImpactTierMedium,
		Actionable:  true,
		Recommendations: []string{
			"Share practices with other teams",
			"Consider increasing capacity",
			"Replicate the current process",
		},
	}
}

func skillGap(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	total := len(s.Employees)
	if total == 0 {
		return nil
	}
	juniors := 0
	for _, e := range s.Employees {
		if e.ExperienceMonths < cfg.JuniorExperienceMonths {
			juniors++
		}
	}
	share := float64(juniors) / float64(total)
	if share <= cfg.SkillGapShare {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindOpportunity,
		Category:    model.InsightTeam,
		Title:       "Training and development opportunity",
		Description: fmt.Sprintf("%.0f%% of the team has less than %.0f months of experience", math.Round(share*100), cfg.JuniorExperienceMonths),
		Impact:      model.ImpactTierMedium,
		Actionable:  true,
		Recommendations: []string{
			"Set up a mentorship program",
			"Schedule training sessions",
			"Pair juniors with senior members",
			"Provide learning resources",
		},
	}
}

func budget(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	if s.BudgetUtilization <= cfg.BudgetWarningThreshold {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindWarning,
		Category:    model.InsightBudget,
		Title:       "Budget nearly exhausted",
		Description: fmt.Sprintf("%.1f%% of the project budget has been used", s.BudgetUtilization),
		Impact:      model.ImpactTierHigh,
		Actionable:  true,
		Recommendations: []string{
			"Review unnecessary expenses",
			"Optimize processes to reduce cost",
			"Consider requesting additional budget",
			"Defer non-critical features",
		},
	}
}

func taskComplexity(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	if s.AvgTaskHours <= cfg.ComplexTaskHoursThreshold {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindOptimization,
		Category:    model.InsightProcess,
		Title:       "Tasks are too large",
		Description: fmt.Sprintf("Average task duration is %.1f hours", s.AvgTaskHours),
		Impact:      model.ImpactTierMedium,
		Actionable:  true,
		Recommendations: []string{
			"Split tasks into subtasks",
			"Improve the task breakdown process",
			"Adopt shorter iterations",
			"Review estimation accuracy",
		},
	}
}

func topPerformers(s model.TeamSnapshot, cfg scoring.Config) *model.PerformanceInsight {
	list := names(s.Employees, func(e model.EmployeeMetric) bool {
		return e.CompletionRate > cfg.TopPerformerCompletion && e.ExperienceMonths > cfg.TopPerformerExperience
	})
	if len(list) == 0 {
		return nil
	}
	return &model.PerformanceInsight{
		Kind:        model.KindOptimization,
		Category:    model.InsightTeam,
		Title:       "Recognize top performers",
		Description: fmt.Sprintf("%d employees are performing exceptionally", len(list)),
		Impact:      model.ImpactTierLow,
		Actionable:  true,
		Recommendations: []string{
			"Recognize and reward their work",
			"Consider them for promotion",
			"Give them mentoring roles",
			"Offer new responsibilities and challenges",
		},
		Data: map[string]any{DataTopPerformers: list},
	}
}
