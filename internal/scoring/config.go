// Package scoring implements the pure scoring functions of the engine: task fit,
// recommendation confidence, notification priority, task risk and employee health.
//
// Every function is deterministic for a given Config and reference time and has no
// side effects, so callers may invoke them concurrently.
package scoring

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid scoring config")

// Config holds every tunable weight and threshold used by the scoring functions.
// DefaultConfig returns the production policy; tests override individual fields.
type Config struct {
	// Fit score weights. They sum to 1.
	SkillWeight        float64 `mapstructure:"skill_weight"`
	WorkloadWeight     float64 `mapstructure:"workload_weight"`
	CompletionWeight   float64 `mapstructure:"completion_weight"`
	AvailabilityWeight float64 `mapstructure:"availability_weight"`

	// Months of experience and open tasks at which the skill and workload sub-scores saturate.
	SkillSaturationMonths float64 `mapstructure:"skill_saturation_months"`
	WorkloadCeiling       float64 `mapstructure:"workload_ceiling"`

	UrgentMultiplier        float64 `mapstructure:"urgent_multiplier"`
	UrgentCompletionFloor   float64 `mapstructure:"urgent_completion_floor"`
	ComplexityMultiplier    float64 `mapstructure:"complexity_multiplier"`
	ComplexExperienceMonths float64 `mapstructure:"complex_experience_months"`

	// Insight thresholds.
	OverloadThreshold         int     `mapstructure:"overload_threshold"`
	UnderutilizedThreshold    int     `mapstructure:"underutilized_threshold"`
	LowCompletionThreshold    float64 `mapstructure:"low_completion_threshold"`
	HighCompletionThreshold   float64 `mapstructure:"high_completion_threshold"`
	BudgetWarningThreshold    float64 `mapstructure:"budget_warning_threshold"`
	ComplexTaskHoursThreshold float64 `mapstructure:"complex_task_hours_threshold"`
	JuniorExperienceMonths    float64 `mapstructure:"junior_experience_months"`
	SkillGapShare             float64 `mapstructure:"skill_gap_share"`
	TopPerformerCompletion    float64 `mapstructure:"top_performer_completion"`
	TopPerformerExperience    float64 `mapstructure:"top_performer_experience"`

	// Notification priority.
	PriorityBase      int     `mapstructure:"priority_base"`
	UrgentThreshold   int     `mapstructure:"urgent_threshold"`
	ActionableBonus   int     `mapstructure:"actionable_bonus"`
	FreshBonus        int     `mapstructure:"fresh_bonus"`
	RecentBonus       int     `mapstructure:"recent_bonus"`
	StalePenalty      int     `mapstructure:"stale_penalty"`
	FreshWithinHours  float64 `mapstructure:"fresh_within_hours"`
	RecentWithinHours float64 `mapstructure:"recent_within_hours"`
	StaleAfterHours   float64 `mapstructure:"stale_after_hours"`

	// Task risk tier lower bounds; must be strictly ascending.
	RiskMediumFrom   int `mapstructure:"risk_medium_from"`
	RiskHighFrom     int `mapstructure:"risk_high_from"`
	RiskCriticalFrom int `mapstructure:"risk_critical_from"`

	// Health composite tier upper bounds (exclusive); must be strictly ascending.
	HealthCriticalBelow float64 `mapstructure:"health_critical_below"`
	HealthHighBelow     float64 `mapstructure:"health_high_below"`
	HealthMediumBelow   float64 `mapstructure:"health_medium_below"`
	TargetDailyHours    float64 `mapstructure:"target_daily_hours"`

	// Projection.
	HoursPerWorkday   float64 `mapstructure:"hours_per_workday"`
	DefaultEfficiency float64 `mapstructure:"default_efficiency"`
}

// Validate checks that tier ladders are strictly ordered and weights are usable.
func (c Config) Validate() error {
	if c.SkillWeight < 0 || c.WorkloadWeight < 0 || c.CompletionWeight < 0 || c.AvailabilityWeight < 0 {
		return fmt.Errorf("%w: fit weights must be non-negative", ErrInvalidConfig)
	}
	if !(c.RiskMediumFrom < c.RiskHighFrom && c.RiskHighFrom < c.RiskCriticalFrom) {
		return fmt.Errorf("%w: risk bounds %d/%d/%d must be strictly ascending",
			ErrInvalidConfig, c.RiskMediumFrom, c.RiskHighFrom, c.RiskCriticalFrom)
	}
	if !(c.HealthCriticalBelow < c.HealthHighBelow && c.HealthHighBelow < c.HealthMediumBelow) {
		return fmt.Errorf("%w: health bounds must be strictly ascending", ErrInvalidConfig)
	}
	if c.LowCompletionThreshold > c.HighCompletionThreshold {
		return fmt.Errorf("%w: low completion threshold %.1f above high threshold %.1f",
			ErrInvalidConfig, c.LowCompletionThreshold, c.HighCompletionThreshold)
	}
	if c.HoursPerWorkday <= 0 || c.DefaultEfficiency <= 0 {
		return fmt.Errorf("%w: hours per workday and default efficiency must be positive", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns the standard scoring policy.
func DefaultConfig() Config {
	return Config{
		SkillWeight:        0.30,
		WorkloadWeight:     0.25,
		CompletionWeight:   0.25,
		AvailabilityWeight: 0.20,

		SkillSaturationMonths: 12,
		WorkloadCeiling:       10,

		UrgentMultiplier:        1.10,
		UrgentCompletionFloor:   85,
		ComplexityMultiplier:    1.15,
		ComplexExperienceMonths: 24,

		OverloadThreshold:         7,
		UnderutilizedThreshold:    2,
		LowCompletionThreshold:    75,
		HighCompletionThreshold:   90,
		BudgetWarningThreshold:    85,
		ComplexTaskHoursThreshold: 40,
		JuniorExperienceMonths:    6,
		SkillGapShare:             0.30,
		TopPerformerCompletion:    90,
		TopPerformerExperience:    12,

		PriorityBase:      50,
		UrgentThreshold:   70,
		ActionableBonus:   15,
		FreshBonus:        10,
		RecentBonus:       5,
		StalePenalty:      15,
		FreshWithinHours:  1,
		RecentWithinHours: 4,
		StaleAfterHours:   24,

		RiskMediumFrom:   30,
		RiskHighFrom:     50,
		RiskCriticalFrom: 70,

		HealthCriticalBelow: 40,
		HealthHighBelow:     60,
		HealthMediumBelow:   75,
		TargetDailyHours:    8,

		HoursPerWorkday:   8,
		DefaultEfficiency: 0.5,
	}
}
