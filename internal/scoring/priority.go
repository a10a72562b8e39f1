package scoring

import (
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

// Category addends for notification priority.
const (
	alertWeight    = 30
	deadlineWeight = 25
	approvalWeight = 20
	taskWeight     = 15
	// DefaultCategoryWeight applies to every other category, known or not.
	DefaultCategoryWeight = 5
)

// CategoryWeight returns the priority addend for a notification category.
// Categories outside the closed set fall back to DefaultCategoryWeight.
func CategoryWeight(c model.Category) int {
	switch c {
	case model.CategoryAlert:
		return alertWeight
	case model.CategoryDeadline:
		return deadlineWeight
	case model.CategoryApproval:
		return approvalWeight
	case model.CategoryTask:
		return taskWeight
	case model.CategoryOrder, model.CategoryDelivery, model.CategoryPayment,
		model.CategoryInventory, model.CategoryCustomer, model.CategoryInfo:
		return DefaultCategoryWeight
	default:
		return DefaultCategoryWeight
	}
}

// RecencyAdjustment returns the priority addend for a notification's age.
// A missing timestamp is treated as infinitely old.
func RecencyAdjustment(createdAt, now time.Time, cfg Config) int {
	if createdAt.IsZero() {
		return -cfg.StalePenalty
	}

	hours := now.Sub(createdAt).Hours()
	switch {
	case hours < cfg.FreshWithinHours:
		return cfg.FreshBonus
	case hours < cfg.RecentWithinHours:
		return cfg.RecentBonus
	case hours > cfg.StaleAfterHours:
		return -cfg.StalePenalty
	default:
		return 0
	}
}

// NotificationPriority computes the display priority of a notification in [0,100].
func NotificationPriority(n model.Notification, now time.Time, cfg Config) int {
	priority := cfg.PriorityBase + CategoryWeight(n.Category) + RecencyAdjustment(n.CreatedAt, now, cfg)
	if n.HasAction() {
		priority += cfg.ActionableBonus
	}
	return clampInt(priority, 0, 100)
}

// IsUrgent reports whether a priority crosses the urgency threshold.
func IsUrgent(priority int, cfg Config) bool {
	return priority >= cfg.UrgentThreshold
}

// ScoreNotification annotates a copy of n with priority and urgency.
func ScoreNotification(n model.Notification, now time.Time, cfg Config) model.ScoredNotification {
	priority := NotificationPriority(n, now, cfg)
	return model.ScoredNotification{
		Notification: n,
		Priority:     priority,
		Urgent:       IsUrgent(priority, cfg),
	}
}
