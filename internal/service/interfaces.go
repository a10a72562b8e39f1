// Package service defines the interfaces shared by the engine and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

// NotificationFilter defines filtering options for notification queries.
type NotificationFilter struct {
	Since      *time.Time
	OwnerID    string
	Categories []model.Category
	UnreadOnly bool
	Limit      int
	Offset     int
}

// TaskFilter defines filtering options for task queries.
type TaskFilter struct {
	AssigneeID string
	OpenOnly   bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Notification operations
	SaveNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	CountUnread(ctx context.Context, ownerID string) (int, error)
	GetReadNotificationIDs(ctx context.Context, ownerID string) ([]string, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, ownerID string, at time.Time) (int64, error)
	DeleteNotification(ctx context.Context, id string) error

	// Employee operations
	SaveEmployee(ctx context.Context, e *model.EmployeeMetric) error
	GetEmployee(ctx context.Context, id string) (*model.EmployeeMetric, error)
	ListEmployees(ctx context.Context) ([]model.EmployeeMetric, error)

	// Task operations
	SaveTask(ctx context.Context, t *model.TaskRequirement) error
	GetTask(ctx context.Context, id string) (*model.TaskRequirement, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.TaskRequirement, error)

	// Budget and metric operations
	SaveBudget(ctx context.Context, b *model.Budget) error
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	AppendMetric(ctx context.Context, p model.MetricPoint) error
	GetMetricSeries(ctx context.Context, metric string) ([]model.MetricPoint, error)

	// Aggregates
	TeamSnapshot(ctx context.Context) (model.TeamSnapshot, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReportWriter exports computed results to an external report.
type ReportWriter interface {
	WriteInsights(ctx context.Context, insights []model.PerformanceInsight) error
	WriteFeed(ctx context.Context, feed []model.ScoredNotification) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
