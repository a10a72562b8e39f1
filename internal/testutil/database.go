// Package testutil provides test databases and fixture builders for pulse tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
	"github.com/Veraticus/pulse/internal/storage"
)

// Now is the fixed reference time used by fixtures.
var Now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new migrated in-memory test database that is closed when the
// test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedNotifications(testutil.NewNotification("n1").Alert().Build())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup   func(context.Context, service.Storage) error
	Notifications []model.Notification
	Employees     []model.EmployeeMetric
	Tasks         []model.TaskRequirement
}

// SetupTestDBWithOptions creates a test database seeded from opts.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	db.SeedNotifications(opts.Notifications...)
	db.SeedEmployees(opts.Employees...)
	db.SeedTasks(opts.Tasks...)

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// SeedNotifications saves notifications or fails the test.
func (db *TestDB) SeedNotifications(records ...model.Notification) {
	db.t.Helper()
	for i := range records {
		if err := db.Storage.SaveNotification(context.Background(), &records[i]); err != nil {
			db.t.Fatalf("failed to seed notification %q: %v", records[i].ID, err)
		}
	}
}

// SeedEmployees saves employees or fails the test.
func (db *TestDB) SeedEmployees(employees ...model.EmployeeMetric) {
	db.t.Helper()
	for i := range employees {
		if err := db.Storage.SaveEmployee(context.Background(), &employees[i]); err != nil {
			db.t.Fatalf("failed to seed employee %q: %v", employees[i].ID, err)
		}
	}
}

// SeedTasks saves tasks or fails the test.
func (db *TestDB) SeedTasks(tasks ...model.TaskRequirement) {
	db.t.Helper()
	for i := range tasks {
		if err := db.Storage.SaveTask(context.Background(), &tasks[i]); err != nil {
			db.t.Fatalf("failed to seed task %q: %v", tasks[i].ID, err)
		}
	}
}

// NotificationBuilder builds notification fixtures.
type NotificationBuilder struct {
	n model.Notification
}

// NewNotification starts an unread info notification for owner "u1" created at Now.
func NewNotification(id string) *NotificationBuilder {
	return &NotificationBuilder{n: model.Notification{
		ID:        id,
		OwnerID:   "u1",
		Category:  model.CategoryInfo,
		Title:     fmt.Sprintf("Notification %s", id),
		CreatedAt: Now,
	}}
}

// Owner sets the owner.
func (b *NotificationBuilder) Owner(owner string) *NotificationBuilder {
	b.n.OwnerID = owner
	return b
}

// Category sets the category.
func (b *NotificationBuilder) Category(c model.Category) *NotificationBuilder {
	b.n.Category = c
	return b
}

// Alert is shorthand for Category(model.CategoryAlert).
func (b *NotificationBuilder) Alert() *NotificationBuilder {
	return b.Category(model.CategoryAlert)
}

// Age moves the creation time d before Now.
func (b *NotificationBuilder) Age(d time.Duration) *NotificationBuilder {
	b.n.CreatedAt = Now.Add(-d)
	return b
}

// NoTimestamp clears the creation time.
func (b *NotificationBuilder) NoTimestamp() *NotificationBuilder {
	b.n.CreatedAt = time.Time{}
	return b
}

// Read marks the notification read.
func (b *NotificationBuilder) Read() *NotificationBuilder {
	b.n.Read = true
	return b
}

// Build returns the notification.
func (b *NotificationBuilder) Build() model.Notification {
	return b.n
}

// Employee returns an employee fixture with a mid-range profile.
func Employee(id, name string) model.EmployeeMetric {
	return model.EmployeeMetric{
		ID:               id,
		Name:             name,
		ExperienceMonths: 18,
		CompletionRate:   80,
		OpenTasks:        4,
		AvailableHours:   30,
		AvgTaskHours:     6,
		AttendanceRate:   95,
		AvgDailyHours:    8,
	}
}

// Task returns a medium-priority moderate task fixture with the given estimate.
func Task(id string, hours float64) model.TaskRequirement {
	return model.TaskRequirement{
		ID:             id,
		Title:          fmt.Sprintf("Task %s", id),
		Priority:       model.PriorityMedium,
		Complexity:     model.ComplexityModerate,
		EstimatedHours: hours,
	}
}
