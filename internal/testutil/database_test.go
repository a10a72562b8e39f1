package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
)

func TestSetupTestDBWithOptions(t *testing.T) {
	var customRan bool
	db := SetupTestDBWithOptions(t, TestDBOptions{
		Notifications: []model.Notification{
			NewNotification("n1").Alert().Build(),
			NewNotification("n2").Owner("u2").Age(48 * time.Hour).Read().Build(),
		},
		Employees: []model.EmployeeMetric{Employee("e1", "Ada")},
		Tasks:     []model.TaskRequirement{Task("t1", 8)},
		CustomSetup: func(ctx context.Context, s service.Storage) error {
			customRan = true
			return s.SaveBudget(ctx, &model.Budget{Name: "Ops", Allocated: 10})
		},
	})
	ctx := context.Background()

	assert.True(t, customRan)

	n, err := db.Storage.GetNotification(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAlert, n.Category)
	assert.True(t, n.CreatedAt.Equal(Now))

	n, err = db.Storage.GetNotification(ctx, "n2")
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, "u2", n.OwnerID)

	employees, err := db.Storage.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	task, err := db.Storage.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.InDelta(t, 8, task.EstimatedHours, 1e-9)
}

func TestNotificationBuilder_NoTimestamp(t *testing.T) {
	n := NewNotification("n1").Category(model.CategoryTask).NoTimestamp().Build()
	assert.False(t, n.HasTimestamp())
	assert.Equal(t, model.CategoryTask, n.Category)
	assert.Equal(t, "u1", n.OwnerID)
}
