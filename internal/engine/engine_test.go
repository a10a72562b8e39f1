package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/insight"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/scoring"
	"github.com/Veraticus/pulse/internal/service"
	"github.com/Veraticus/pulse/internal/sheets"
	"github.com/Veraticus/pulse/internal/testutil"
)

func newTestEngine(t *testing.T, store service.Storage, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{
		WithClock(func() time.Time { return testutil.Now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	e, err := New(store, scoring.DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func seededNotifications() []model.Notification {
	action := &model.Action{URL: "", Type: "navigate"}
	return []model.Notification{
		testutil.NewNotification("a1").Alert().Build(),
		testutil.NewNotification("i1").Age(2 * time.Hour).Build(),
		testutil.NewNotification("d1").Category(model.CategoryDeadline).Age(30 * time.Hour).Build(),
		func() model.Notification {
			n := testutil.NewNotification("t1").Category(model.CategoryTask).Read().Build()
			n.Action = action
			return n
		}(),
		testutil.NewNotification("x1").Owner("u2").Alert().Build(),
	}
}

func ids(feed prioritize.Feed) []string {
	out := make([]string, len(feed))
	for i, n := range feed {
		out[i] = n.ID
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := New(nil, scoring.DefaultConfig())
	require.ErrorIs(t, err, common.ErrInvalidInput)

	db := testutil.SetupTestDB(t)
	bad := scoring.DefaultConfig()
	bad.RiskHighFrom = bad.RiskCriticalFrom
	_, err = New(db.Storage, bad)
	require.ErrorIs(t, err, common.ErrInvalidConfig)

	e, err := New(db.Storage, scoring.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderRuleBased, e.advisor.Provider())
}

func TestEngine_Feed(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	tests := []struct {
		name   string
		owner  string
		want   []string
		filter prioritize.Filter
	}{
		{name: "all for owner", owner: "u1", want: []string{"a1", "t1", "i1", "d1"}},
		{name: "unread", owner: "u1", filter: prioritize.Filter{UnreadOnly: true}, want: []string{"a1", "i1", "d1"}},
		{name: "urgent", owner: "u1", filter: prioritize.Filter{UrgentOnly: true}, want: []string{"a1", "t1"}},
		{name: "urgent unread", owner: "u1", filter: prioritize.Filter{UrgentOnly: true, UnreadOnly: true}, want: []string{"a1"}},
		{name: "category", owner: "u1", filter: prioritize.Filter{Category: model.CategoryDeadline}, want: []string{"d1"}},
		{name: "top two", owner: "u1", filter: prioritize.Filter{Limit: 2}, want: []string{"a1", "t1"}},
		{name: "other owner", owner: "u2", want: []string{"x1"}},
		{name: "unknown owner", owner: "nobody", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := e.Feed(ctx, tt.owner, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(feed))
		})
	}
}

func TestEngine_Feed_AllOwnersUsesStoredReadFlag(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)

	feed, err := e.Feed(context.Background(), "", prioritize.Filter{UnreadOnly: true})
	require.NoError(t, err)
	assert.NotContains(t, ids(feed), "t1")
	assert.Len(t, feed, 4)
}

func TestEngine_Counts(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)

	counts, err := e.Counts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, 3, counts.Unread)
	assert.Equal(t, 2, counts.Urgent)
	assert.Equal(t, 1, counts.ByCategory[model.CategoryAlert])
	assert.Equal(t, 1, counts.ByCategory[model.CategoryInfo])
}

func TestEngine_ReadState(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	require.NoError(t, e.MarkRead(ctx, "a1"))
	feed, err := e.Feed(ctx, "u1", prioritize.Filter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "d1"}, ids(feed))

	n, err := e.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	counts, err := e.Counts(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, counts.Unread)

	err = e.MarkRead(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEngine_Notify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	err := e.Notify(ctx, &model.Notification{OwnerID: "u1", Category: model.CategoryInfo})
	require.ErrorIs(t, err, common.ErrInvalidInput)
	require.ErrorIs(t, e.Notify(ctx, nil), common.ErrInvalidInput)

	n := &model.Notification{OwnerID: "u1", Category: "mystery", Title: "Something happened"}
	require.NoError(t, e.Notify(ctx, n))
	assert.NotEmpty(t, n.ID)
	assert.True(t, n.CreatedAt.Equal(testutil.Now))

	feed, err := e.Feed(ctx, "u1", prioritize.Filter{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, 50+scoring.DefaultCategoryWeight+10, feed[0].Priority)
}

func TestEngine_DeleteNotification(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	require.NoError(t, e.DeleteNotification(ctx, "d1"))
	assert.ErrorIs(t, e.DeleteNotification(ctx, "d1"), common.ErrNotFound)

	feed, err := e.Feed(ctx, "u1", prioritize.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "t1", "i1"}, ids(feed))
}

func teamFixtures() ([]model.EmployeeMetric, []model.TaskRequirement) {
	steady := testutil.Employee("e1", "Ada")
	star := testutil.Employee("e2", "Grace")
	star.CompletionRate = 95
	star.ExperienceMonths = 30
	star.OpenTasks = 1
	star.AvailableHours = 40
	struggling := testutil.Employee("e3", "Linus")
	struggling.CompletionRate = 60
	struggling.OpenTasks = 9
	struggling.AttendanceRate = 60
	struggling.AvgDailyHours = 12

	tomorrow := testutil.Now.Add(24 * time.Hour)
	inThreeDays := testutil.Now.Add(72 * time.Hour)

	risky := testutil.Task("r1", 16)
	risky.Complexity = model.ComplexityComplex
	risky.AssigneeID = "e3"
	risky.Deadline = &tomorrow

	calm := testutil.Task("r2", 4)

	orphan := testutil.Task("r3", 8)
	orphan.AssigneeID = "ghost"
	orphan.Deadline = &inThreeDays

	return []model.EmployeeMetric{steady, star, struggling}, []model.TaskRequirement{risky, calm, orphan}
}

func TestEngine_Recommend(t *testing.T) {
	employees, tasks := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees, Tasks: tasks})
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	recs, err := e.Recommend(ctx, "r2", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "e2", recs[0].EmployeeID)
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
	assert.False(t, recs[0].ProjectedCompletion.Before(testutil.Now))

	_, err = e.Recommend(ctx, "missing", 2)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = e.RecommendFor(ctx, model.TaskRequirement{ID: "bad"}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidTask)
}

func TestEngine_AssessRisks(t *testing.T) {
	employees, tasks := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees, Tasks: tasks})
	e := newTestEngine(t, db.Storage)

	assessments, err := e.AssessRisks(context.Background(), service.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, assessments, 3)

	order := []string{assessments[0].Task.ID, assessments[1].Task.ID, assessments[2].Task.ID}
	assert.Equal(t, []string{"r1", "r3", "r2"}, order)
	assert.Greater(t, assessments[0].Risk.Score, assessments[1].Risk.Score)
	assert.Equal(t, 15, assessments[1].Risk.Score)
	assert.Equal(t, model.RiskLow, assessments[2].Risk.Level)
	assert.Empty(t, assessments[2].Risk.Factors)
}

func TestEngine_AssessTask(t *testing.T) {
	employees, tasks := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees, Tasks: tasks})
	e := newTestEngine(t, db.Storage)
	ctx := context.Background()

	a, err := e.AssessTask(ctx, "r1")
	require.NoError(t, err)
	assert.Contains(t, a.Risk.Factors, "Task is complex")
	assert.NotEmpty(t, a.Risk.Mitigations)

	ghost, err := e.AssessTask(ctx, "r3")
	require.NoError(t, err)
	assert.Equal(t, 15, ghost.Risk.Score)

	_, err = e.AssessTask(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEngine_TeamHealth(t *testing.T) {
	employees, _ := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees})
	e := newTestEngine(t, db.Storage)

	health, err := e.TeamHealth(context.Background())
	require.NoError(t, err)
	require.Len(t, health, 3)
	assert.Equal(t, "e3", health[0].EmployeeID)
	assert.Len(t, health[0].Factors, 3)
	for i := 1; i < len(health); i++ {
		assert.LessOrEqual(t, health[i-1].Composite, health[i].Composite)
	}
}

func TestEngine_Insights(t *testing.T) {
	employees, tasks := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees, Tasks: tasks})
	e := newTestEngine(t, db.Storage)

	insights, err := e.Insights(context.Background())
	require.NoError(t, err)

	var checks []string
	for _, in := range insights {
		checks = append(checks, in.Check)
	}
	assert.Contains(t, checks, insight.CheckOverloaded)
}

func TestEngine_CompanyContext(t *testing.T) {
	yesterday := testutil.Now.Add(-24 * time.Hour)
	done := testutil.Task("done", 4)
	done.Done = true
	done.Deadline = &yesterday
	overdue := testutil.Task("late", 4)
	overdue.Deadline = &yesterday
	open := testutil.Task("open", 4)

	idle := testutil.Employee("e1", "Ada")
	idle.OpenTasks = 0
	busy := testutil.Employee("e2", "Grace")

	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Employees: []model.EmployeeMetric{idle, busy},
		Tasks:     []model.TaskRequirement{done, overdue, open},
	})
	e := newTestEngine(t, db.Storage)

	company, err := e.CompanyContext(context.Background(), []model.PerformanceInsight{
		{Kind: model.KindWarning, Title: "Overloaded employees"},
		{Kind: model.KindOpportunity, Title: "Top performers"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, company.TotalTasks)
	assert.Equal(t, 1, company.CompletedTasks)
	assert.Equal(t, 1, company.OverdueTasks)
	assert.Equal(t, 2, company.TeamSize)
	assert.Equal(t, 1, company.ActiveMembers)
	assert.InDelta(t, 33.33, company.CompletionRate, 0.01)
	assert.Equal(t, []string{"Overloaded employees"}, company.RecentIssues)
}

type stubAdvisor struct {
	err     error
	company llm.CompanyContext
	calls   int
}

func (s *stubAdvisor) Analyze(_ context.Context, company llm.CompanyContext) (llm.Response, error) {
	s.calls++
	s.company = company
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Content: "focus on workload", Provider: "stub"}, nil
}

func (s *stubAdvisor) Provider() string { return "stub" }

func TestEngine_Analyze(t *testing.T) {
	employees, tasks := teamFixtures()
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Employees: employees, Tasks: tasks})

	t.Run("custom advisor", func(t *testing.T) {
		advisor := &stubAdvisor{}
		e := newTestEngine(t, db.Storage, WithAdvisor(advisor))

		resp, insights, err := e.Analyze(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "focus on workload", resp.Content)
		assert.NotEmpty(t, insights)
		assert.Equal(t, 1, advisor.calls)
		assert.Equal(t, 3, advisor.company.TotalTasks)
	})

	t.Run("advisor failure", func(t *testing.T) {
		advisor := &stubAdvisor{err: errors.New("boom")}
		e := newTestEngine(t, db.Storage, WithAdvisor(advisor))

		_, insights, err := e.Analyze(context.Background())
		require.Error(t, err)
		assert.NotEmpty(t, insights)
	})

	t.Run("rule-based default", func(t *testing.T) {
		e := newTestEngine(t, db.Storage)

		resp, _, err := e.Analyze(context.Background())
		require.NoError(t, err)
		assert.Equal(t, llm.ProviderRuleBased, resp.Provider)
		assert.NotEmpty(t, resp.Content)
	})
}

func TestEngine_Summarize(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	e := newTestEngine(t, db.Storage)

	summary, err := e.Summarize(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", summary.OwnerID)
	assert.True(t, summary.GeneratedAt.Equal(testutil.Now))
	assert.Equal(t, []string{"a1"}, ids(summary.Urgent))
	assert.Equal(t, 4, summary.Counts.Total)
	assert.NotNil(t, summary.Insights)
}

func TestEngine_ExportReport(t *testing.T) {
	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{Notifications: seededNotifications()})
	ctx := context.Background()

	e := newTestEngine(t, db.Storage)
	require.ErrorIs(t, e.ExportReport(ctx, "u1"), common.ErrMissingConfig)

	writer := sheets.NewMockWriter()
	e = newTestEngine(t, db.Storage, WithReportWriter(writer))
	require.NoError(t, e.ExportReport(ctx, "u1"))
	assert.Equal(t, 1, writer.InsightCalls)
	assert.Equal(t, 1, writer.FeedCalls)
	assert.Equal(t, []string{"a1", "t1", "i1", "d1"}, ids(writer.LastFeed))

	writer.Err = errors.New("quota exceeded")
	err := e.ExportReport(ctx, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestEngine_Forecast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	for i, v := range []float64{100, 110, 120, 130, 140} {
		require.NoError(t, db.Storage.AppendMetric(ctx, model.MetricPoint{
			Metric:     "revenue",
			Value:      v,
			RecordedAt: testutil.Now.AddDate(0, 0, i),
		}))
	}
	e := newTestEngine(t, db.Storage)

	fc, err := e.Forecast(ctx, "revenue", 10)
	require.NoError(t, err)
	assert.Equal(t, "revenue", fc.Metric)
	assert.Equal(t, []float64{100, 110, 120, 130, 140}, fc.Forecast.Actual)
	assert.InDelta(t, 10, fc.Forecast.Slope, 1e-9)
	assert.Equal(t, 100, fc.Forecast.Confidence)
	assert.Len(t, fc.MovingAverage, 5)
	assert.Empty(t, fc.Anomalies)
	assert.InDelta(t, 40, fc.GrowthRate, 1e-9)

	_, err = e.Forecast(ctx, "missing", 10)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
