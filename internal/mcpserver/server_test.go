package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/scoring"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer() *Server {
	return New(scoring.DefaultConfig(), "test", func() time.Time { return testNow }, nil)
}

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCP().GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func TestNew_RegistersTools(t *testing.T) {
	tools := newTestServer().MCP().ListTools()

	for _, name := range []string{ToolPrioritize, ToolRecommend, ToolTaskRisk, ToolInsights, ToolForecast} {
		assert.Contains(t, tools, name)
	}
	assert.Len(t, tools, 5)
}

func TestPrioritize(t *testing.T) {
	s := newTestServer()
	notifications := []any{
		map[string]any{"id": "i1", "category": "info", "title": "Summary", "created_at": "2026-03-10T10:00:00Z"},
		map[string]any{"id": "a1", "category": "alert", "title": "Stock low", "created_at": "2026-03-10T11:50:00Z"},
		map[string]any{"id": "s1", "category": "info", "title": "Stale", "created_at": "garbage", "read": true},
	}

	tests := []struct {
		args    map[string]any
		name    string
		wantIDs []string
	}{
		{
			name:    "ranked",
			args:    map[string]any{"notifications": notifications},
			wantIDs: []string{"a1", "i1", "s1"},
		},
		{
			name:    "urgent only",
			args:    map[string]any{"notifications": notifications, "urgent_only": true},
			wantIDs: []string{"a1"},
		},
		{
			name:    "unread info",
			args:    map[string]any{"notifications": notifications, "unread_only": true, "category": "info"},
			wantIDs: []string{"i1"},
		},
		{
			name:    "limit",
			args:    map[string]any{"notifications": notifications, "limit": 2},
			wantIDs: []string{"a1", "i1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decode[PrioritizeResult](t, call(t, s, ToolPrioritize, tt.args))

			ids := make([]string, len(out.Feed))
			for i, n := range out.Feed {
				ids[i] = n.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, 3, out.Counts.Total)
			assert.Equal(t, 2, out.Counts.Unread)
			assert.Equal(t, 1, out.Counts.Urgent)
		})
	}
}

func TestPrioritize_Scores(t *testing.T) {
	out := decode[PrioritizeResult](t, call(t, newTestServer(), ToolPrioritize, map[string]any{
		"notifications": []any{
			map[string]any{"id": "a1", "category": "alert", "title": "Stock low", "created_at": "2026-03-10T11:50:00Z"},
			map[string]any{"id": "s1", "category": "info", "title": "Stale"},
		},
	}))

	require.Len(t, out.Feed, 2)
	assert.Equal(t, 90, out.Feed[0].Priority)
	assert.True(t, out.Feed[0].Urgent)
	assert.Equal(t, 40, out.Feed[1].Priority)
}

func TestPrioritize_Deduplicate(t *testing.T) {
	out := decode[PrioritizeResult](t, call(t, newTestServer(), ToolPrioritize, map[string]any{
		"deduplicate": true,
		"notifications": []any{
			map[string]any{"id": "n1", "category": "task", "title": "Old", "created_at": "2026-03-10T08:00:00Z"},
			map[string]any{"id": "n1", "category": "task", "title": "New", "created_at": "2026-03-10T11:00:00Z"},
		},
	}))

	require.Len(t, out.Feed, 1)
	assert.Equal(t, "New", out.Feed[0].Title)
}

func TestPrioritize_ExplicitNow(t *testing.T) {
	out := decode[PrioritizeResult](t, call(t, newTestServer(), ToolPrioritize, map[string]any{
		"now": "2026-03-12T12:00:00Z",
		"notifications": []any{
			map[string]any{"id": "a1", "category": "alert", "title": "Stock low", "created_at": "2026-03-10T11:50:00Z"},
		},
	}))

	require.Len(t, out.Feed, 1)
	assert.Equal(t, 65, out.Feed[0].Priority)
	assert.False(t, out.Feed[0].Urgent)
}

func TestPrioritize_BadArguments(t *testing.T) {
	s := newTestServer()

	res := call(t, s, ToolPrioritize, map[string]any{"notifications": "not a list"})
	assert.True(t, res.IsError)

	res = call(t, s, ToolPrioritize, map[string]any{"now": "whenever", "notifications": []any{}})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "invalid now")
}

func TestRecommend(t *testing.T) {
	s := newTestServer()
	employees := []any{
		map[string]any{
			"id": "e1", "name": "Junior", "experience_months": 3, "completion_rate": 60,
			"open_tasks": 9, "available_hours": 10, "avg_task_hours": 8,
		},
		map[string]any{
			"id": "e2", "name": "Senior", "experience_months": 48, "completion_rate": 95,
			"open_tasks": 2, "available_hours": 35, "avg_task_hours": 4,
		},
	}
	task := map[string]any{"priority": "high", "complexity": "complex", "estimated_hours": 10}

	recs := decode[[]model.AssignmentRecommendation](t, call(t, s, ToolRecommend, map[string]any{
		"employees": employees,
		"task":      task,
		"top_n":     1,
	}))
	require.Len(t, recs, 1)
	assert.Equal(t, "e2", recs[0].EmployeeID)
	assert.NotEmpty(t, recs[0].Reasons)
	assert.True(t, recs[0].ProjectedCompletion.After(testNow))

	all := decode[[]model.AssignmentRecommendation](t, call(t, s, ToolRecommend, map[string]any{
		"employees": employees,
		"task":      task,
	}))
	assert.Len(t, all, 2)
}

func TestRecommend_Errors(t *testing.T) {
	tests := []struct {
		args map[string]any
		name string
	}{
		{
			name: "no estimate",
			args: map[string]any{
				"employees": []any{map[string]any{"id": "e1"}},
				"task":      map[string]any{"priority": "low", "complexity": "simple"},
			},
		},
		{
			name: "employee without id",
			args: map[string]any{
				"employees": []any{map[string]any{"name": "Nobody"}},
				"task":      map[string]any{"priority": "low", "complexity": "simple", "estimated_hours": 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, newTestServer(), ToolRecommend, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), "cannot recommend assignees")
		})
	}
}

func TestTaskRisk(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		args        map[string]any
		name        string
		wantLevel   model.RiskLevel
		wantScore   int
		wantFactors int
	}{
		{
			name: "explicit days",
			args: map[string]any{
				"task":                map[string]any{"complexity": "complex", "priority": "medium", "estimated_hours": 5},
				"days_until_deadline": 1,
			},
			wantLevel:   model.RiskMedium,
			wantScore:   45,
			wantFactors: 2,
		},
		{
			name: "deadline from the task",
			args: map[string]any{
				"task": map[string]any{
					"complexity": "simple", "priority": "low", "estimated_hours": 2,
					"deadline": "2026-03-13T12:00:00Z",
				},
			},
			wantLevel:   model.RiskLow,
			wantScore:   15,
			wantFactors: 1,
		},
		{
			name: "struggling assignee",
			args: map[string]any{
				"task":     map[string]any{"complexity": "complex", "priority": "medium", "estimated_hours": 5},
				"assignee": map[string]any{"id": "e1", "completion_rate": 50, "open_tasks": 10, "experience_months": 2},
			},
			wantLevel:   model.RiskCritical,
			wantScore:   75,
			wantFactors: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := decode[model.TaskRisk](t, call(t, s, ToolTaskRisk, tt.args))

			assert.Equal(t, tt.wantLevel, risk.Level)
			assert.Equal(t, tt.wantScore, risk.Score)
			assert.Len(t, risk.Factors, tt.wantFactors)
			assert.NotEmpty(t, risk.Mitigations)
		})
	}
}

func TestInsights(t *testing.T) {
	insights := decode[[]model.PerformanceInsight](t, call(t, newTestServer(), ToolInsights, map[string]any{
		"snapshot": map[string]any{
			"employees": []any{
				map[string]any{"id": "e1", "name": "Ada", "open_tasks": 12, "completion_rate": 90},
			},
			"completion_rate": 90,
		},
	}))

	titles := make([]string, len(insights))
	for i, in := range insights {
		titles[i] = in.Title
	}
	assert.Contains(t, titles, "Overloaded employees")
}

func TestForecast(t *testing.T) {
	out := decode[ForecastResult](t, call(t, newTestServer(), ToolForecast, map[string]any{
		"values":       []any{10, 12, 14, 16, 18},
		"horizon_days": 5,
		"window":       3,
	}))

	assert.Equal(t, "up", string(out.Forecast.Trend))
	assert.InDelta(t, 28.0, out.Forecast.Horizon, 1e-9)
	assert.Equal(t, 100, out.Forecast.Confidence)
	assert.Empty(t, out.Anomalies)
	assert.Len(t, out.MovingAverage, 5)
	assert.InDelta(t, 80.0, out.GrowthRate, 1e-9)
}

func TestForecast_ShortSeries(t *testing.T) {
	out := decode[ForecastResult](t, call(t, newTestServer(), ToolForecast, map[string]any{
		"values": []any{7},
	}))

	assert.Equal(t, 0, out.Forecast.Confidence)
	assert.InDelta(t, 7.0, out.Forecast.Horizon, 1e-9)
	assert.Equal(t, 30, out.Forecast.HorizonDays)
}
