package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/snapshot"
)

const testSnapshot = `
employees:
  - id: e1
    name: Ada
    experience_months: 30
    completion_rate: 92
    open_tasks: 3
    available_hours: 35
    avg_task_hours: 5
    attendance_rate: 97
    avg_daily_hours: 8
tasks:
  - id: t1
    title: Ship release
    assignee_id: e1
    priority: high
    complexity: moderate
    required_skills: [go]
    estimated_hours: 12
notifications:
  - id: n1
    owner_id: u1
    category: alert
    title: Stock low
    created_at: 2026-03-10T08:30:00Z
  - id: n2
    owner_id: u1
    category: info
    title: Weekly summary
    created_at: 2026-03-10T09:00:00Z
metrics:
  revenue:
    - at: 2026-03-01
      value: 100
    - at: 2026-03-02
      value: 110
    - at: 2026-03-03
      value: 120
    - at: 2026-03-04
      value: 130
`

// setConfig overrides a viper key for the duration of the test.
func setConfig(t *testing.T, key string, value any) {
	t.Helper()
	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}

func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// importTestSnapshot points the CLI at a fresh database and loads testSnapshot into it.
func importTestSnapshot(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))

	setConfig(t, "database.path", filepath.Join(dir, "pulse.db"))
	setConfig(t, "import.no_progress", true)
	setConfig(t, "import.dry_run", false)
	setConfig(t, "output.format", formatJSON)
	setConfig(t, "owner", "")

	cmd, out := newTestCommand(t)
	require.NoError(t, runImport(cmd, []string{path}))
	require.Contains(t, out.String(), "Imported 8 records")
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    model.Category
		wantErr bool
	}{
		{name: "empty means all", in: "", want: ""},
		{name: "known", in: "alert", want: model.CategoryAlert},
		{name: "case and space", in: " Payment ", want: model.CategoryPayment},
		{name: "unknown", in: "memo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCategory(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidInput)
				assert.Contains(t, err.Error(), "inventory")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProvider(t *testing.T) {
	got, err := parseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, "openai", got)

	_, err = parseProvider("ollama")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = parseProvider("rulebased")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestReadPipedKey(t *testing.T) {
	key, ok, err := readPipedKey(strings.NewReader("  sk-test\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-test", key)

	_, ok, err = readPipedKey(strings.NewReader("\n"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
	assert.Empty(t, firstNonEmpty())
}

func TestListFilter(t *testing.T) {
	setConfig(t, "notifications.category", "task")
	setConfig(t, "notifications.unread", true)
	setConfig(t, "notifications.urgent", false)
	setConfig(t, "notifications.limit", -3)

	filter, err := listFilter()
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTask, filter.Category)
	assert.True(t, filter.UnreadOnly)
	assert.Zero(t, filter.Limit)

	setConfig(t, "notifications.category", "bogus")
	_, err = listFilter()
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	table := func(w io.Writer) error {
		_, err := io.WriteString(w, "table view")
		return err
	}

	setConfig(t, "output.format", formatTable)
	cmd, out := newTestCommand(t)
	require.NoError(t, render(cmd, map[string]int{"n": 1}, table))
	assert.Equal(t, "table view", out.String())

	setConfig(t, "output.format", formatJSON)
	cmd, out = newTestCommand(t)
	require.NoError(t, render(cmd, map[string]int{"n": 1}, table))
	assert.JSONEq(t, `{"n": 1}`, out.String())
}

func TestImport_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0o600))
	setConfig(t, "database.path", filepath.Join(dir, "pulse.db"))
	setConfig(t, "import.dry_run", true)

	cmd, out := newTestCommand(t)
	require.NoError(t, runImport(cmd, []string{path}))

	assert.Contains(t, out.String(), "Dry run mode")
	assert.Contains(t, out.String(), "metric points: 4")
	assert.NoFileExists(t, filepath.Join(dir, "pulse.db"))
}

func TestImport_MissingFile(t *testing.T) {
	setConfig(t, "import.dry_run", false)
	cmd, _ := newTestCommand(t)
	err := runImport(cmd, []string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "failed to load snapshot")
}

func TestSnapshotCounts(t *testing.T) {
	f, err := snapshot.Parse([]byte(testSnapshot))
	require.NoError(t, err)

	res := snapshotCounts(f)
	assert.Equal(t, snapshot.Result{Notifications: 2, Employees: 1, Tasks: 1, Metrics: 4}, res)
	assert.Equal(t, f.Len(), res.Total())
}

func TestNotificationsHelp(t *testing.T) {
	long := notificationsCmd().Long
	assert.Contains(t, long, "ranked by category, age and follow-up action")
	assert.NotContains(t, long, "read state")
}

func TestNotificationCommands(t *testing.T) {
	importTestSnapshot(t)
	setConfig(t, "owner", "u1")
	setConfig(t, "notifications.category", "")
	setConfig(t, "notifications.unread", false)
	setConfig(t, "notifications.urgent", false)
	setConfig(t, "notifications.limit", 0)

	cmd, out := newTestCommand(t)
	require.NoError(t, runNotificationsList(cmd, nil))
	var feed []model.ScoredNotification
	require.NoError(t, json.Unmarshal(out.Bytes(), &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, "n1", feed[0].ID, "alerts outrank info")

	cmd, out = newTestCommand(t)
	require.NoError(t, notificationsReadCmd().RunE(cmd, []string{"n1"}))
	assert.Contains(t, out.String(), "Marked 1 notifications read")

	cmd, out = newTestCommand(t)
	require.NoError(t, notificationsCountsCmd().RunE(cmd, nil))
	var counts struct {
		Total  int `json:"total"`
		Unread int `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &counts))
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Unread)

	cmd, out = newTestCommand(t)
	require.NoError(t, notificationsReadAllCmd().RunE(cmd, nil))
	assert.Contains(t, out.String(), "Marked 1 notifications read")

	cmd, out = newTestCommand(t)
	require.NoError(t, notificationsReadAllCmd().RunE(cmd, nil))
	assert.Contains(t, out.String(), "Nothing unread")

	cmd, _ = newTestCommand(t)
	require.NoError(t, notificationsDeleteCmd().RunE(cmd, []string{"n2"}))

	cmd, out = newTestCommand(t)
	require.NoError(t, runNotificationsList(cmd, nil))
	feed = nil
	require.NoError(t, json.Unmarshal(out.Bytes(), &feed))
	require.Len(t, feed, 1)
}

func TestTeamCommands(t *testing.T) {
	importTestSnapshot(t)
	setConfig(t, "recommend.top", 3)
	setConfig(t, "risk.assignee", "")
	setConfig(t, "risk.all", false)

	cmd, out := newTestCommand(t)
	require.NoError(t, runRecommend(cmd, []string{"t1"}))
	var recs []model.AssignmentRecommendation
	require.NoError(t, json.Unmarshal(out.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada", recs[0].EmployeeName)

	cmd, out = newTestCommand(t)
	require.NoError(t, runRisk(cmd, nil))
	var assessments []engine.TaskAssessment
	require.NoError(t, json.Unmarshal(out.Bytes(), &assessments))
	require.Len(t, assessments, 1)
	assert.Equal(t, "t1", assessments[0].Task.ID)

	cmd, out = newTestCommand(t)
	require.NoError(t, runRisk(cmd, []string{"t1"}))
	assert.Contains(t, out.String(), `"risk_level"`)

	cmd, out = newTestCommand(t)
	require.NoError(t, healthCmd().RunE(cmd, nil))
	assert.Contains(t, out.String(), "Ada")

	cmd, _ = newTestCommand(t)
	assert.Error(t, runRecommend(cmd, []string{"missing"}))

	setConfig(t, "recommend.top", 0)
	cmd, _ = newTestCommand(t)
	assert.ErrorIs(t, runRecommend(cmd, []string{"t1"}), common.ErrInvalidInput)
}

func TestForecastCommand(t *testing.T) {
	importTestSnapshot(t)
	setConfig(t, "forecast.horizon", 7)

	cmd, out := newTestCommand(t)
	require.NoError(t, runForecast(cmd, []string{"revenue"}))
	var f engine.MetricForecast
	require.NoError(t, json.Unmarshal(out.Bytes(), &f))
	assert.Equal(t, "revenue", f.Metric)
	assert.Equal(t, 7, f.Forecast.HorizonDays)
	assert.Equal(t, 100, f.Forecast.Confidence)
	assert.InDelta(t, 30.0, f.GrowthRate, 1e-9)

	cmd, _ = newTestCommand(t)
	assert.ErrorIs(t, runForecast(cmd, []string{"orders"}), common.ErrNotFound)
}

func TestInsightsCommand(t *testing.T) {
	importTestSnapshot(t)
	setConfig(t, "insights.ai", false)
	setConfig(t, "insights.sheets", false)
	setConfig(t, "insights.to", []string{"ops@example.com"})

	digestPath := filepath.Join(t.TempDir(), "digest.eml")
	setConfig(t, "insights.digest", digestPath)

	cmd, out := newTestCommand(t)
	require.NoError(t, runInsights(cmd, nil))
	var insights []model.PerformanceInsight
	require.NoError(t, json.Unmarshal(out.Bytes(), &insights))

	msg, err := os.ReadFile(digestPath)
	require.NoError(t, err)
	assert.Contains(t, string(msg), "To: <ops@example.com>")
	assert.Contains(t, string(msg), "Subject: Pulse digest:")
}

func TestCheckpointCommands(t *testing.T) {
	importTestSnapshot(t)
	setConfig(t, "owner", "")
	setConfig(t, "notifications.category", "")
	setConfig(t, "notifications.unread", false)
	setConfig(t, "notifications.urgent", false)
	setConfig(t, "notifications.limit", 0)

	setConfig(t, "output.format", formatTable)
	cmd, out := newTestCommand(t)
	require.NoError(t, checkpointListCmd().RunE(cmd, nil))
	assert.Contains(t, out.String(), "auto-import-", "import saves a checkpoint first")
	assert.Contains(t, out.String(), "(auto)")

	cmd, out = newTestCommand(t)
	require.NoError(t, checkpointCreateCmd().RunE(cmd, []string{"imported"}))
	assert.Contains(t, out.String(), "Saved checkpoint imported (8 records")

	cmd, _ = newTestCommand(t)
	require.NoError(t, notificationsDeleteCmd().RunE(cmd, []string{"n2"}))

	cmd, out = newTestCommand(t)
	require.NoError(t, checkpointRestoreCmd().RunE(cmd, []string{"imported"}))
	assert.Contains(t, out.String(), "Restored checkpoint imported")

	setConfig(t, "output.format", formatJSON)
	cmd, out = newTestCommand(t)
	require.NoError(t, runNotificationsList(cmd, nil))
	var feed []model.ScoredNotification
	require.NoError(t, json.Unmarshal(out.Bytes(), &feed))
	assert.Len(t, feed, 2)

	cmd, _ = newTestCommand(t)
	err := checkpointRestoreCmd().RunE(cmd, []string{"missing"})
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	cmd, _ = newTestCommand(t)
	require.NoError(t, checkpointDeleteCmd().RunE(cmd, []string{"imported"}))
}

func TestRenderCheckpoints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderCheckpoints(&buf, nil, time.Now()))
	assert.Contains(t, buf.String(), "No checkpoints.")
}

func TestVersionCommand(t *testing.T) {
	cmd, out := newTestCommand(t)
	require.NoError(t, versionCmd().RunE(cmd, nil))
	assert.Equal(t, "pulse dev\n", out.String())
}
