// Package mcpserver exposes the scoring engine as Model Context Protocol tools.
// Every tool is pure: callers pass the records to score in the arguments.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Veraticus/pulse/internal/forecast"
	"github.com/Veraticus/pulse/internal/insight"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/scoring"
)

// Tool names.
const (
	ToolPrioritize = "prioritize_notifications"
	ToolRecommend  = "recommend_assignees"
	ToolTaskRisk   = "assess_task_risk"
	ToolInsights   = "generate_insights"
	ToolForecast   = "forecast_metric"
)

// NotificationArg is a notification as passed by a tool caller.
type NotificationArg struct {
	ID        string `json:"id" jsonschema:"required,description=Unique notification id"`
	OwnerID   string `json:"owner_id" jsonschema:"description=Owner of the notification"`
	Category  string `json:"category" jsonschema:"required,description=One of order delivery payment inventory customer alert task approval deadline info"`
	Title     string `json:"title" jsonschema:"required"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at" jsonschema:"description=RFC 3339 creation time; missing or unparsable counts as stale"`
	ActionURL string `json:"action_url" jsonschema:"description=Follow-up link; makes the notification actionable"`
	Read      bool   `json:"read"`
}

// PrioritizeArgs are the arguments of prioritize_notifications.
type PrioritizeArgs struct {
	Now           string            `json:"now" jsonschema:"description=Reference time (RFC 3339); defaults to the server clock"`
	Category      string            `json:"category" jsonschema:"description=Keep only this category"`
	Notifications []NotificationArg `json:"notifications" jsonschema:"required"`
	Limit         int               `json:"limit" jsonschema:"description=Return at most this many; 0 returns all"`
	UnreadOnly    bool              `json:"unread_only"`
	UrgentOnly    bool              `json:"urgent_only"`
	Deduplicate   bool              `json:"deduplicate" jsonschema:"description=Collapse records sharing an id to the most recent"`
}

// PrioritizeResult is the result of prioritize_notifications.
type PrioritizeResult struct {
	Feed   prioritize.Feed   `json:"feed"`
	Counts prioritize.Counts `json:"counts"`
}

// RecommendArgs are the arguments of recommend_assignees.
type RecommendArgs struct {
	Now       string                 `json:"now" jsonschema:"description=Reference time (RFC 3339); defaults to the server clock"`
	Employees []model.EmployeeMetric `json:"employees" jsonschema:"required"`
	Task      model.TaskRequirement  `json:"task" jsonschema:"required"`
	TopN      int                    `json:"top_n" jsonschema:"description=Number of candidates to return; 0 returns all"`
}

// TaskRiskArgs are the arguments of assess_task_risk.
type TaskRiskArgs struct {
	Assignee          *model.EmployeeMetric `json:"assignee" jsonschema:"description=Current assignee, if any"`
	DaysUntilDeadline *float64              `json:"days_until_deadline" jsonschema:"description=Days left; omit when the task has no deadline"`
	Task              model.TaskRequirement `json:"task" jsonschema:"required"`
}

// InsightArgs are the arguments of generate_insights.
type InsightArgs struct {
	Snapshot model.TeamSnapshot `json:"snapshot" jsonschema:"required"`
}

// ForecastArgs are the arguments of forecast_metric.
type ForecastArgs struct {
	Values           []float64 `json:"values" jsonschema:"required,description=Observations in time order, one per day"`
	HorizonDays      int       `json:"horizon_days" jsonschema:"default=30"`
	AnomalyThreshold float64   `json:"anomaly_threshold" jsonschema:"default=2,description=z-score above which a point is anomalous"`
	Window           int       `json:"window" jsonschema:"default=7,description=Moving average window"`
}

// ForecastResult is the result of forecast_metric.
type ForecastResult struct {
	Forecast      forecast.Forecast `json:"forecast"`
	Anomalies     []int             `json:"anomalies"`
	MovingAverage []float64         `json:"moving_average"`
	GrowthRate    float64           `json:"growth_rate"`
}

// Server holds the MCP server and the scoring policy its tools use.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
	now    func() time.Time
	cfg    scoring.Config
}

// New builds a server with every tool registered. A nil now uses the wall clock.
func New(cfg scoring.Config, version string, now func() time.Time, logger *slog.Logger) *Server {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp: server.NewMCPServer("pulse", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions("Rank notifications, match employees to tasks, assess task risk, "+
				"generate team insights and forecast metrics. Pass the records to score in each call.")),
		cfg:    cfg,
		now:    now,
		logger: logger,
	}
	s.register()
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves the tools over stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool(ToolPrioritize,
		mcp.WithDescription("Score notifications and return them ranked by priority, newest first on ties, "+
			"with unread, urgent and per-category counts."),
		mcp.WithInputSchema[PrioritizeArgs](),
	), s.handlePrioritize)

	s.mcp.AddTool(mcp.NewTool(ToolRecommend,
		mcp.WithDescription("Rank employees for a task by fit score with confidence, reasons, "+
			"projected completion and workload impact."),
		mcp.WithInputSchema[RecommendArgs](),
	), s.handleRecommend)

	s.mcp.AddTool(mcp.NewTool(ToolTaskRisk,
		mcp.WithDescription("Assess the delivery risk of a task with contributing factors and mitigations."),
		mcp.WithInputSchema[TaskRiskArgs](),
	), s.handleTaskRisk)

	s.mcp.AddTool(mcp.NewTool(ToolInsights,
		mcp.WithDescription("Run the team insight checks against a snapshot of employees and team metrics."),
		mcp.WithInputSchema[InsightArgs](),
	), s.handleInsights)

	s.mcp.AddTool(mcp.NewTool(ToolForecast,
		mcp.WithDescription("Fit a linear trend to a metric series and project it forward, "+
			"with anomalies, moving average and growth rate."),
		mcp.WithInputSchema[ForecastArgs](),
	), s.handleForecast)
}

func (s *Server) reference(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.now(), nil
	}
	t := model.ParseTimestamp(raw)
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("unparsable time %q", raw)
	}
	return t, nil
}

func (s *Server) handlePrioritize(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args PrioritizeArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	now, err := s.reference(args.Now)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid now", err), nil
	}

	records := make([]model.Notification, len(args.Notifications))
	for i, n := range args.Notifications {
		records[i] = model.Notification{
			ID:        n.ID,
			OwnerID:   n.OwnerID,
			Category:  model.Category(n.Category),
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: model.ParseTimestamp(n.CreatedAt),
			Read:      n.Read,
		}
		if n.ActionURL != "" {
			records[i].Action = &model.Action{URL: n.ActionURL, Type: "navigate"}
		}
	}
	if args.Deduplicate {
		records = prioritize.Deduplicate(records)
	}

	feed := prioritize.Prioritize(records, now, s.cfg)
	view := feed.Apply(prioritize.Filter{
		Category:   model.Category(args.Category),
		UnreadOnly: args.UnreadOnly,
		UrgentOnly: args.UrgentOnly,
		Limit:      args.Limit,
	}, nil)

	s.logger.Debug("tool call", "tool", ToolPrioritize, "records", len(records), "returned", len(view))
	return mcp.NewToolResultJSON(PrioritizeResult{Feed: view, Counts: feed.Count(nil)})
}

func (s *Server) handleRecommend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args RecommendArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	now, err := s.reference(args.Now)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid now", err), nil
	}

	recs, err := scoring.RecommendAssignees(args.Employees, args.Task, args.TopN, now, s.cfg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("cannot recommend assignees", err), nil
	}

	s.logger.Debug("tool call", "tool", ToolRecommend, "employees", len(args.Employees))
	return mcp.NewToolResultJSON(recs)
}

func (s *Server) handleTaskRisk(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args TaskRiskArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	days := args.DaysUntilDeadline
	if days == nil {
		if d, ok := args.Task.DaysUntil(s.now()); ok {
			days = &d
		}
	}

	return mcp.NewToolResultJSON(scoring.AssessTaskRisk(args.Task, args.Assignee, days, s.cfg))
}

func (s *Server) handleInsights(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args InsightArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return mcp.NewToolResultJSON(insight.Generate(args.Snapshot, s.cfg))
}

func (s *Server) handleForecast(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ForecastArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	return mcp.NewToolResultJSON(ForecastResult{
		Forecast:      forecast.Predict(args.Values, args.HorizonDays),
		Anomalies:     forecast.DetectAnomalies(args.Values, args.AnomalyThreshold),
		MovingAverage: forecast.MovingAverage(args.Values, args.Window),
		GrowthRate:    forecast.GrowthRate(args.Values),
	})
}
