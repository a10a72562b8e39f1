package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/service"
)

// Summary is the digest of one owner's current state.
type Summary struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	OwnerID     string                     `json:"owner_id"`
	Insights    []model.PerformanceInsight `json:"insights"`
	Urgent      prioritize.Feed            `json:"urgent"`
	Counts      prioritize.Counts          `json:"counts"`
}

// Insights runs the insight battery against the current team snapshot.
func (e *Engine) Insights(ctx context.Context) ([]model.PerformanceInsight, error) {
	snapshot, err := e.storage.TeamSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build team snapshot: %w", err)
	}
	return e.insights.Generate(snapshot), nil
}

// CompanyContext summarizes tasks, team and the given insights for the AI advisor.
func (e *Engine) CompanyContext(ctx context.Context, insights []model.PerformanceInsight) (llm.CompanyContext, error) {
	tasks, err := e.storage.ListTasks(ctx, service.TaskFilter{})
	if err != nil {
		return llm.CompanyContext{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	employees, err := e.storage.ListEmployees(ctx)
	if err != nil {
		return llm.CompanyContext{}, fmt.Errorf("failed to load employees: %w", err)
	}

	now := e.now()
	company := llm.CompanyContext{
		TotalTasks:   len(tasks),
		TeamSize:     len(employees),
		RecentIssues: []string{},
	}
	for _, t := range tasks {
		if t.Done {
			company.CompletedTasks++
			continue
		}
		if days, ok := t.DaysUntil(now); ok && days < 0 {
			company.OverdueTasks++
		}
	}
	for _, emp := range employees {
		if emp.OpenTasks > 0 {
			company.ActiveMembers++
		}
	}
	if company.TotalTasks > 0 {
		company.CompletionRate = float64(company.CompletedTasks) / float64(company.TotalTasks) * 100
	}
	for _, in := range insights {
		if in.Kind == model.KindWarning {
			company.RecentIssues = append(company.RecentIssues, in.Title)
		}
	}
	return company, nil
}

// Analyze generates insights and asks the advisor to interpret them.
func (e *Engine) Analyze(ctx context.Context) (llm.Response, []model.PerformanceInsight, error) {
	insights, err := e.Insights(ctx)
	if err != nil {
		return llm.Response{}, nil, err
	}
	company, err := e.CompanyContext(ctx, insights)
	if err != nil {
		return llm.Response{}, nil, err
	}

	e.logger.Info("requesting AI analysis", "provider", e.advisor.Provider(), "issues", len(company.RecentIssues))
	resp, err := e.advisor.Analyze(ctx, company)
	if err != nil {
		return llm.Response{}, insights, fmt.Errorf("analysis failed: %w", err)
	}
	return resp, insights, nil
}

// Summarize collects insights, urgent unread notifications and counts for the owner.
func (e *Engine) Summarize(ctx context.Context, ownerID string) (Summary, error) {
	insights, err := e.Insights(ctx)
	if err != nil {
		return Summary{}, err
	}
	feed, state, err := e.rankedFeed(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		GeneratedAt: e.now(),
		OwnerID:     ownerID,
		Insights:    insights,
		Urgent:      feed.Apply(prioritize.Filter{UrgentOnly: true, UnreadOnly: true}, state),
		Counts:      feed.Count(state),
	}, nil
}

// ExportReport writes the insights and the owner's full feed to the report writer.
func (e *Engine) ExportReport(ctx context.Context, ownerID string) error {
	if e.reporter == nil {
		return fmt.Errorf("%w: no report writer configured", common.ErrMissingConfig)
	}

	insights, err := e.Insights(ctx)
	if err != nil {
		return err
	}
	feed, _, err := e.rankedFeed(ctx, ownerID)
	if err != nil {
		return err
	}

	if err := e.reporter.WriteInsights(ctx, insights); err != nil {
		return fmt.Errorf("failed to export insights: %w", err)
	}
	if err := e.reporter.WriteFeed(ctx, feed); err != nil {
		return fmt.Errorf("failed to export notifications: %w", err)
	}

	e.logger.Info("report exported", "insights", len(insights), "notifications", len(feed))
	return nil
}
