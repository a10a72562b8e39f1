package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/scoring"
	"github.com/Veraticus/pulse/internal/service"
)

// TaskAssessment pairs a task with its risk assessment.
type TaskAssessment struct {
	Task model.TaskRequirement `json:"task"`
	Risk model.TaskRisk        `json:"risk"`
}

// Recommend ranks employees for a stored task and returns the best topN.
func (e *Engine) Recommend(ctx context.Context, taskID string, topN int) ([]model.AssignmentRecommendation, error) {
	task, err := e.storage.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return e.RecommendFor(ctx, *task, topN)
}

// RecommendFor ranks employees for an arbitrary task.
func (e *Engine) RecommendFor(ctx context.Context, task model.TaskRequirement, topN int) ([]model.AssignmentRecommendation, error) {
	employees, err := e.storage.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	recs, err := scoring.RecommendAssignees(employees, task, topN, e.now(), e.cfg)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("recommended assignees", "task", task.ID, "candidates", len(employees), "returned", len(recs))
	return recs, nil
}

// AssessRisks scores every task matching filter, riskiest first. Tasks whose assignee
// is unknown are assessed without one.
func (e *Engine) AssessRisks(ctx context.Context, filter service.TaskFilter) ([]TaskAssessment, error) {
	tasks, err := e.storage.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	employees, err := e.storage.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	byID := make(map[string]model.EmployeeMetric, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	now := e.now()
	out := make([]TaskAssessment, 0, len(tasks))
	for _, t := range tasks {
		var assignee *model.EmployeeMetric
		if emp, ok := byID[t.AssigneeID]; ok {
			assignee = &emp
		} else if t.AssigneeID != "" {
			e.logger.Warn("task assignee not found", "task", t.ID, "assignee", t.AssigneeID)
		}
		out = append(out, TaskAssessment{Task: t, Risk: scoring.AssessTaskRiskAt(t, assignee, now, e.cfg)})
	}

	slices.SortStableFunc(out, func(a, b TaskAssessment) int {
		return cmp.Compare(b.Risk.Score, a.Risk.Score)
	})
	return out, nil
}

// AssessTask scores one stored task.
func (e *Engine) AssessTask(ctx context.Context, taskID string) (TaskAssessment, error) {
	task, err := e.storage.GetTask(ctx, taskID)
	if err != nil {
		return TaskAssessment{}, fmt.Errorf("failed to load task: %w", err)
	}

	var assignee *model.EmployeeMetric
	if task.AssigneeID != "" {
		assignee, err = e.storage.GetEmployee(ctx, task.AssigneeID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return TaskAssessment{}, fmt.Errorf("failed to load assignee: %w", err)
		}
	}

	return TaskAssessment{Task: *task, Risk: scoring.AssessTaskRiskAt(*task, assignee, e.now(), e.cfg)}, nil
}

// TeamHealth assesses churn risk for every employee, least healthy first.
func (e *Engine) TeamHealth(ctx context.Context) ([]model.ChurnRisk, error) {
	employees, err := e.storage.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	out := make([]model.ChurnRisk, 0, len(employees))
	for _, emp := range employees {
		out = append(out, scoring.AssessChurn(scoring.HealthFromMetric(emp, e.cfg), e.cfg))
	}

	slices.SortStableFunc(out, func(a, b model.ChurnRisk) int {
		return cmp.Compare(a.Composite, b.Composite)
	})
	return out, nil
}
