package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
)

const taskColumns = `id, title, assignee_id, priority, complexity, estimated_hours,
	required_skills, deadline, done`

type taskRow struct {
	Deadline       sql.NullTime   `db:"deadline"`
	AssigneeID     sql.NullString `db:"assignee_id"`
	RequiredSkills sql.NullString `db:"required_skills"`
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Priority       string         `db:"priority"`
	Complexity     string         `db:"complexity"`
	EstimatedHours float64        `db:"estimated_hours"`
	Done           bool           `db:"done"`
}

func (r taskRow) toModel() (model.TaskRequirement, error) {
	t := model.TaskRequirement{
		ID:             r.ID,
		Title:          r.Title,
		AssigneeID:     r.AssigneeID.String,
		Priority:       model.Priority(r.Priority),
		Complexity:     model.Complexity(r.Complexity),
		EstimatedHours: r.EstimatedHours,
		Done:           r.Done,
	}
	if r.Deadline.Valid {
		deadline := r.Deadline.Time
		t.Deadline = &deadline
	}
	if r.RequiredSkills.Valid && r.RequiredSkills.String != "" {
		if err := json.Unmarshal([]byte(r.RequiredSkills.String), &t.RequiredSkills); err != nil {
			return model.TaskRequirement{}, fmt.Errorf("failed to decode skills for task %s: %w", r.ID, err)
		}
	}
	return t, nil
}

// SaveTask inserts or updates a task. An empty ID is filled with a new UUID.
func (s *SQLiteStorage) SaveTask(ctx context.Context, t *model.TaskRequirement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTask(t); err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var skills sql.NullString
	if len(t.RequiredSkills) > 0 {
		raw, err := json.Marshal(t.RequiredSkills)
		if err != nil {
			return fmt.Errorf("failed to encode skills: %w", err)
		}
		skills = sql.NullString{String: string(raw), Valid: true}
	}

	var deadline sql.NullTime
	if t.Deadline != nil {
		deadline = nullTime(*t.Deadline)
	}

	priority := t.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	complexity := t.Complexity
	if complexity == "" {
		complexity = model.ComplexityModerate
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			assignee_id = excluded.assignee_id,
			priority = excluded.priority,
			complexity = excluded.complexity,
			estimated_hours = excluded.estimated_hours,
			required_skills = excluded.required_skills,
			deadline = excluded.deadline,
			done = excluded.done`,
		t.ID, t.Title, sql.NullString{String: t.AssigneeID, Valid: t.AssigneeID != ""},
		string(priority), string(complexity), t.EstimatedHours, skills, deadline, boolToInt(t.Done),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by id.
func (s *SQLiteStorage) GetTask(ctx context.Context, id string) (*model.TaskRequirement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}

	t, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks matching filter, earliest deadline first.
func (s *SQLiteStorage) ListTasks(ctx context.Context, filter service.TaskFilter) ([]model.TaskRequirement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		clauses []string
		args    []any
	)
	if filter.AssigneeID != "" {
		clauses = append(clauses, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.OpenOnly {
		clauses = append(clauses, "done = 0")
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY deadline IS NULL, deadline, id"

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	tasks := make([]model.TaskRequirement, 0, len(rows))
	for _, r := range rows {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
