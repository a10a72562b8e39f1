// Package snapshot reads YAML or JSON snapshot files of notifications, employees,
// tasks, budgets and metric history, and loads them into storage.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
)

// File is the on-disk snapshot layout. JSON files use the same keys.
type File struct {
	Metrics       map[string][]Point     `yaml:"metrics"`
	Notifications []Notification         `yaml:"notifications"`
	Employees     []model.EmployeeMetric `yaml:"employees"`
	Tasks         []Task                 `yaml:"tasks"`
	Budgets       []model.Budget         `yaml:"budgets"`
}

// Notification is a notification as written in a snapshot. Timestamps stay raw until
// conversion so unparsable values degrade to "unknown" instead of failing the load.
type Notification struct {
	Action    *model.Action  `yaml:"action"`
	Metadata  map[string]any `yaml:"metadata"`
	ID        string         `yaml:"id"`
	OwnerID   string         `yaml:"owner_id"`
	Category  string         `yaml:"category"`
	Title     string         `yaml:"title"`
	Message   string         `yaml:"message"`
	CreatedAt string         `yaml:"created_at"`
	Read      bool           `yaml:"read"`
}

// Task is a task as written in a snapshot.
type Task struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	AssigneeID     string   `yaml:"assignee_id"`
	Priority       string   `yaml:"priority"`
	Complexity     string   `yaml:"complexity"`
	Deadline       string   `yaml:"deadline"`
	RequiredSkills []string `yaml:"required_skills"`
	EstimatedHours float64  `yaml:"estimated_hours"`
	Done           bool     `yaml:"done"`
}

// Point is one metric observation.
type Point struct {
	At    string  `yaml:"at"`
	Value float64 `yaml:"value"`
}

// Load reads a snapshot file. YAML and JSON are both accepted.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes snapshot data. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.ErrEmptyImport
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	if f.Len() == 0 {
		return nil, common.ErrEmptyImport
	}
	return &f, nil
}

// Len counts every record in the file.
func (f *File) Len() int {
	n := len(f.Notifications) + len(f.Employees) + len(f.Tasks) + len(f.Budgets)
	for _, points := range f.Metrics {
		n += len(points)
	}
	return n
}

// MetricNames returns the metric names in sorted order.
func (f *File) MetricNames() []string {
	names := make([]string, 0, len(f.Metrics))
	for name := range f.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ToModel converts the snapshot notification.
func (n Notification) ToModel() model.Notification {
	return model.Notification{
		ID:        strings.TrimSpace(n.ID),
		OwnerID:   n.OwnerID,
		Category:  model.Category(n.Category),
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: model.ParseTimestamp(n.CreatedAt),
		Read:      n.Read,
		Action:    n.Action,
		Metadata:  n.Metadata,
	}
}

// ToModel converts the snapshot task. An unparsable deadline is an error because it
// changes the task's risk.
func (t Task) ToModel() (model.TaskRequirement, error) {
	task := model.TaskRequirement{
		ID:             t.ID,
		Title:          t.Title,
		AssigneeID:     t.AssigneeID,
		Priority:       model.Priority(strings.ToLower(t.Priority)),
		Complexity:     model.Complexity(strings.ToLower(t.Complexity)),
		RequiredSkills: t.RequiredSkills,
		EstimatedHours: t.EstimatedHours,
		Done:           t.Done,
	}
	if strings.TrimSpace(t.Deadline) != "" {
		deadline := model.ParseTimestamp(t.Deadline)
		if deadline.IsZero() {
			return model.TaskRequirement{}, fmt.Errorf("%w: task %q has unparsable deadline %q",
				common.ErrInvalidInput, t.ID, t.Deadline)
		}
		task.Deadline = &deadline
	}
	return task, nil
}

// ToModel converts the snapshot point for metric.
func (p Point) ToModel(metric string) (model.MetricPoint, error) {
	at := model.ParseTimestamp(p.At)
	if at.IsZero() {
		return model.MetricPoint{}, fmt.Errorf("%w: %s point has unparsable time %q",
			common.ErrInvalidInput, metric, p.At)
	}
	return model.MetricPoint{Metric: metric, RecordedAt: at, Value: p.Value}, nil
}

// NotificationRecords converts every notification in the file.
func (f *File) NotificationRecords() []model.Notification {
	out := make([]model.Notification, len(f.Notifications))
	for i, n := range f.Notifications {
		out[i] = n.ToModel()
	}
	return out
}

// TaskRecords converts every task in the file.
func (f *File) TaskRecords() ([]model.TaskRequirement, error) {
	out := make([]model.TaskRequirement, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		task, err := t.ToModel()
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

// Series returns the values of one metric in file order.
func (f *File) Series(metric string) []float64 {
	points := f.Metrics[metric]
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
