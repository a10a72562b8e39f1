package scoring

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/pulse/internal/model"
)

// RecommendAssignees scores every employee against the task and returns the best
// topN candidates ordered by fit score, highest first. Employees with equal scores
// keep their input order. A non-positive topN returns every candidate.
//
// The task must carry a positive estimate and every employee an id; anything else is
// a caller error.
func RecommendAssignees(employees []model.EmployeeMetric, task model.TaskRequirement, topN int, now time.Time, cfg Config) ([]model.AssignmentRecommendation, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	recs := make([]model.AssignmentRecommendation, 0, len(employees))
	for i, e := range employees {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("employee at index %d: %w", i, err)
		}

		score := FitScore(e, task, cfg)
		recs = append(recs, model.AssignmentRecommendation{
			EmployeeID:          e.ID,
			EmployeeName:        e.DisplayName(),
			Score:               score,
			Confidence:          Confidence(e, task),
			Reasons:             Reasons(e, task, score),
			ProjectedCompletion: ProjectCompletion(e, task, now, cfg),
			WorkloadImpact:      AssessWorkloadImpact(e, task),
		})
	}

	slices.SortStableFunc(recs, func(a, b model.AssignmentRecommendation) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if topN > 0 && topN < len(recs) {
		recs = recs[:topN]
	}
	return recs, nil
}
