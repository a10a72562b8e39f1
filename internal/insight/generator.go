// Package insight turns a team snapshot into advisory insights by running a fixed
// battery of independent checks.
package insight

import (
	"log/slog"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/scoring"
)

// Generator runs checks in order and concatenates whatever fires.
type Generator struct {
	logger *slog.Logger
	checks []Check
	cfg    scoring.Config
}

// NewGenerator creates a generator. Without explicit checks it uses DefaultChecks.
func NewGenerator(cfg scoring.Config, logger *slog.Logger, checks ...Check) *Generator {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger, checks: checks}
}

// Generate evaluates every check against the snapshot. Output follows check order;
// no check short-circuits another.
func (g *Generator) Generate(snapshot model.TeamSnapshot) []model.PerformanceInsight {
	insights := []model.PerformanceInsight{}
	for _, c := range g.checks {
		in := c.Evaluate(snapshot, g.cfg)
		if in == nil {
			continue
		}
		g.logger.Debug("insight fired", "check", c.Name(), "kind", in.Kind, "impact", in.Impact)
		insights = append(insights, *in)
	}
	return insights
}

// Generate runs the default battery with cfg.
func Generate(snapshot model.TeamSnapshot, cfg scoring.Config) []model.PerformanceInsight {
	return NewGenerator(cfg, nil).Generate(snapshot)
}
