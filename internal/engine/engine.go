// Package engine wires storage to the pure scoring, prioritization, insight and
// forecasting packages. It is the only layer that performs I/O around them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/insight"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/scoring"
	"github.com/Veraticus/pulse/internal/service"
)

// Advisor answers free-form analysis requests about the company.
type Advisor interface {
	Analyze(ctx context.Context, company llm.CompanyContext) (llm.Response, error)
	Provider() string
}

// Engine orchestrates reads from storage and the scoring pipeline.
type Engine struct {
	storage  service.Storage
	advisor  Advisor
	reporter service.ReportWriter
	logger   *slog.Logger
	insights *insight.Generator
	now      func() time.Time
	cfg      scoring.Config
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAdvisor sets the AI advisor used by Analyze.
func WithAdvisor(advisor Advisor) Option {
	return func(e *Engine) {
		e.advisor = advisor
	}
}

// WithReportWriter sets the destination for ExportReport.
func WithReportWriter(w service.ReportWriter) Option {
	return func(e *Engine) {
		e.reporter = w
	}
}

// New creates an engine over storage. Without WithAdvisor, Analyze uses the offline
// rule-based advisor.
func New(storage service.Storage, cfg scoring.Config, opts ...Option) (*Engine, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: storage is required", common.ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	e := &Engine{
		storage: storage,
		cfg:     cfg,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.advisor == nil {
		e.advisor = llm.NewAdvisor(llm.Config{}, nil, e.logger)
	}
	e.insights = insight.NewGenerator(cfg, e.logger)
	return e, nil
}

// Config returns the scoring configuration in use.
func (e *Engine) Config() scoring.Config {
	return e.cfg
}
