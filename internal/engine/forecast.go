package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/forecast"
)

// MetricForecast is the projection and series diagnostics of one stored metric.
type MetricForecast struct {
	Metric        string            `json:"metric"`
	Forecast      forecast.Forecast `json:"forecast"`
	Anomalies     []int             `json:"anomalies"`
	MovingAverage []float64         `json:"moving_average"`
	GrowthRate    float64           `json:"growth_rate"`
}

// Forecast projects a stored metric series horizonDays ahead.
func (e *Engine) Forecast(ctx context.Context, metric string, horizonDays int) (MetricForecast, error) {
	points, err := e.storage.GetMetricSeries(ctx, metric)
	if err != nil {
		return MetricForecast{}, fmt.Errorf("failed to load metric series: %w", err)
	}
	if len(points) == 0 {
		return MetricForecast{}, fmt.Errorf("metric %q: %w", metric, common.ErrNotFound)
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	return MetricForecast{
		Metric:        metric,
		Forecast:      forecast.Predict(values, horizonDays),
		Anomalies:     forecast.DetectAnomalies(values, forecast.DefaultAnomalyThreshold),
		MovingAverage: forecast.MovingAverage(values, forecast.DefaultWindow),
		GrowthRate:    forecast.GrowthRate(values),
	}, nil
}
