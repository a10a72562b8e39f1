// Package forecast projects business metric series forward and flags unusual points.
//
// The models are intentionally simple: an ordinary least squares line over the sample
// index, with R² reported as confidence.
package forecast

import (
	"math"
)

// Trend is the direction of a fitted series.
type Trend string

// Trend directions.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

const (
	// MinPoints is the shortest series Predict will fit a line to.
	MinPoints = 3
	// DefaultHorizonDays applies when Predict is given a non-positive horizon.
	DefaultHorizonDays = 30
	// DefaultAnomalyThreshold is the z-score above which a point is anomalous.
	DefaultAnomalyThreshold = 2.0
	// DefaultWindow is the moving average window.
	DefaultWindow = 7

	trendSlope = 0.05
)

// Forecast is a fitted series and its projections. Projections are floored at 0.
type Forecast struct {
	Actual      []float64 `json:"actual"`
	Fitted      []float64 `json:"fitted"`
	Trend       Trend     `json:"trend"`
	Slope       float64   `json:"slope"`
	Intercept   float64   `json:"intercept"`
	Next30Days  float64   `json:"next_30_days"`
	Next90Days  float64   `json:"next_90_days"`
	Horizon     float64   `json:"horizon"`
	HorizonDays int       `json:"horizon_days"`
	// Confidence is R² scaled to 0–100 and rounded.
	Confidence int `json:"confidence"`
}

// Predict fits a line to history and projects it 30, 90 and horizonDays samples past
// the last point. Series shorter than MinPoints are echoed back with zero confidence
// and every projection equal to the last value.
func Predict(history []float64, horizonDays int) Forecast {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	actual := append([]float64(nil), history...)
	if actual == nil {
		actual = []float64{}
	}

	if len(actual) < MinPoints {
		last := 0.0
		if len(actual) > 0 {
			last = actual[len(actual)-1]
		}
		return Forecast{
			Actual:      actual,
			Fitted:      append([]float64{}, actual...),
			Trend:       TrendStable,
			Next30Days:  last,
			Next90Days:  last,
			Horizon:     last,
			HorizonDays: horizonDays,
		}
	}

	slope, intercept := leastSquares(actual)
	fitted := make([]float64, len(actual))
	for i := range actual {
		fitted[i] = slope*float64(i) + intercept
	}

	trend := TrendStable
	switch {
	case slope > trendSlope:
		trend = TrendUp
	case slope < -trendSlope:
		trend = TrendDown
	}

	last := float64(len(actual) - 1)
	project := func(ahead int) float64 {
		return math.Max(0, slope*(last+float64(ahead))+intercept)
	}

	return Forecast{
		Actual:      actual,
		Fitted:      fitted,
		Trend:       trend,
		Slope:       slope,
		Intercept:   intercept,
		Next30Days:  project(30),
		Next90Days:  project(90),
		Horizon:     project(horizonDays),
		HorizonDays: horizonDays,
		Confidence:  int(math.Round(math.Max(0, math.Min(100, rSquared(actual, fitted)*100)))),
	}
}

func leastSquares(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// rSquared returns 1 for a flat series, which any horizontal line fits exactly.
func rSquared(actual, fitted []float64) float64 {
	m := mean(actual)
	var ssTotal, ssResidual float64
	for i, v := range actual {
		ssTotal += (v - m) * (v - m)
		ssResidual += (v - fitted[i]) * (v - fitted[i])
	}
	if ssTotal == 0 {
		return 1
	}
	return 1 - ssResidual/ssTotal
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}
