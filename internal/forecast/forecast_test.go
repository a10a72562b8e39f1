package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_ShortSeries(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		last    float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"two points", []float64{4, 9}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Predict(tt.history, 0)
			assert.Zero(t, f.Confidence)
			assert.Equal(t, TrendStable, f.Trend)
			assert.Equal(t, tt.last, f.Next30Days)
			assert.Equal(t, tt.last, f.Next90Days)
			assert.Equal(t, tt.last, f.Horizon)
			assert.Equal(t, DefaultHorizonDays, f.HorizonDays)
			assert.Len(t, f.Actual, len(tt.history))
		})
	}
}

func TestPredict_PerfectLine(t *testing.T) {
	f := Predict([]float64{10, 12, 14, 16, 18}, 60)

	assert.InDelta(t, 2, f.Slope, 1e-9)
	assert.InDelta(t, 10, f.Intercept, 1e-9)
	assert.Equal(t, 100, f.Confidence)
	assert.Equal(t, TrendUp, f.Trend)
	assert.InDelta(t, 2*(4+30)+10, f.Next30Days, 1e-9)
	assert.InDelta(t, 2*(4+90)+10, f.Next90Days, 1e-9)
	assert.InDelta(t, 2*(4+60)+10, f.Horizon, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 12, 14, 16, 18}, f.Fitted, 1e-9)
}

func TestPredict_DecliningSeriesFloorsAtZero(t *testing.T) {
	f := Predict([]float64{30, 20, 10}, 30)
	assert.Equal(t, TrendDown, f.Trend)
	assert.Zero(t, f.Next30Days)
	assert.Zero(t, f.Next90Days)
}

func TestPredict_FlatSeries(t *testing.T) {
	f := Predict([]float64{5, 5, 5, 5}, 30)
	assert.Equal(t, TrendStable, f.Trend)
	assert.Equal(t, 100, f.Confidence)
	assert.InDelta(t, 5, f.Next30Days, 1e-9)
}

func TestPredict_NoisySeries(t *testing.T) {
	f := Predict([]float64{10, 30, 5, 28, 12, 26}, 30)
	assert.GreaterOrEqual(t, f.Confidence, 0)
	assert.Less(t, f.Confidence, 50)
}

func TestPredict_DoesNotAliasInput(t *testing.T) {
	history := []float64{1, 2, 3}
	f := Predict(history, 30)
	f.Actual[0] = 99
	assert.Equal(t, 1.0, history[0])
}

func TestDetectAnomalies(t *testing.T) {
	data := []float64{10, 11, 9, 10, 10, 11, 9, 10, 50}

	assert.Equal(t, []int{8}, DetectAnomalies(data, 2))
	assert.Equal(t, []int{8}, DetectAnomalies(data, 0), "non-positive threshold uses the default")
	assert.Empty(t, DetectAnomalies(data, 5))
	assert.Empty(t, DetectAnomalies([]float64{1, 100}, 1))
	assert.Empty(t, DetectAnomalies([]float64{3, 3, 3, 3}, 1))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.InDeltaSlice(t, []float64{1.5, 2, 3, 4, 4.5}, got, 1e-9)

	assert.InDeltaSlice(t, []float64{2, 2, 2}, MovingAverage([]float64{1, 2, 3}, 0), 1e-9)
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestGrowthRate(t *testing.T) {
	assert.InDelta(t, 50.0, GrowthRate([]float64{100, 120, 150}), 1e-9)
	assert.InDelta(t, -33.3, GrowthRate([]float64{3, 2}), 1e-9)
	assert.Zero(t, GrowthRate([]float64{0, 10}))
	assert.Zero(t, GrowthRate([]float64{10}))
}

func TestSellThroughRate(t *testing.T) {
	assert.InDelta(t, 60.0, SellThroughRate(50, 50, 60), 1e-9)
	assert.Zero(t, SellThroughRate(0, 0, 10))
}
