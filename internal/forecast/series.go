package forecast

import "math"

// DetectAnomalies returns the indexes whose population z-score exceeds threshold.
// Series shorter than MinPoints or without variance have no anomalies.
func DetectAnomalies(data []float64, threshold float64) []int {
	anomalies := []int{}
	if len(data) < MinPoints {
		return anomalies
	}
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	m := mean(data)
	var ss float64
	for _, v := range data {
		ss += (v - m) * (v - m)
	}
	stdDev := math.Sqrt(ss / float64(len(data)))
	if stdDev == 0 {
		return anomalies
	}

	for i, v := range data {
		if math.Abs((v-m)/stdDev) > threshold {
			anomalies = append(anomalies, i)
		}
	}
	return anomalies
}

// MovingAverage smooths data with a centered window. Windows are truncated at the
// edges, so the output has the same length as the input.
func MovingAverage(data []float64, window int) []float64 {
	if window <= 0 {
		window = DefaultWindow
	}

	out := make([]float64, len(data))
	for i := range data {
		start := max(0, i-window/2)
		end := min(len(data), i+(window+1)/2)
		out[i] = mean(data[start:end])
	}
	return out
}

// GrowthRate returns the percent change from the first to the last value, rounded to
// one decimal. A zero base or fewer than two points yields 0.
func GrowthRate(data []float64) float64 {
	if len(data) < 2 || data[0] == 0 {
		return 0
	}
	rate := (data[len(data)-1] - data[0]) / data[0] * 100
	return math.Round(rate*10) / 10
}

// SellThroughRate returns sellOut as a percentage of available stock. Zero available
// stock yields 0.
func SellThroughRate(opening, sellIn, sellOut float64) float64 {
	available := opening + sellIn
	if available == 0 {
		return 0
	}
	return sellOut / available * 100
}
