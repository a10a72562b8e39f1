package model

import "time"

// Budget tracks spend against an allocation for one project or cost center.
type Budget struct {
	ID        string  `json:"id" yaml:"id" db:"id"`
	Name      string  `json:"name" yaml:"name" db:"name"`
	Allocated float64 `json:"allocated" yaml:"allocated" db:"allocated"`
	Spent     float64 `json:"spent" yaml:"spent" db:"spent"`
}

// Utilization returns spend as a percentage of the allocation, 0 when nothing is allocated.
func (b Budget) Utilization() float64 {
	if b.Allocated == 0 {
		return 0
	}
	return b.Spent / b.Allocated * 100
}

// MetricPoint is one observation of a named business metric.
type MetricPoint struct {
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at" db:"recorded_at"`
	Metric     string    `json:"metric" yaml:"metric" db:"metric"`
	Value      float64   `json:"value" yaml:"value" db:"value"`
}
