package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
)

var _ service.ReportWriter = (*MockWriter)(nil)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	Err          error
	LastInsights []model.PerformanceInsight
	LastFeed     []model.ScoredNotification
	InsightCalls int
	FeedCalls    int
	mu           sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteInsights records the insights.
func (m *MockWriter) WriteInsights(_ context.Context, insights []model.PerformanceInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsightCalls++
	m.LastInsights = insights
	return m.Err
}

// WriteFeed records the feed.
func (m *MockWriter) WriteFeed(_ context.Context, feed []model.ScoredNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FeedCalls++
	m.LastFeed = feed
	return m.Err
}
