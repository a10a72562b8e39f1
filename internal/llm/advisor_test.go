package llm

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdvisor(t *testing.T, handler http.HandlerFunc) (*Advisor, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := Config{
		Provider:   ProviderOpenAI,
		APIKey:     "k",
		BaseURL:    server.URL,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		RateLimit:  600,
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return NewAdvisor(cfg, client, quietLogger()), &calls
}

func TestAdvisor_CachesAnswers(t *testing.T) {
	advisor, calls := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"cached answer"}}]}`))
	})
	ctx := context.Background()

	first, err := advisor.Chat(ctx, testConversation)
	require.NoError(t, err)
	second, err := advisor.Chat(ctx, testConversation)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, ProviderOpenAI, advisor.Provider())
}

func TestAdvisor_FallsBackAfterRetries(t *testing.T) {
	advisor, calls := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	resp, err := advisor.Analyze(context.Background(), CompanyContext{TotalTasks: 10, OverdueTasks: 3})
	require.NoError(t, err)
	assert.Equal(t, ProviderRuleBased, resp.Provider)
	assert.InDelta(t, 0.75, resp.Confidence, 1e-9)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestAdvisor_PermanentErrorSkipsRetry(t *testing.T) {
	advisor, calls := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	resp, err := advisor.Chat(context.Background(), testConversation)
	require.NoError(t, err)
	assert.Equal(t, ProviderRuleBased, resp.Provider)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAdvisor_CanceledContext(t *testing.T) {
	advisor, _ := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := advisor.Chat(ctx, testConversation)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAdvisor_NoMessages(t *testing.T) {
	advisor := NewAdvisor(Config{}, nil, quietLogger())
	_, err := advisor.Chat(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, ProviderRuleBased, advisor.Provider())
}

func TestAnalystMessages(t *testing.T) {
	messages := AnalystMessages(CompanyContext{
		TotalTasks:     20,
		OverdueTasks:   4,
		CompletedTasks: 12,
		CompletionRate: 60,
		TeamSize:       5,
		ActiveMembers:  4,
		RecentIssues:   []string{"Team overload", "Budget warning"},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Tasks: 20 total, 4 overdue, 12 completed (60% rate)")
	assert.Contains(t, messages[0].Content, "Team: 5 members, 4 active")
	assert.Contains(t, messages[0].Content, "Team overload, Budget warning")
	assert.Equal(t, RoleUser, messages[1].Role)

	empty := AnalystMessages(CompanyContext{})
	assert.Contains(t, empty[0].Content, "Recent issues: none")
}
