package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/scoring"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	feedErr error
	read    map[string]bool
	records []model.Notification
	filters []prioritize.Filter
	marked  []string
	mu      sync.Mutex
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		read: map[string]bool{"r1": true},
		records: []model.Notification{
			{ID: "a1", Category: model.CategoryAlert, Title: "Stock low", Message: "Reorder widgets",
				CreatedAt: testNow.Add(-10 * time.Minute), Action: &model.Action{URL: "/inventory", Type: "navigate"}},
			{ID: "i1", Category: model.CategoryInfo, Title: "Weekly summary", CreatedAt: testNow.Add(-2 * time.Hour)},
			{ID: "r1", Category: model.CategoryTask, Title: "Review PR", CreatedAt: testNow.Add(-5 * time.Hour)},
			{ID: "s1", Category: model.CategoryInfo, Title: "Old news"},
		},
	}
}

func (f *fakeSource) ranked() (prioritize.Feed, prioritize.ReadSet) {
	state := prioritize.NewReadSet()
	for id, read := range f.read {
		if read {
			state[id] = struct{}{}
		}
	}
	records := make([]model.Notification, len(f.records))
	for i, n := range f.records {
		n.Read = state.IsRead(n.ID)
		records[i] = n
	}
	return prioritize.Prioritize(records, testNow, scoring.DefaultConfig()), state
}

func (f *fakeSource) Feed(_ context.Context, _ string, filter prioritize.Filter) (prioritize.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	f.filters = append(f.filters, filter)
	feed, state := f.ranked()
	return feed.Apply(filter, state), nil
}

func (f *fakeSource) Counts(_ context.Context, _ string) (prioritize.Counts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, state := f.ranked()
	return feed.Count(state), nil
}

func (f *fakeSource) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	f.read[id] = true
	return nil
}

func (f *fakeSource) MarkAllRead(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if !f.read[r.ID] {
			f.read[r.ID] = true
			n++
		}
	}
	return n, nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, source Source) Model {
	t.Helper()
	return NewModel(context.Background(),
		WithSource(source),
		WithOwner("u1"),
		WithClock(func() time.Time { return testNow }),
		WithRefreshInterval(0),
		WithSize(100, 30),
	)
}

// loaded runs the initial feed load synchronously.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadFeed(m.view)()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func ids(feed prioritize.Feed) []string {
	out := make([]string, len(feed))
	for i, n := range feed {
		out[i] = n.ID
	}
	return out
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(context.Background())

	assert.Equal(t, ViewAll, m.CurrentView())
	assert.Equal(t, 30*time.Second, m.refreshInterval)
	assert.True(t, m.loading)
	assert.NotNil(t, m.Init())
}

func TestModel_InitialLoad(t *testing.T) {
	m := loaded(t, newTestModel(t, newFakeSource()))

	require.NoError(t, m.Err())
	assert.Equal(t, []string{"a1", "r1", "i1", "s1"}, ids(m.Feed()))
	assert.Equal(t, 4, m.Counts().Total)
	assert.Equal(t, 3, m.Counts().Unread)
	assert.Equal(t, 1, m.Counts().Urgent)
	assert.False(t, m.loading)
}

func TestModel_TabCyclesViews(t *testing.T) {
	source := newFakeSource()
	m := loaded(t, newTestModel(t, source))

	tests := []struct {
		key     tea.KeyMsg
		name    string
		want    View
		wantIDs []string
	}{
		{name: "to urgent", key: tea.KeyMsg{Type: tea.KeyTab}, want: ViewUrgent, wantIDs: []string{"a1"}},
		{name: "to unread", key: tea.KeyMsg{Type: tea.KeyTab}, want: ViewUnread, wantIDs: []string{"a1", "i1", "s1"}},
		{name: "wraps to all", key: tea.KeyMsg{Type: tea.KeyTab}, want: ViewAll, wantIDs: []string{"a1", "r1", "i1", "s1"}},
		{name: "back to unread", key: tea.KeyMsg{Type: tea.KeyShiftTab}, want: ViewUnread, wantIDs: []string{"a1", "i1", "s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd tea.Cmd
			m, cmd = press(t, m, tt.key)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, m.CurrentView())
			assert.True(t, m.loading)

			m = loaded(t, m)
			assert.Equal(t, tt.wantIDs, ids(m.Feed()))
		})
	}
}

func TestModel_IgnoresStaleFeed(t *testing.T) {
	m := loaded(t, newTestModel(t, newFakeSource()))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})

	updated, _ := m.Update(feedLoadedMsg{view: ViewAll, feed: prioritize.Feed{}})
	m = updated.(Model)

	assert.Len(t, m.Feed(), 4)
	assert.Equal(t, ViewUrgent, m.CurrentView())
}

func TestModel_MarkRead(t *testing.T) {
	source := newFakeSource()
	m := loaded(t, newTestModel(t, source))

	m, cmd := press(t, m, keyRunes("r"))
	require.NotNil(t, cmd)

	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "a1", selected.ID)
	assert.True(t, selected.Read)

	msg := cmd()
	require.IsType(t, markedReadMsg{}, msg)
	assert.Equal(t, []string{"a1"}, source.marked)

	updated, cmd := m.Update(msg)
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "Marked read", m.status)

	m = loaded(t, m)
	assert.Equal(t, 2, m.Counts().Unread)
}

func TestModel_MarkReadWithEnter(t *testing.T) {
	source := newFakeSource()
	m := loaded(t, newTestModel(t, source))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	cmd()
	assert.Equal(t, []string{"i1"}, source.marked)
}

func TestModel_MarkReadAlreadyRead(t *testing.T) {
	source := newFakeSource()
	m := loaded(t, newTestModel(t, source))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(t, m, keyRunes("r"))

	assert.Nil(t, cmd)
	assert.Equal(t, "Already read", m.status)
	assert.Empty(t, source.marked)
}

func TestModel_MarkAllRead(t *testing.T) {
	source := newFakeSource()
	m := loaded(t, newTestModel(t, source))

	m, cmd := press(t, m, keyRunes("R"))
	require.NotNil(t, cmd)

	updated, _ := m.Update(cmd())
	m = loaded(t, updated.(Model))

	assert.Equal(t, "Marked 3 notifications read", m.status)
	assert.Zero(t, m.Counts().Unread)

	m, cmd = press(t, m, keyRunes("R"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing unread", m.status)
}

func TestModel_CursorBounds(t *testing.T) {
	m := loaded(t, newTestModel(t, newFakeSource()))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m, _ = press(t, m, keyRunes("G"))
	assert.Equal(t, 3, m.cursor)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 3, m.cursor)

	m, _ = press(t, m, keyRunes("g"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_CursorClampedOnShorterFeed(t *testing.T) {
	m := loaded(t, newTestModel(t, newFakeSource()))
	m, _ = press(t, m, keyRunes("G"))

	updated, _ := m.Update(feedLoadedMsg{view: ViewAll, feed: m.Feed()[:1]})
	m = updated.(Model)

	assert.Equal(t, 0, m.cursor)
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(k.String(), func(t *testing.T) {
			m := loaded(t, newTestModel(t, newFakeSource()))

			m, cmd := press(t, m, k)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_FeedError(t *testing.T) {
	source := newFakeSource()
	source.feedErr = errors.New("database is locked")
	m := loaded(t, newTestModel(t, source))

	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "Error: database is locked")
	assert.Contains(t, m.View(), "No data")
}

func TestModel_NoSource(t *testing.T) {
	m := NewModel(context.Background())

	msg := m.loadFeed(ViewAll)()
	loadedMsg, ok := msg.(feedLoadedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, loadedMsg.err, errNoSource)

	readMsg, ok := m.markRead("x")().(markedReadMsg)
	require.True(t, ok)
	assert.ErrorIs(t, readMsg.err, errNoSource)
}

func TestModel_LimitPassedToSource(t *testing.T) {
	source := newFakeSource()
	m := NewModel(context.Background(), WithSource(source), WithLimit(2), WithRefreshInterval(0))
	m = loaded(t, m)

	assert.Len(t, m.Feed(), 2)
	require.NotEmpty(t, source.filters)
	assert.Equal(t, 2, source.filters[0].Limit)
}

func TestModel_View(t *testing.T) {
	m := loaded(t, newTestModel(t, newFakeSource()))
	out := m.View()

	assert.Contains(t, out, "Pulse notifications")
	assert.Contains(t, out, "u1")
	assert.Contains(t, out, "All 4")
	assert.Contains(t, out, "Urgent 1")
	assert.Contains(t, out, "Unread 3")
	assert.Contains(t, out, "Stock low")
	assert.Contains(t, out, "10 minutes ago")
	assert.Contains(t, out, "time unknown")
	assert.Contains(t, out, "Reorder widgets")
	assert.Contains(t, out, "/inventory")
}

func TestModel_ViewEmpty(t *testing.T) {
	source := newFakeSource()
	source.records = nil
	m := loaded(t, newTestModel(t, source))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = loaded(t, m)

	assert.Contains(t, m.View(), "Nothing urgent.")
}

func TestRun_RequiresSource(t *testing.T) {
	err := Run(context.Background())
	assert.ErrorContains(t, err, "notification source is required")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefghij", 5))
}
