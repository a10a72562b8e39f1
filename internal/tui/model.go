// Package tui implements the interactive notification center: a ranked feed with
// all, urgent and unread views, read-state actions and periodic refresh.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/tui/themes"
)

// View is one of the notification center tabs.
type View int

// Views in tab order.
const (
	ViewAll View = iota
	ViewUrgent
	ViewUnread
)

var views = []View{ViewAll, ViewUrgent, ViewUnread}

func (v View) String() string {
	switch v {
	case ViewUrgent:
		return "Urgent"
	case ViewUnread:
		return "Unread"
	default:
		return "All"
	}
}

// Filter returns the feed filter the view shows.
func (v View) Filter() prioritize.Filter {
	switch v {
	case ViewUrgent:
		return prioritize.Filter{UrgentOnly: true}
	case ViewUnread:
		return prioritize.Filter{UnreadOnly: true}
	default:
		return prioritize.Filter{}
	}
}

// Model holds the notification center state.
type Model struct {
	ctx             context.Context
	lastError       error
	source          Source
	now             func() time.Time
	theme           themes.Theme
	keymap          KeyMap
	help            help.Model
	spinner         spinner.Model
	status          string
	ownerID         string
	feed            prioritize.Feed
	counts          prioritize.Counts
	refreshInterval time.Duration
	limit           int
	cursor          int
	width           int
	height          int
	view            View
	loading         bool
	ready           bool
	quitting        bool
}

// NewModel builds a notification center model.
func NewModel(ctx context.Context, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:             ctx,
		source:          cfg.Source,
		now:             cfg.Now,
		theme:           cfg.Theme,
		keymap:          DefaultKeyMap(),
		help:            help.New(),
		spinner:         sp,
		ownerID:         cfg.OwnerID,
		refreshInterval: cfg.RefreshInterval,
		limit:           cfg.Limit,
		width:           cfg.Width,
		height:          cfg.Height,
		view:            ViewAll,
		loading:         true,
	}
}

// Init loads the first view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadFeed(m.view), m.spinner.Tick, m.scheduleRefresh())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case feedLoadedMsg:
		if msg.view != m.view {
			// A response for a tab the user already left.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.ready = true
		m.feed = msg.feed
		m.counts = msg.counts
		m.clampCursor()
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("mark %s read: %w", msg.id, msg.err)
			return m, m.reload()
		}
		m.status = "Marked read"
		return m, m.reload()

	case markedAllReadMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("mark all read: %w", msg.err)
			return m, m.reload()
		}
		m.status = fmt.Sprintf("Marked %d notifications read", msg.updated)
		return m, m.reload()

	case tickMsg:
		return m, tea.Batch(m.reload(), m.scheduleRefresh())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.feed)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0

	case key.Matches(msg, m.keymap.End):
		m.cursor = max(0, len(m.feed)-1)

	case key.Matches(msg, m.keymap.NextTab):
		return m.switchView(views[(int(m.view)+1)%len(views)])

	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchView(views[(int(m.view)+len(views)-1)%len(views)])

	case key.Matches(msg, m.keymap.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keymap.MarkRead):
		n, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if n.Read {
			m.status = "Already read"
			return m, nil
		}
		m.feed = slices.Clone(m.feed)
		m.feed[m.cursor].Read = true
		return m, m.markRead(n.ID)

	case key.Matches(msg, m.keymap.MarkAllRead):
		if m.counts.Unread == 0 {
			m.status = "Nothing unread"
			return m, nil
		}
		return m, m.markAllRead()
	}

	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.cursor = 0
	m.status = ""
	return m, m.reload()
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadFeed(m.view), m.spinner.Tick)
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.feed) {
		m.cursor = max(0, len(m.feed)-1)
	}
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (model.ScoredNotification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.feed) {
		return model.ScoredNotification{}, false
	}
	return m.feed[m.cursor], true
}

// CurrentView returns the active tab.
func (m Model) CurrentView() View {
	return m.view
}

// Feed returns the rows currently displayed.
func (m Model) Feed() prioritize.Feed {
	return m.feed
}

// Counts returns the latest counts.
func (m Model) Counts() prioritize.Counts {
	return m.counts
}

// Err returns the last error shown in the status line.
func (m Model) Err() error {
	return m.lastError
}
