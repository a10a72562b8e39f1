package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sourceTimeout = 10 * time.Second

var errNoSource = errors.New("notification source not configured")

// loadFeed fetches the ranked feed for view along with the owner's counts.
func (m Model) loadFeed(view View) tea.Cmd {
	source, owner, limit := m.source, m.ownerID, m.limit
	parent := m.ctx
	return func() tea.Msg {
		if source == nil {
			return feedLoadedMsg{view: view, err: errNoSource}
		}

		ctx, cancel := context.WithTimeout(parent, sourceTimeout)
		defer cancel()

		filter := view.Filter()
		filter.Limit = limit
		feed, err := source.Feed(ctx, owner, filter)
		if err != nil {
			return feedLoadedMsg{view: view, err: err}
		}
		counts, err := source.Counts(ctx, owner)
		if err != nil {
			return feedLoadedMsg{view: view, err: err}
		}
		return feedLoadedMsg{view: view, feed: feed, counts: counts}
	}
}

func (m Model) markRead(id string) tea.Cmd {
	source, parent := m.source, m.ctx
	return func() tea.Msg {
		if source == nil {
			return markedReadMsg{id: id, err: errNoSource}
		}
		ctx, cancel := context.WithTimeout(parent, sourceTimeout)
		defer cancel()
		return markedReadMsg{id: id, err: source.MarkRead(ctx, id)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	source, owner, parent := m.source, m.ownerID, m.ctx
	return func() tea.Msg {
		if source == nil {
			return markedAllReadMsg{err: errNoSource}
		}
		ctx, cancel := context.WithTimeout(parent, sourceTimeout)
		defer cancel()
		n, err := source.MarkAllRead(ctx, owner)
		return markedAllReadMsg{updated: n, err: err}
	}
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
