package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/tui/themes"
)

// chrome is the number of lines used by everything except the list.
const chrome = 10

// View renders the notification center.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderTabs(),
		m.renderList(),
		m.renderDetail(),
		m.renderStatus(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	owner := m.ownerID
	if owner == "" {
		owner = "all owners"
	}
	title := m.theme.Title.Render("Pulse notifications")
	sub := m.theme.Subtitle.Render(" · " + owner)
	return title + sub
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(views))
	for _, v := range views {
		label := fmt.Sprintf("%s %d", v, m.tabCount(v))
		style := m.theme.Tab
		if v == m.view {
			style = m.theme.ActiveTab
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) tabCount(v View) int {
	switch v {
	case ViewUrgent:
		return m.counts.Urgent
	case ViewUnread:
		return m.counts.Unread
	default:
		return m.counts.Total
	}
}

func (m Model) renderList() string {
	if !m.ready {
		if m.loading {
			return m.spinner.View() + " Loading notifications..."
		}
		return m.theme.Dimmed.Render("No data")
	}
	if len(m.feed) == 0 {
		return m.theme.Dimmed.Render(emptyMessage(m.view))
	}

	visible := max(1, m.height-chrome)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(m.feed), start+visible)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(m.feed[i], i == m.cursor))
	}
	return strings.Join(rows, "\n")
}

func emptyMessage(v View) string {
	switch v {
	case ViewUrgent:
		return "Nothing urgent."
	case ViewUnread:
		return "All caught up."
	default:
		return "No notifications."
	}
}

func (m Model) renderRow(n model.ScoredNotification, selected bool) string {
	marker := "  "
	if !n.Read {
		marker = "● "
	}
	line := fmt.Sprintf("%s%s %3d  %s  %s",
		marker,
		themes.GetCategoryIcon(n.Category),
		n.Priority,
		truncate(n.Title, max(10, m.width-30)),
		m.age(n),
	)

	switch {
	case selected:
		return m.theme.Selected.Render(line)
	case n.Urgent && !n.Read:
		return m.theme.Urgent.Render(line)
	case n.Read:
		return m.theme.Dimmed.Render(line)
	default:
		return m.theme.Normal.Render(line)
	}
}

func (m Model) age(n model.ScoredNotification) string {
	if !n.HasTimestamp() {
		return "time unknown"
	}
	return humanize.RelTime(n.CreatedAt, m.now(), "ago", "from now")
}

func (m Model) renderDetail() string {
	n, ok := m.Selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  [%s]", m.theme.Title.Render(n.Title), n.Category)
	if n.Message != "" {
		b.WriteString("\n" + n.Message)
	}
	if n.HasAction() {
		b.WriteString("\n" + m.theme.StatusInfo.Render("→ "+n.Action.URL))
	}
	return m.theme.Box.Width(max(20, m.width-4)).Render(b.String())
}

func (m Model) renderStatus() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	}
	if m.status != "" {
		return m.theme.StatusInfo.Render(m.status)
	}
	return ""
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
