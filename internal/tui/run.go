package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the notification center and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	m := NewModel(ctx, opts...)
	if m.source == nil {
		return fmt.Errorf("notification source is required")
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("notification center failed: %w", err)
	}
	return nil
}
