package tui

import (
	"context"
	"time"

	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/tui/themes"
)

// Source is what the notification center reads from and writes read state to.
// *engine.Engine satisfies it.
type Source interface {
	Feed(ctx context.Context, ownerID string, filter prioritize.Filter) (prioritize.Feed, error)
	Counts(ctx context.Context, ownerID string) (prioritize.Counts, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme           themes.Theme
	Source          Source
	Now             func() time.Time
	OwnerID         string
	Width           int
	Height          int
	RefreshInterval time.Duration
	// Limit caps the rows of every view; 0 shows everything.
	Limit int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:           themes.Default,
		Now:             time.Now,
		Width:           80,
		Height:          24,
		RefreshInterval: 30 * time.Second,
	}
}

// WithSource sets the notification source.
func WithSource(source Source) Option {
	return func(c *Config) {
		c.Source = source
	}
}

// WithOwner scopes the center to one owner's notifications.
func WithOwner(ownerID string) Option {
	return func(c *Config) {
		c.OwnerID = ownerID
	}
}

// WithTheme sets the theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithClock sets the clock used for relative times.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithRefreshInterval sets how often the feed reloads. Zero disables auto refresh.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = d
	}
}

// WithLimit caps the rows of every view.
func WithLimit(n int) Option {
	return func(c *Config) {
		c.Limit = n
	}
}

// WithSize sets the initial dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
