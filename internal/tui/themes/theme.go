package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/pulse/internal/model"
)

// Theme defines the visual style for the notification center.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Dimmed      lipgloss.Style
	Selected    lipgloss.Style
	Urgent      lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Badge       lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	Box         lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Error       lipgloss.Color
	Warning     lipgloss.Color
}

func build(primary, secondary, fg, muted, border, selectedFg, errColor, warn, info lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,
		Error:   errColor,
		Warning: warn,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Subtitle: lipgloss.NewStyle().
			Foreground(secondary),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Dimmed: lipgloss.NewStyle().
			Foreground(muted),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(selectedFg).
			Bold(true),
		Urgent: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		Tab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(selectedFg).
			Background(primary).
			Bold(true).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(warn).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(info),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#a3a3a3"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#3b82f6"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#a6adc8"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#1e1e2e"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#89dceb"),
)

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// CategoryIcons maps notification categories to icons.
var CategoryIcons = map[model.Category]string{
	model.CategoryOrder:     "🛒",
	model.CategoryDelivery:  "🚚",
	model.CategoryPayment:   "💳",
	model.CategoryInventory: "📦",
	model.CategoryCustomer:  "👤",
	model.CategoryAlert:     "🚨",
	model.CategoryTask:      "✅",
	model.CategoryApproval:  "📝",
	model.CategoryDeadline:  "⏰",
	model.CategoryInfo:      "ℹ️",
}

// GetCategoryIcon returns an icon for a category.
func GetCategoryIcon(c model.Category) string {
	if icon, ok := CategoryIcons[c]; ok {
		return icon
	}
	return "•"
}
