package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme is a palette for the viewer.
type Theme struct {
	Name string

	Accent  color.Color // titles, cursor, active buttons
	Info    color.Color // keys, values, filter text
	Warning color.Color
	Danger  color.Color
	Muted   color.Color // secondary text
	Subtle  color.Color // rules, inactive buttons
	Border  color.Color

	// Left-border accent per message role.
	User, Assistant, System color.Color

	Thumb, Track color.Color

	// Gradient endpoints for titles and the spinner.
	GradFrom, GradTo color.Color

	// Markdown is the glamour standard style for assistant messages.
	Markdown string
}

func hexes(name, markdown string, accent, info, warn, danger, muted, subtle, border string) Theme {
	c := lipgloss.Color
	return Theme{
		Name:      name,
		Accent:    c(accent),
		Info:      c(info),
		Warning:   c(warn),
		Danger:    c(danger),
		Muted:     c(muted),
		Subtle:    c(subtle),
		Border:    c(border),
		User:      c(info),
		Assistant: c(accent),
		System:    c(subtle),
		Thumb:     c(accent),
		Track:     c(subtle),
		GradFrom:  c(accent),
		GradTo:    c(info),
		Markdown:  markdown,
	}
}

// Themes maps theme names to their palettes.
var Themes = map[string]Theme{
	"dark":        hexes("dark", "dark", "#7C3AED", "#06B6D4", "#F59E0B", "#EF4444", "#6B7280", "#374151", "#4B5563"),
	"light":       hexes("light", "light", "#6D28D9", "#0891B2", "#D97706", "#DC2626", "#9CA3AF", "#D1D5DB", "#9CA3AF"),
	"catppuccin":  hexes("catppuccin", "dracula", "#CBA6F7", "#89DCEB", "#F9E2AF", "#F38BA8", "#6C7086", "#45475A", "#585B70"),
	"tokyo-night": hexes("tokyo-night", "tokyo-night", "#7AA2F7", "#7DCFFF", "#E0AF68", "#F7768E", "#565F89", "#3B4261", "#414868"),
}

// ThemeNames lists the themes in cycling order. "auto" picks dark or light
// from the terminal background.
var ThemeNames = []string{"auto", "dark", "light", "catppuccin", "tokyo-night"}

// CurrentThemeName is the active theme.
var CurrentThemeName = "dark"

// ResolveTheme maps a configured theme name to a built-in one.
func ResolveTheme(name string, darkBackground bool) string {
	if _, ok := Themes[name]; ok {
		return name
	}
	if darkBackground {
		return "dark"
	}
	return "light"
}
