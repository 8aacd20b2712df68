// Package common provides shared rendering helpers and formatting utilities
// used across the viewer's UI components.
package common

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/miosa/osa-history/style"
)

// ---------------------------------------------------------------------------
// Text truncation / padding
// ---------------------------------------------------------------------------

// Truncate shortens s to width display columns, appending "…" if truncated.
// ANSI styling in s is preserved.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// FitLine clips or pads one rendered line to exactly width columns.
func FitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "")
	}
	return PadRight(s, width)
}

// PadRight pads s on the right with spaces until the rendered display width
// equals width. Returns s unchanged if it already meets or exceeds width.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// PadCenter centers s within width, padding both sides with spaces.
func PadCenter(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	total := width - w
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// ShortSource shortens where the history comes from, a database path or a
// backend URL, to fit maxWidth columns. URLs lose their scheme; paths try
// ~/relative, then the last two elements, then the base name.
func ShortSource(src string, maxWidth int) string {
	if lipgloss.Width(src) <= maxWidth {
		return src
	}
	if u, err := url.Parse(src); err == nil && u.Host != "" {
		return Truncate(u.Host+strings.TrimSuffix(u.Path, "/"), maxWidth)
	}

	candidates := []string{}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if rel, err := filepath.Rel(home, src); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, "~"+string(filepath.Separator)+rel)
		}
	}
	dir, base := filepath.Split(filepath.Clean(src))
	if parent := filepath.Base(dir); parent != "." && parent != string(filepath.Separator) {
		candidates = append(candidates, filepath.Join("…", parent, base))
	}
	candidates = append(candidates, filepath.Join("…", base))
	for _, c := range candidates {
		if lipgloss.Width(c) <= maxWidth {
			return c
		}
	}
	return Truncate(base, maxWidth)
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	if width <= 0 {
		return ""
	}
	return style.HeaderSeparator.Render(strings.Repeat("─", width))
}

// ---------------------------------------------------------------------------
// Human-readable formatters
// ---------------------------------------------------------------------------

// HumanCount formats a count compactly.
//
//	1_500_000 → "1.5M"
//	3_400     → "3.4k"
//	250       → "250"
func HumanCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
