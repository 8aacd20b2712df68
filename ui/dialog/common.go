// Package dialog provides the modal overlays: the session browser and the
// quit confirmation. Dialogs only handle keys and emit result messages; the
// root model decides when to open and dismiss them.
package dialog

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/style"
)

// SessionChosen is emitted when the user picks a session in the browser.
type SessionChosen struct{ Session string }

// Dismissed is emitted when a dialog closes without a result.
type Dismissed struct{}

// QuitConfirmed is emitted when the user confirms quitting.
type QuitConfirmed struct{}

// GradientTitle renders a dialog title with the theme gradient coloring.
func GradientTitle(title string) string {
	return style.ApplyBoldForegroundGrad(title)
}

// rule is a horizontal separator inside a dialog.
func rule(width int) string {
	return style.DialogRule.Render(strings.Repeat("─", max(width, 1)))
}

// place centers a framed box in a terminal of w×h, falling back to a
// conventional size before the first WindowSizeMsg.
func place(w, h, boxWidth int, border color.Color, content string) string {
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	box := style.DialogFrame.BorderForeground(border).Width(boxWidth).Render(content)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

// dialogWidth clamps a dialog to the terminal, between lo and hi columns.
func dialogWidth(termW, lo, hi int) int {
	return min(max(termW-4, lo), hi)
}

// ButtonDef defines a single button in a dialog button group.
type ButtonDef struct {
	Label     string
	Active    bool
	Danger    bool // red styling for destructive actions
	Underline int  // index of the hotkey rune, -1 for none
}

// RenderButtons renders a horizontal button group centered within width.
func RenderButtons(buttons []ButtonDef, width int) string {
	var parts []string
	for _, btn := range buttons {
		label := btn.Label
		if btn.Underline >= 0 && btn.Underline < utf8.RuneCountInString(label) {
			runes := []rune(label)
			label = string(runes[:btn.Underline]) +
				lipgloss.NewStyle().Underline(true).Render(string(runes[btn.Underline])) +
				string(runes[btn.Underline+1:])
		}

		switch {
		case btn.Active && btn.Danger:
			parts = append(parts, style.ButtonDanger.Render(label))
		case btn.Active:
			parts = append(parts, style.ButtonActive.Render(label))
		default:
			parts = append(parts, style.ButtonInactive.Render(label))
		}
	}
	return center(strings.Join(parts, "  "), width)
}

// HelpItem is a single key+description pair shown in a help bar.
type HelpItem struct {
	Key  string
	Desc string
}

// RenderHelpBar renders a row of keyboard shortcuts at the dialog bottom.
func RenderHelpBar(items []HelpItem, width int) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, style.DialogHelpKey.Render(item.Key)+style.DialogHelp.Render(" "+item.Desc))
	}
	return center(strings.Join(parts, style.DialogHelp.Render("  ·  ")), width)
}

func center(s string, width int) string {
	if w := lipgloss.Width(s); width > w {
		return strings.Repeat(" ", (width-w)/2) + s
	}
	return s
}

// InputCursor is a minimal single-line editor used for the filter box.
type InputCursor struct {
	Value   string
	Cursor  int // rune offset into Value
	Focused bool
}

// View renders the value with a block cursor at the insertion point.
func (ic InputCursor) View() string {
	runes := []rune(ic.Value)
	cur := min(max(ic.Cursor, 0), len(runes))
	left, right := string(runes[:cur]), runes[cur:]

	var cursor string
	switch {
	case !ic.Focused && len(right) > 0:
		cursor, right = string(right[0]), right[1:]
	case !ic.Focused:
	case len(right) > 0:
		cursor, right = style.ButtonActive.Padding(0).Render(string(right[0])), right[1:]
	default:
		cursor = style.ButtonActive.Padding(0).Render(" ")
	}
	return style.DialogInput.Render(left) + cursor +
		style.DialogInput.Render(string(right))
}

// Insert inserts a rune at the cursor and advances it.
func (ic *InputCursor) Insert(ch rune) {
	runes := []rune(ic.Value)
	cur := min(max(ic.Cursor, 0), len(runes))
	runes = append(runes[:cur], append([]rune{ch}, runes[cur:]...)...)
	ic.Value = string(runes)
	ic.Cursor = cur + 1
}

// Backspace deletes the rune before the cursor.
func (ic *InputCursor) Backspace() {
	runes := []rune(ic.Value)
	cur := min(ic.Cursor, len(runes))
	if cur <= 0 {
		return
	}
	ic.Value = string(append(runes[:cur-1], runes[cur:]...))
	ic.Cursor = cur - 1
}

// SetValue replaces the value and moves the cursor to the end.
func (ic *InputCursor) SetValue(s string) {
	ic.Value = s
	ic.Cursor = utf8.RuneCountInString(s)
}
