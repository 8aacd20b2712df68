package dialog

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/style"
)

// QuitModel is a two-button confirmation dialog.
//
// Emits QuitConfirmed or Dismissed.
type QuitModel struct {
	activeBtn int // 0=Quit, 1=Cancel
	width     int
	height    int
}

// NewQuit returns a QuitModel with Cancel pre-selected.
func NewQuit() QuitModel {
	return QuitModel{activeBtn: 1}
}

// SetSize constrains the dialog to the terminal dimensions.
func (m *QuitModel) SetSize(w, h int) { m.width, m.height = w, h }

// Update handles keyboard input for the quit dialog.
//
//	q / y / enter on Quit   → QuitConfirmed
//	esc / n / enter on Cancel → Dismissed
//	← → / tab               → cycle buttons
func (m QuitModel) Update(message tea.Msg) (QuitModel, tea.Cmd) {
	kp, ok := message.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kp.String() {
	case "q", "y", "ctrl+c":
		return m, func() tea.Msg { return QuitConfirmed{} }
	case "esc", "n":
		return m, func() tea.Msg { return Dismissed{} }
	case "enter":
		if m.activeBtn == 0 {
			return m, func() tea.Msg { return QuitConfirmed{} }
		}
		return m, func() tea.Msg { return Dismissed{} }
	case "tab", "right", "left", "shift+tab":
		m.activeBtn = (m.activeBtn + 1) % 2
	}
	return m, nil
}

// View renders the dialog centered in the terminal.
func (m QuitModel) View() string {
	dw := 42
	if m.width > 0 {
		dw = dialogWidth(m.width, 30, 42)
	}
	inner := dw - 6

	var sb strings.Builder
	sb.WriteString(GradientTitle("Quit"))
	sb.WriteByte('\n')
	sb.WriteString(rule(inner))
	sb.WriteByte('\n')
	sb.WriteString(lipgloss.NewStyle().Foreground(style.Muted).Render("Close the history viewer?"))
	sb.WriteString("\n\n")
	sb.WriteString(RenderButtons([]ButtonDef{
		{Label: "Quit", Active: m.activeBtn == 0, Danger: true, Underline: 0},
		{Label: "Cancel", Active: m.activeBtn == 1, Underline: -1},
	}, inner))
	sb.WriteString("\n\n")
	sb.WriteString(RenderHelpBar([]HelpItem{
		{Key: "← →", Desc: "navigate"},
		{Key: "enter", Desc: "confirm"},
		{Key: "esc", Desc: "cancel"},
	}, inner))

	return place(m.width, m.height, dw, style.Warning, sb.String())
}
