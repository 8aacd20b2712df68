// Package header renders the two-row title bar above the conversation.
package header

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/common"
)

// Height is the number of rows View renders.
const Height = 2

// Model holds the state for the header.
type Model struct {
	version string
	session string
	source  string // database path or backend URL
	total   int    // messages in the session, -1 when unknown
	width   int
}

// New returns a header for the given build version.
func New(version string) Model {
	return Model{version: version, total: -1}
}

// SetSession updates the session name.
func (m *Model) SetSession(s string) { m.session = s }

// SetSource updates where history is read from.
func (m *Model) SetSource(s string) { m.source = s }

// SetTotal updates the session's message count. Negative hides it.
func (m *Model) SetTotal(n int) { m.total = n }

// SetWidth updates the terminal width.
func (m *Model) SetWidth(w int) { m.width = w }

// Session returns the session name.
func (m Model) Session() string { return m.session }

// View returns the title row and a separator.
func (m Model) View() string {
	if m.width <= 0 {
		return "\n"
	}
	title := style.ApplyBoldForegroundGrad("◈ OSA history") + style.HeaderMeta.Render(" "+m.version)

	var meta []string
	if m.session != "" {
		meta = append(meta, m.session)
	}
	if m.total >= 0 {
		meta = append(meta, fmt.Sprintf("%s messages", common.HumanCount(m.total)))
	}
	line := title
	if len(meta) > 0 {
		line += style.HeaderSeparator.Render("  ·  ") + style.HeaderMeta.Render(strings.Join(meta, " · "))
	}
	// whatever room is left goes to the path
	if room := m.width - lipgloss.Width(line) - 5; m.source != "" && room >= 12 {
		line += style.HeaderSeparator.Render("  ·  ") + style.HeaderMeta.Render(common.ShortSource(m.source, room))
	}
	return common.FitLine(line, m.width) + "\n" + common.Divider(m.width)
}
