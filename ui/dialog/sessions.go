package dialog

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/common"
)

// SessionEntry describes a single stored session shown in the browser.
type SessionEntry struct {
	history.SessionSummary
	Active bool // currently open session
}

// SessionsModel is a filterable session browser.
//
// Emits SessionChosen on enter and Dismissed on esc.
type SessionsModel struct {
	sessions []SessionEntry
	filtered []SessionEntry
	cursor   int
	filter   InputCursor

	width, height int
	pageSize      int
	offset        int
}

// NewSessions returns an empty browser.
func NewSessions() SessionsModel {
	return SessionsModel{pageSize: 14, filter: InputCursor{Focused: true}}
}

// SetSessions populates the browser and puts the cursor on active.
func (m *SessionsModel) SetSessions(list []history.SessionSummary, active string) {
	m.sessions = make([]SessionEntry, len(list))
	for i, s := range list {
		m.sessions[i] = SessionEntry{SessionSummary: s, Active: s.Session == active}
	}
	m.filter.SetValue("")
	m.applyFilter()
	for i, s := range m.filtered {
		if s.Active {
			m.cursor = i
			m.scrollToCursor()
			break
		}
	}
}

// SetSize updates terminal dimensions.
func (m *SessionsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.pageSize = max(h-12, 4)
	m.scrollToCursor()
}

// Selected returns the entry under the cursor.
func (m SessionsModel) Selected() (SessionEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return SessionEntry{}, false
	}
	return m.filtered[m.cursor], true
}

// Update handles keyboard input.
//
//	↑ ↓ / ctrl+p ctrl+n  move the cursor
//	pgup pgdown          move a page
//	enter                open the selected session
//	esc                  close
//	backspace            edit the filter
//	any other text       append to the filter
func (m SessionsModel) Update(message tea.Msg) (SessionsModel, tea.Cmd) {
	kp, ok := message.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kp.String() {
	case "up", "ctrl+p":
		m.move(-1)
		return m, nil
	case "down", "ctrl+n":
		m.move(1)
		return m, nil
	case "pgup":
		m.move(-m.pageSize)
		return m, nil
	case "pgdown":
		m.move(m.pageSize)
		return m, nil
	case "enter":
		if e, ok := m.Selected(); ok {
			name := e.Session
			return m, func() tea.Msg { return SessionChosen{Session: name} }
		}
		return m, nil
	case "esc":
		return m, func() tea.Msg { return Dismissed{} }
	case "backspace":
		m.filter.Backspace()
		m.applyFilter()
		return m, nil
	}

	if kp.Text != "" && kp.Mod&^tea.ModShift == 0 {
		for _, r := range kp.Text {
			m.filter.Insert(r)
		}
		m.applyFilter()
	}
	return m, nil
}

func (m *SessionsModel) move(d int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+d, 0), len(m.filtered)-1)
	m.scrollToCursor()
}

func (m *SessionsModel) applyFilter() {
	q := strings.ToLower(m.filter.Value)
	m.filtered = m.filtered[:0]
	for _, s := range m.sessions {
		if q == "" || strings.Contains(strings.ToLower(s.Session), q) {
			m.filtered = append(m.filtered, s)
		}
	}
	m.cursor, m.offset = 0, 0
}

func (m *SessionsModel) scrollToCursor() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
	m.offset = max(m.offset, 0)
}

// View renders the browser centered in the terminal.
func (m SessionsModel) View() string {
	dw := dialogWidth(m.width, 40, 80)
	inner := dw - 6

	var sb strings.Builder
	sb.WriteString(GradientTitle("Sessions"))
	sb.WriteByte('\n')
	sb.WriteString(rule(inner))
	sb.WriteByte('\n')

	filter := m.filter.View()
	if m.filter.Value == "" {
		filter = style.Faint.Render("type to filter...")
	}
	sb.WriteString(style.DialogHelpKey.Render("Filter: ") + filter)
	sb.WriteByte('\n')
	sb.WriteString(rule(inner))
	sb.WriteByte('\n')

	if len(m.filtered) == 0 {
		sb.WriteString(style.Faint.Render("  No sessions found"))
		sb.WriteByte('\n')
	} else {
		end := min(m.offset+m.pageSize, len(m.filtered))
		if m.offset > 0 {
			sb.WriteString(style.Faint.Render("  ↑ more above"))
			sb.WriteByte('\n')
		}
		for i := m.offset; i < end; i++ {
			sb.WriteString(common.Truncate(m.renderEntry(m.filtered[i], i == m.cursor), inner))
			sb.WriteByte('\n')
		}
		if end < len(m.filtered) {
			sb.WriteString(style.Faint.Render("  ↓ more below"))
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(rule(inner))
	sb.WriteByte('\n')
	sb.WriteString(RenderHelpBar([]HelpItem{
		{Key: "↑↓", Desc: "navigate"},
		{Key: "enter", Desc: "open"},
		{Key: "esc", Desc: "close"},
	}, inner))

	return place(m.width, m.height, dw, style.Border, sb.String())
}

func (m SessionsModel) renderEntry(e SessionEntry, isCursor bool) string {
	cursor := "  "
	if isCursor {
		cursor = style.DialogCursor.Render("> ")
	}
	mark := style.Faint.Render("○ ")
	if e.Active {
		mark = style.DialogSelected.Render("● ")
	}
	title := style.Faint.Render(e.Session)
	if isCursor {
		title = style.DialogSelected.Render(e.Session)
	}

	meta := []string{fmt.Sprintf("%s msgs", common.HumanCount(e.Messages))}
	if !e.Updated.IsZero() {
		meta = append([]string{e.Updated.Local().Format("Jan 2 15:04")}, meta...)
	}
	return cursor + mark + title + style.Faint.Render("  "+strings.Join(meta, " · "))
}
