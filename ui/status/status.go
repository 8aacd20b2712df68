// Package status provides the bottom status bar: a load spinner, transient
// notices, window statistics and key help on a single row.
package status

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/msg"
	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/activity"
	"github.com/miosa/osa-history/ui/anim"
	"github.com/miosa/osa-history/ui/chat"
	"github.com/miosa/osa-history/ui/common"
)

// Height is the number of rows View renders.
const Height = 1

// NoticeTTL is how long a notice stays up.
const NoticeTTL = 5 * time.Second

// clearNotice expires the notice with the matching id.
type clearNotice struct{ id int }

// Model is the status bar state.
type Model struct {
	width   int
	spinner anim.Model
	stats   chat.Stats
	client  int
	help    string
	phrase  int

	notice   *msg.Notice
	noticeID int
}

// New returns an idle status bar.
func New() Model {
	return Model{spinner: anim.New(""), phrase: -1}
}

// SetWidth updates the terminal width.
func (m *Model) SetWidth(w int) { m.width = w }

// SetStats stores the pane snapshot shown on the right of the bar.
func (m *Model) SetStats(s chat.Stats, clientHeight int) {
	m.stats = s
	m.client = clientHeight
}

// SetHelp sets the pre-rendered key help.
func (m *Model) SetHelp(h string) { m.help = h }

// SetLoading starts or stops the spinner. Each start picks a new label.
func (m *Model) SetLoading(loading bool) tea.Cmd {
	if !loading {
		m.spinner.Stop()
		return nil
	}
	if !m.spinner.IsSpinning() {
		var label string
		label, m.phrase = activity.Pick(m.phrase)
		m.spinner.SetLabel(label)
	}
	return m.spinner.Start()
}

// Loading reports whether the spinner runs.
func (m Model) Loading() bool { return m.spinner.IsSpinning() }

// Notify shows n until NoticeTTL passes or another notice replaces it.
func (m *Model) Notify(n msg.Notice) tea.Cmd {
	m.noticeID++
	m.notice = &n
	id := m.noticeID
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg { return clearNotice{id: id} })
}

// Notice returns the notice on screen, if any.
func (m Model) Notice() (msg.Notice, bool) {
	if m.notice == nil {
		return msg.Notice{}, false
	}
	return *m.notice, true
}

// Update handles spinner ticks and notice expiry.
func (m Model) Update(message tea.Msg) (Model, tea.Cmd) {
	switch v := message.(type) {
	case anim.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		return m, cmd
	case clearNotice:
		if v.id == m.noticeID {
			m.notice = nil
		}
	}
	return m, nil
}

// View renders exactly one row of the bar's width.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}
	var left string
	switch {
	case m.notice != nil:
		left = renderNotice(*m.notice)
	case m.spinner.IsSpinning():
		left = m.spinner.View()
	}

	s := m.stats
	stats := LoadedPill(s.Loaded, s.AllOlder) + sep() +
		WindowPill(s.Live, s.HiddenUp, s.HiddenDown) + sep() +
		PositionPill(s.ScrollTop, s.ScrollHeight, m.client)
	if !s.Following && s.ScrollHeight > m.client {
		stats += sep() + style.StatusWarn.Render("scrolled")
	}

	right := stats
	if m.help != "" && lipgloss.Width(left)+lipgloss.Width(stats)+lipgloss.Width(m.help)+8 <= m.width {
		right = m.help + sep() + stats
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// stats lose to a notice on narrow terminals
		return common.FitLine(style.StatusBar.Render(left), m.width)
	}
	line := style.StatusBar.Render(left) + strings.Repeat(" ", gap) + right + " "
	return common.FitLine(line, m.width)
}

func renderNotice(n msg.Notice) string {
	switch n.Level {
	case msg.LevelError:
		return style.ErrorText.Render("✗ ") + style.Faint.Render(n.Text)
	case msg.LevelWarning:
		return style.WarnText.Render("! " + n.Text)
	default:
		return style.Faint.Render("• " + n.Text)
	}
}

func sep() string { return style.StatusKey.Render("  ") }
