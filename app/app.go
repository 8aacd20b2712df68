package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-history/config"
	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/msg"
	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/anim"
	"github.com/miosa/osa-history/ui/chat"
	"github.com/miosa/osa-history/ui/clipboard"
	"github.com/miosa/osa-history/ui/common"
	"github.com/miosa/osa-history/ui/dialog"
	"github.com/miosa/osa-history/ui/header"
	"github.com/miosa/osa-history/ui/status"
)

// TailInterval is how often the open session is polled for new messages.
const TailInterval = 2 * time.Second

// catalogTimeout bounds session listing and counting.
const catalogTimeout = 5 * time.Second

// Catalog lists sessions and counts their messages. *history.Store and
// *history.Remote implement it; without one the session browser is disabled.
type Catalog interface {
	Sessions(ctx context.Context) ([]history.SessionSummary, error)
	Count(ctx context.Context, session string) (int, error)
}

// Options configures the root model.
type Options struct {
	Loader         *history.Loader
	Catalog        Catalog // optional
	Config         *config.Config
	Version        string
	Source         string // database path or backend URL, for the header
	DarkBackground bool
	Log            *slog.Logger
}

// -- Internal message types ---------------------------------------------------

type sessionsLoaded struct {
	list []history.SessionSummary
	err  error
}

type totalLoaded struct {
	session string
	n       int
	err     error
}

// -- Model --------------------------------------------------------------------

// Model is the root Bubble Tea model. It owns every sub-model and the wiring
// between the loader, the catalog and the chat pane.
type Model struct {
	header   header.Model
	chat     *chat.Model
	status   status.Model
	sessions dialog.SessionsModel
	quit     dialog.QuitModel

	state  State
	layout Layout
	keys   KeyMap

	config  *config.Config
	catalog Catalog
	log     *slog.Logger
	darkBG  bool

	width  int
	height int
}

// New constructs the root model.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	m := Model{
		header:   header.New(opts.Version),
		chat:     chat.New(opts.Loader, cfg.View, log),
		status:   status.New(),
		sessions: dialog.NewSessions(),
		quit:     dialog.NewQuit(),
		state:    StateLoading,
		keys:     DefaultKeyMap(),
		config:   cfg,
		catalog:  opts.Catalog,
		log:      log,
		darkBG:   opts.DarkBackground,
	}
	if m.catalog == nil {
		m.keys.Sessions.SetEnabled(false)
	}
	m.header.SetSession(opts.Loader.Session())
	m.header.SetSource(opts.Source)
	m.status.SetHelp(common.KeyHelp(m.keys.ShortHelp()...))
	return m
}

// -- Init ---------------------------------------------------------------------

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return tea.RequestWindowSize() },
		m.chat.Reload(),
		m.countMessages(),
		tailTick(),
	)
}

// -- Update -------------------------------------------------------------------

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch v := rawMsg.(type) {

	case tea.WindowSizeMsg:
		m.resize(v.Width, v.Height)

	case tea.KeyPressMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(v)
		cmds = append(cmds, cmd)

	case tea.MouseWheelMsg, tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		if !m.state.overlay() {
			cmds = append(cmds, m.chat.Update(v))
		}

	case msg.Frame, history.PageLoaded:
		cmds = append(cmds, m.chat.Update(v))

	case msg.TailTick:
		cmds = append(cmds, m.chat.Update(v), tailTick())

	case msg.Notice:
		cmds = append(cmds, m.status.Notify(v))

	case msg.ConfigReloaded:
		cmds = append(cmds, m.applyConfig(v))

	case msg.ImportResult:
		cmds = append(cmds, m.handleImport(v))

	case sessionsLoaded:
		if v.err != nil {
			m.log.Warn("list sessions", "err", v.err)
			cmds = append(cmds, m.status.Notify(msg.Notice{Level: msg.LevelError, Text: "listing sessions: " + v.err.Error()}))
			break
		}
		m.sessions.SetSize(m.width, m.height)
		m.sessions.SetSessions(v.list, m.chat.Session())
		m.state = StateSessions

	case totalLoaded:
		if v.session != m.chat.Session() {
			break
		}
		if v.err != nil {
			m.log.Debug("count messages", "session", v.session, "err", v.err)
			m.header.SetTotal(-1)
			break
		}
		m.header.SetTotal(v.n)

	case dialog.SessionChosen:
		m.state = StateLoading
		if v.Session != m.chat.Session() {
			cmds = append(cmds, m.switchSession(v.Session))
		}

	case dialog.Dismissed:
		m.state = StateLoading

	case dialog.QuitConfirmed:
		return m, tea.Quit

	case anim.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(v)
		cmds = append(cmds, cmd)

	default:
		// notice expiry
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(rawMsg)
		cmds = append(cmds, cmd)
	}

	m.syncState()
	cmds = append(cmds, m.status.SetLoading(m.chat.Loading()))
	return m, tea.Batch(cmds...)
}

// syncState derives the browsing state from the chat pane unless a dialog
// is open.
func (m *Model) syncState() {
	switch {
	case m.state.overlay():
	case m.chat.Err() != nil:
		m.state = StateError
	case m.chat.Ready():
		m.state = StateBrowsing
	default:
		m.state = StateLoading
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.layout = ComputeLayout(w, h)
	m.header.SetWidth(w)
	m.status.SetWidth(w)
	m.chat.SetSize(m.layout.ChatWidth, m.layout.ChatHeight)
	m.chat.SetOrigin(m.layout.ChatY)
	m.sessions.SetSize(w, h)
	m.quit.SetSize(w, h)
}

// -- Key handling -------------------------------------------------------------

func (m Model) handleKey(k tea.KeyPressMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case StateSessions:
		m.sessions, cmd = m.sessions.Update(k)
		return m, cmd
	case StateQuit:
		m.quit, cmd = m.quit.Update(k)
		return m, cmd
	}

	switch {
	case key.Matches[tea.KeyPressMsg](k, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches[tea.KeyPressMsg](k, m.keys.Quit):
		m.quit = dialog.NewQuit()
		m.quit.SetSize(m.width, m.height)
		m.state = StateQuit
		return m, nil

	case key.Matches[tea.KeyPressMsg](k, m.keys.ScrollUp):
		return m, m.chat.ScrollBy(-1)
	case key.Matches[tea.KeyPressMsg](k, m.keys.ScrollDown):
		return m, m.chat.ScrollBy(1)
	case key.Matches[tea.KeyPressMsg](k, m.keys.HalfPageUp):
		return m, m.chat.HalfPageUp()
	case key.Matches[tea.KeyPressMsg](k, m.keys.HalfPageDown):
		return m, m.chat.HalfPageDown()
	case key.Matches[tea.KeyPressMsg](k, m.keys.PageUp):
		return m, m.chat.PageUp()
	case key.Matches[tea.KeyPressMsg](k, m.keys.PageDown):
		return m, m.chat.PageDown()
	case key.Matches[tea.KeyPressMsg](k, m.keys.ScrollTop):
		return m, m.chat.GotoTop()
	case key.Matches[tea.KeyPressMsg](k, m.keys.ScrollBottom):
		return m, m.chat.GotoBottom()

	case key.Matches[tea.KeyPressMsg](k, m.keys.Reload):
		m.log.Info("reload", "session", m.chat.Session())
		return m, tea.Batch(m.chat.Reload(), m.countMessages())

	case key.Matches[tea.KeyPressMsg](k, m.keys.Sessions):
		return m, m.listSessions()

	case key.Matches[tea.KeyPressMsg](k, m.keys.Theme):
		return m, m.cycleTheme()

	case key.Matches[tea.KeyPressMsg](k, m.keys.Copy):
		if last, ok := m.chat.LastVisible(); ok {
			return m, clipboard.Copy(last.Content)
		}
	}
	return m, nil
}

// -- Actions ------------------------------------------------------------------

func (m *Model) switchSession(session string) tea.Cmd {
	m.log.Info("switch session", "from", m.chat.Session(), "to", session)
	m.header.SetSession(session)
	m.header.SetTotal(-1)
	return tea.Batch(m.chat.SwitchSession(session), m.countMessages())
}

func (m *Model) cycleTheme() tea.Cmd {
	names := slices.DeleteFunc(slices.Clone(style.ThemeNames), func(n string) bool { return n == "auto" })
	next := names[(slices.Index(names, style.CurrentThemeName)+1)%len(names)]
	return m.setTheme(next)
}

func (m *Model) setTheme(name string) tea.Cmd {
	if name == style.CurrentThemeName || !style.SetTheme(name) {
		return nil
	}
	m.status.SetHelp(common.KeyHelp(m.keys.ShortHelp()...))
	return tea.Batch(m.chat.Restyle(), m.status.Notify(msg.Notice{Level: msg.LevelInfo, Text: "theme " + name}))
}

func (m *Model) applyConfig(v msg.ConfigReloaded) tea.Cmd {
	if v.Config == nil {
		m.log.Warn("config reload failed", "err", v.Err)
		return m.status.Notify(msg.Notice{Level: msg.LevelWarning, Text: "config: " + v.Err.Error()})
	}
	notice := msg.Notice{Level: msg.LevelInfo, Text: "config reloaded"}
	if v.Err != nil {
		// corrected values are usable
		m.log.Warn("config corrected", "err", v.Err)
		notice = msg.Notice{Level: msg.LevelWarning, Text: "config corrected: " + v.Err.Error()}
	}
	m.config = v.Config
	m.log.Info("config reloaded",
		"retention_margin", v.Config.View.RetentionMargin,
		"offset_threshold", v.Config.View.OffsetThreshold)
	return tea.Batch(
		m.chat.ApplyConfig(v.Config.View),
		m.setTheme(style.ResolveTheme(v.Config.Theme, m.darkBG)),
		m.status.Notify(notice),
	)
}

func (m *Model) handleImport(r msg.ImportResult) tea.Cmd {
	if r.Err != nil {
		m.log.Warn("import failed", "session", r.Session, "err", r.Err)
		return m.status.Notify(msg.Notice{Level: msg.LevelError, Text: fmt.Sprintf("import %s: %v", r.Session, r.Err)})
	}
	cmds := []tea.Cmd{m.status.Notify(msg.Notice{
		Level: msg.LevelInfo,
		Text:  fmt.Sprintf("imported %s messages into %s", common.HumanCount(r.Count), r.Session),
	})}
	if r.Session == m.chat.Session() {
		cmds = append(cmds, m.chat.Reload(), m.countMessages())
	}
	return tea.Batch(cmds...)
}

func (m Model) listSessions() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	cat := m.catalog
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		list, err := cat.Sessions(ctx)
		return sessionsLoaded{list: list, err: err}
	}
}

func (m Model) countMessages() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	cat, session := m.catalog, m.chat.Session()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		n, err := cat.Count(ctx, session)
		return totalLoaded{session: session, n: n, err: err}
	}
}

func tailTick() tea.Cmd {
	return tea.Tick(TailInterval, func(time.Time) tea.Msg { return msg.TailTick{} })
}

// -- View ---------------------------------------------------------------------

// View returns the tea.View for the current frame.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderView())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// renderView composes the full terminal frame as a string.
func (m Model) renderView() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	switch m.state {
	case StateSessions:
		return m.sessions.View()
	case StateQuit:
		return m.quit.View()
	}

	st := m.status
	st.SetStats(m.chat.Stats(), m.layout.ChatHeight)
	return strings.Join([]string{m.header.View(), m.chat.View(), st.View()}, "\n")
}

// State returns the current state.
func (m Model) State() State { return m.state }

// Chat exposes the chat pane.
func (m Model) Chat() *chat.Model { return m.chat }

var _ tea.Model = Model{}
