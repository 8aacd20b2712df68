package chat

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/miosa/osa-history/config"
	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/msg"
	"github.com/miosa/osa-history/ui/common"
	"github.com/miosa/osa-history/ui/scrollable"
)

// wheelStep is how many rows one mouse wheel notch scrolls.
const wheelStep = 3

// Stats is a snapshot of the pane for the status bar.
type Stats struct {
	Loaded       int
	First, Last  int64
	Live         int
	HiddenUp     int
	HiddenDown   int
	Paddings     scrollable.Paddings
	ScrollTop    int
	ScrollHeight int
	Generation   uint64
	AllOlder     bool // the oldest message is loaded
	Following    bool // pinned to the newest message
}

// Model is the conversation pane. It owns the virtualized scrollable, feeds
// it pages from the loader and renders exactly its height in rows.
//
// Model is used through a pointer because the scrollable's callbacks refer
// back to it.
type Model struct {
	sc     *scrollable.Scrollable
	loader *history.Loader
	view   config.ViewConfig
	log    *slog.Logger
	bar    common.ScrollbarModel

	width, height int
	originY       int // screen row of the pane's first line

	first, last int64
	count       int
	ready       bool // the initial page arrived
	follow      bool
	err         error

	wantFrame   bool
	frameQueued bool
	cmds        []tea.Cmd

	dragging bool
	dragY    int
}

// New returns a pane paging through loader's session.
func New(loader *history.Loader, view config.ViewConfig, log *slog.Logger) *Model {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Model{loader: loader, view: view, log: log, follow: true}
	m.sc = scrollable.New(
		scrollable.WithRetentionMargin(view.Margin(0)),
		scrollable.WithOffsetThreshold(view.OffsetThreshold),
		scrollable.WithObserver(scrollable.NewObserver(view.Observer)),
		scrollable.WithScheduler(scrollable.FrameSchedulerFunc(func() { m.wantFrame = true })),
		scrollable.WithLogger(log),
		scrollable.WithMinThumb(view.MinThumb),
	)
	m.sc.OnScrolledTop(m.loadOlder)
	m.sc.OnScrolledBottom(m.loadNewer)
	return m
}

// Scrollable exposes the engine, mostly for diagnostics.
func (m *Model) Scrollable() *scrollable.Scrollable { return m.sc }

// Session returns the session on screen.
func (m *Model) Session() string { return m.loader.Session() }

// Loading reports whether a page load is in flight.
func (m *Model) Loading() bool { return m.loader.Loading() }

// Err returns the error of the last failed initial load.
func (m *Model) Err() error { return m.err }

// Ready reports whether the first page has been shown.
func (m *Model) Ready() bool { return m.ready }

// ---------------------------------------------------------------------------
// Mutation methods called by app
// ---------------------------------------------------------------------------

// SetSize resizes the pane. The rightmost column is the scrollbar.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = max(w, 0), max(h, 0)
	m.sc.SetWidth(m.contentWidth())
	m.sc.SetClientHeight(m.height)
	m.sc.SetRetentionMargin(m.view.Margin(m.height))
	m.bar.SetHeight(m.height)
}

// SetOrigin tells the pane which screen row it starts at, for mouse hits.
func (m *Model) SetOrigin(y int) { m.originY = y }

// ApplyConfig takes reloaded view settings. The observer kind and minimum
// thumb size only change on restart.
func (m *Model) ApplyConfig(v config.ViewConfig) tea.Cmd {
	if v.Observer != m.view.Observer {
		m.log.Info("observer change takes effect on restart", "observer", v.Observer)
	}
	m.view.RetentionMargin = v.RetentionMargin
	m.view.RetentionViewports = v.RetentionViewports
	m.view.OffsetThreshold = v.OffsetThreshold
	m.view.FrameInterval = v.FrameInterval
	m.sc.SetRetentionMargin(m.view.Margin(m.height))
	m.sc.SetOffsetThreshold(m.view.OffsetThreshold)
	return m.flush()
}

// Restyle re-measures the messages on screen after a theme change.
func (m *Model) Restyle() tea.Cmd {
	m.sc.Remeasure()
	return m.flush()
}

// Reload drops everything on screen and loads the newest page again. Loads
// still in flight belong to the old generation and are discarded.
func (m *Model) Reload() tea.Cmd {
	m.sc.Clear()
	m.loader.Reset(m.sc.Generation())
	m.first, m.last, m.count = 0, 0, 0
	m.ready, m.follow, m.err = false, true, nil
	m.queue(m.loader.Load(history.Initial, 0))
	return m.flush()
}

// SwitchSession shows another session.
func (m *Model) SwitchSession(session string) tea.Cmd {
	m.loader.SetSession(session)
	return m.Reload()
}

// ---------------------------------------------------------------------------
// Scrolling
// ---------------------------------------------------------------------------

// ScrollBy scrolls by dy rows.
func (m *Model) ScrollBy(dy int) tea.Cmd {
	m.sc.ScrollBy(dy)
	m.follow = m.sc.AtBottom()
	return m.flush()
}

// PageUp scrolls one viewport up.
func (m *Model) PageUp() tea.Cmd { return m.ScrollBy(-max(m.height-1, 1)) }

// PageDown scrolls one viewport down.
func (m *Model) PageDown() tea.Cmd { return m.ScrollBy(max(m.height-1, 1)) }

// HalfPageUp scrolls half a viewport up.
func (m *Model) HalfPageUp() tea.Cmd { return m.ScrollBy(-max(m.height/2, 1)) }

// HalfPageDown scrolls half a viewport down.
func (m *Model) HalfPageDown() tea.Cmd { return m.ScrollBy(max(m.height/2, 1)) }

// GotoTop scrolls to the first row loaded so far.
func (m *Model) GotoTop() tea.Cmd {
	m.sc.ScrollTo(0)
	m.follow = m.sc.AtBottom()
	return m.flush()
}

// GotoBottom scrolls to the newest message and keeps following it.
func (m *Model) GotoBottom() tea.Cmd {
	m.sc.ScrollToBottom()
	m.follow = true
	return m.flush()
}

// ---------------------------------------------------------------------------
// Bubble Tea interface
// ---------------------------------------------------------------------------

// Update handles frames, page results, tail polls and mouse input.
func (m *Model) Update(message tea.Msg) tea.Cmd {
	switch v := message.(type) {
	case msg.Frame:
		m.frameQueued = false
		m.runFrame(v.Gen)

	case history.PageLoaded:
		m.handlePage(v)

	case msg.TailTick:
		if m.ready && !m.loader.Busy(history.Newer) {
			m.queue(m.loader.Load(history.Newer, m.last))
		}

	case tea.MouseWheelMsg:
		switch v.Button {
		case tea.MouseWheelUp:
			return m.ScrollBy(-wheelStep)
		case tea.MouseWheelDown:
			return m.ScrollBy(wheelStep)
		}

	case tea.MouseClickMsg:
		if v.Button == tea.MouseLeft {
			return m.click(v.X, v.Y-m.originY)
		}

	case tea.MouseMotionMsg:
		if m.dragging {
			y := v.Y - m.originY
			m.sc.DragThumb(y - m.dragY)
			m.dragY = y
			m.follow = m.sc.AtBottom()
		}

	case tea.MouseReleaseMsg:
		m.dragging = false
	}
	return m.flush()
}

func (m *Model) click(x, y int) tea.Cmd {
	if x != m.width-1 || y < 0 || y >= m.height {
		return nil
	}
	top, _ := m.bar.ThumbRows()
	switch {
	case m.bar.OnThumb(y):
		m.dragging, m.dragY = true, y
		return nil
	case y < top:
		return m.PageUp()
	default:
		return m.PageDown()
	}
}

// View renders exactly height rows: the visible part of every live message,
// blank rows where spacers or gaps are visible, and the scrollbar column.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.sc.Len() == 0 {
		return renderEmpty(m.width, m.height, m.loader.Session(), !m.ready && m.err == nil, m.err)
	}

	cw := m.contentWidth()
	rows := make([]string, m.height)
	for _, ve := range m.sc.Visible() {
		it, ok := ve.Element.(Item)
		if !ok {
			continue
		}
		lines := strings.Split(it.Render(cw), "\n")
		// the tracked height wins over whatever the render produced
		for i := range min(ve.Rect.Height(), len(lines)) {
			if y := ve.Rect.Top + i; y >= 0 && y < m.height {
				rows[y] = lines[i]
			}
		}
	}

	cells := m.bar.Cells()
	var sb strings.Builder
	for y, row := range rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(common.FitLine(row, cw))
		sb.WriteByte(' ')
		sb.WriteString(cells[y])
	}
	return sb.String()
}

// LastVisible returns the newest message with at least one row on screen.
func (m *Model) LastVisible() (history.Message, bool) {
	vis := m.sc.Visible()
	for i := len(vis) - 1; i >= 0; i-- {
		if it, ok := vis[i].Element.(Item); ok {
			return it.Message(), true
		}
	}
	return history.Message{}, false
}

// Stats returns a snapshot for the status bar.
func (m *Model) Stats() Stats {
	led := m.sc.Window().Ledger()
	return Stats{
		Loaded:       m.count,
		First:        m.first,
		Last:         m.last,
		Live:         m.sc.Window().LiveLen(),
		HiddenUp:     led.Len(scrollable.Up),
		HiddenDown:   led.Len(scrollable.Down),
		Paddings:     m.sc.Paddings(),
		ScrollTop:    m.sc.ScrollTop(),
		ScrollHeight: m.sc.ScrollHeight(),
		Generation:   m.sc.Generation(),
		AllOlder:     m.sc.LoadedAll(scrollable.Up),
		Following:    m.follow,
	}
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// contentWidth leaves a gap column and the scrollbar column.
func (m *Model) contentWidth() int { return max(m.width-2, 1) }

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.cmds = append(m.cmds, cmd)
	}
}

// flush returns the commands queued since the last call plus a frame tick
// when the engine asked for one and none is in flight.
func (m *Model) flush() tea.Cmd {
	cmds := m.cmds
	m.cmds = nil
	if m.wantFrame && !m.frameQueued {
		m.wantFrame = false
		m.frameQueued = true
		cmds = append(cmds, frameCmd(m.view.FrameInterval.Duration, m.sc.Generation()))
	}
	return tea.Batch(cmds...)
}

func frameCmd(d time.Duration, gen uint64) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return msg.Frame{Gen: gen} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg.Frame{Gen: gen} })
}

func (m *Model) runFrame(gen uint64) {
	if gen != m.sc.Generation() {
		m.log.Debug("frame from an older generation", "generation", gen, "current", m.sc.Generation())
	}
	m.sc.Frame()
	m.bar.SetThumb(m.sc.Thumb())

	if m.follow && !m.sc.AtBottom() {
		// a reflow moved the bottom; stay pinned without counting as a scroll
		m.sc.SetScrollTopSilently(m.sc.MaxScrollTop())
	}
	// nothing to scroll yet: keep filling from above
	if m.ready && m.count > 0 && m.sc.ScrollHeight() <= m.sc.ClientHeight() {
		m.loadOlder()
	}
}

func (m *Model) loadOlder() {
	if !m.ready || m.count == 0 || m.sc.LoadedAll(scrollable.Up) {
		return
	}
	m.queue(m.loader.Load(history.Older, m.first))
}

func (m *Model) loadNewer() {
	if !m.ready {
		return
	}
	m.queue(m.loader.Load(history.Newer, m.last))
}

func (m *Model) handlePage(p history.PageLoaded) {
	if !m.loader.Accept(p) {
		return
	}
	if p.Err != nil {
		m.log.Warn("page load failed", "dir", p.Dir, "session", m.loader.Session(), "err", p.Err)
		if p.Dir == history.Initial {
			m.err = p.Err
		}
		m.queue(notice(msg.LevelError, fmt.Sprintf("loading %s messages: %v", p.Dir, p.Err)))
		return
	}

	switch p.Dir {
	case history.Initial:
		m.err = nil
		m.appendMessages(p.Messages)
		m.sc.MarkLoaded(scrollable.Up, p.Exhausted)
		// Latest is the newest page; tail polls bring anything after it
		m.sc.MarkLoaded(scrollable.Down, true)
		m.sc.SetScrollTopSilently(m.sc.MaxScrollTop())
		m.ready = true

	case history.Older:
		var fresh []history.Message
		for _, hm := range p.Messages {
			if m.count == 0 || hm.Seq < m.first {
				fresh = append(fresh, hm)
			}
		}
		if len(fresh) > 0 {
			m.sc.SaveAnchor(nil, false)
			m.prependMessages(fresh)
			m.sc.RestoreAnchor()
		}
		m.sc.MarkLoaded(scrollable.Up, p.Exhausted)

	case history.Newer:
		var fresh []history.Message
		for _, hm := range p.Messages {
			if hm.Seq > m.last {
				fresh = append(fresh, hm)
			}
		}
		if len(fresh) > 0 {
			m.appendMessages(fresh)
			if m.follow {
				m.sc.ScrollToBottom()
			}
		}
		m.sc.MarkLoaded(scrollable.Down, p.Exhausted)
	}
	m.log.Debug("page shown", "dir", p.Dir, "messages", len(p.Messages), "loaded", m.count,
		"scrollTop", m.sc.ScrollTop(), "scrollHeight", m.sc.ScrollHeight())
}

func (m *Model) appendMessages(msgs []history.Message) {
	if len(msgs) == 0 {
		return
	}
	els := make([]scrollable.Element, len(msgs))
	for i, hm := range msgs {
		els[i] = NewItem(hm)
	}
	m.sc.Append(els...)
	if m.count == 0 {
		m.first = msgs[0].Seq
	}
	m.last = msgs[len(msgs)-1].Seq
	m.count += len(msgs)
}

func (m *Model) prependMessages(msgs []history.Message) {
	els := make([]scrollable.Element, len(msgs))
	for i, hm := range msgs {
		els[i] = NewItem(hm)
	}
	m.sc.Prepend(els...)
	if m.count == 0 {
		m.last = msgs[len(msgs)-1].Seq
	}
	m.first = msgs[0].Seq
	m.count += len(msgs)
}

func notice(level msg.Level, text string) tea.Cmd {
	return func() tea.Msg { return msg.Notice{Level: level, Text: text} }
}
