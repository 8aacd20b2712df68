// Package chat renders a conversation from the history store inside the
// virtualized scrollable.
//
// Architecture:
//
//	Item   one message; implements scrollable.Element with a render cache
//	Model  the pane: owns the Scrollable, the page loader and the scrollbar
//
// Rendering is cached per item by (width, theme), so the engine can measure an
// item's height as often as it likes and only re-renders after a resize.
package chat

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/scrollable"
)

// Item is a rendered conversation entry. Its ID is the message UUID.
type Item interface {
	scrollable.Element
	// Render produces the full styled block at the given content width,
	// including the blank separator line below it.
	Render(width int) string
	// Message returns the message the item displays.
	Message() history.Message
}

// ---------------------------------------------------------------------------
// Per-item render cache
// ---------------------------------------------------------------------------

type renderCache struct {
	output string
	width  int
	theme  string
	height int
}

func (c *renderCache) get(width int) (string, bool) {
	if c.output != "" && c.width == width && c.theme == style.CurrentThemeName {
		return c.output, true
	}
	return "", false
}

func (c *renderCache) set(width int, output string) string {
	c.width = width
	c.theme = style.CurrentThemeName
	c.output = output
	c.height = lipgloss.Height(output)
	return output
}

// ---------------------------------------------------------------------------
// Width helpers
// ---------------------------------------------------------------------------

const (
	maxContentWidth = 120
	minContentWidth = 20
)

// clampWidth keeps rendering readable on very wide and very narrow panes.
func clampWidth(w int) int {
	return min(max(w, minContentWidth), maxContentWidth)
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// NewItem wraps m in the item type matching its role.
func NewItem(m history.Message) Item {
	switch m.Role {
	case history.RoleAssistant:
		return &assistantItem{msg: m}
	case history.RoleSystem:
		return &systemItem{msg: m}
	default:
		return &userItem{msg: m}
	}
}

// measure is shared by every item: the height is the rendered line count.
func measure(it Item, cache *renderCache, width int) int {
	if _, ok := cache.get(clampWidth(width)); !ok {
		it.Render(width)
	}
	return cache.height
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return style.MsgMeta.Render("  " + t.Local().Format("Jan 2 15:04"))
}

func block(border lipgloss.Style, cw int, content string) string {
	return border.
		Border(lipgloss.ThickBorder(), false, false, false, true).
		PaddingLeft(1).
		Width(cw).
		Render(content) + "\n"
}

// userItem is a message typed by the user.
type userItem struct {
	msg   history.Message
	cache renderCache
}

func (u *userItem) ID() string               { return u.msg.ID.String() }
func (u *userItem) Message() history.Message { return u.msg }
func (u *userItem) Height(width int) int     { return measure(u, &u.cache, width) }

func (u *userItem) Render(width int) string {
	cw := clampWidth(width)
	if out, ok := u.cache.get(cw); ok {
		return out
	}
	label := style.UserLabel.Render("❯ You") + stamp(u.msg.CreatedAt)
	border := lipgloss.NewStyle().BorderForeground(style.UserColor)
	return u.cache.set(cw, block(border, cw, label+"\n"+u.msg.Content))
}

// assistantItem is a model reply rendered as markdown.
type assistantItem struct {
	msg   history.Message
	cache renderCache
}

func (a *assistantItem) ID() string               { return a.msg.ID.String() }
func (a *assistantItem) Message() history.Message { return a.msg }
func (a *assistantItem) Height(width int) int     { return measure(a, &a.cache, width) }

func (a *assistantItem) Render(width int) string {
	cw := clampWidth(width)
	if out, ok := a.cache.get(cw); ok {
		return out
	}
	label := style.AssistantLabel.Render("◈ OSA") + stamp(a.msg.CreatedAt)
	// border + padding take three columns
	body := renderMarkdown(a.msg.Content, cw-3)
	border := lipgloss.NewStyle().BorderForeground(style.AssistantColor)
	return a.cache.set(cw, block(border, cw, label+"\n"+body))
}

// systemItem is a notice recorded in the conversation (compaction, errors).
type systemItem struct {
	msg   history.Message
	cache renderCache
}

func (s *systemItem) ID() string               { return s.msg.ID.String() }
func (s *systemItem) Message() history.Message { return s.msg }
func (s *systemItem) Height(width int) int     { return measure(s, &s.cache, width) }

func (s *systemItem) Render(width int) string {
	cw := clampWidth(width)
	if out, ok := s.cache.get(cw); ok {
		return out
	}
	text := style.Faint.Render(strings.TrimSpace(s.msg.Content))
	border := lipgloss.NewStyle().BorderForeground(style.SystemColor)
	return s.cache.set(cw, block(border, cw, style.SystemLabel.Render("• system")+"  "+text))
}
