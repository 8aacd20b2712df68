// Package anim provides the gradient spinner shown while history pages load.
//
// The spinner only ticks while Start has been called; Stop makes View empty
// and lets the tick chain die out on its next message.
package anim

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-history/style"
)

const (
	fps           = 12
	frameDuration = time.Second / fps
)

// frames is the Braille-dot spinner sequence.
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// idCounter gives each Model a unique ID so ticks don't cross-talk.
var idCounter atomic.Int64

// TickMsg advances the spinner with the matching ID.
type TickMsg struct {
	ID int64
}

// Model is a gradient Braille spinner with an optional label.
type Model struct {
	id       int64
	label    string
	spinning bool
	ticking  bool
	frame    int

	theme    string
	rendered []string
}

// New returns a stopped spinner using the current theme gradient.
func New(label string) Model {
	m := Model{id: idCounter.Add(1), label: label}
	m.recolor()
	return m
}

// Update advances the animation on each TickMsg addressed to this model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id {
		return m, nil
	}
	if !m.spinning {
		m.ticking = false
		return m, nil
	}
	if m.theme != style.CurrentThemeName {
		m.recolor()
	}
	m.frame = (m.frame + 1) % len(frames)
	return m, m.tick()
}

// View renders the current frame, or "" when stopped.
func (m Model) View() string {
	if !m.spinning {
		return ""
	}
	glyph := m.rendered[m.frame%len(m.rendered)]
	if m.label == "" {
		return glyph
	}
	return glyph + " " + style.Faint.Render(m.label)
}

// SetLabel changes the label shown next to the glyph.
func (m *Model) SetLabel(s string) { m.label = s }

// IsSpinning reports whether the animation is running.
func (m Model) IsSpinning() bool { return m.spinning }

// Start begins the animation and returns the first tick, or nil when a tick
// chain is already running.
func (m *Model) Start() tea.Cmd {
	m.spinning = true
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.tick()
}

// Stop halts the animation.
func (m *Model) Stop() { m.spinning = false }

func (m Model) tick() tea.Cmd {
	id := m.id
	return tea.Tick(frameDuration, func(time.Time) tea.Msg {
		return TickMsg{ID: id}
	})
}

// recolor pre-renders one glyph per frame along the theme gradient. A sine
// wave makes the color bounce between the endpoints instead of wrapping.
func (m *Model) recolor() {
	m.theme = style.CurrentThemeName
	a, b := style.GradFrom, style.GradTo
	n := len(frames)
	m.rendered = make([]string, n)
	for i, glyph := range frames {
		t := (math.Sin(math.Pi*float64(i)/float64(n-1)) + 1) / 2
		m.rendered[i] = lipgloss.NewStyle().Foreground(style.Blend(a, b, t)).Render(glyph)
	}
}
