package header

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewShape(t *testing.T) {
	m := New("v1.2.0")
	m.SetWidth(80)
	m.SetSession("main")
	m.SetTotal(1500)
	m.SetSource("/var/lib/osa/history.db")

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, Height)
	for _, l := range lines {
		assert.Equal(t, 80, lipgloss.Width(l))
	}
	plain := ansi.Strip(lines[0])
	assert.Contains(t, plain, "OSA history")
	assert.Contains(t, plain, "main")
	assert.Contains(t, plain, "1.5k messages")
	assert.Contains(t, plain, "history.db")
}

func TestViewDropsSourceWhenNarrow(t *testing.T) {
	m := New("v1.2.0")
	m.SetWidth(40)
	m.SetSession("main")
	m.SetSource("/var/lib/osa/history.db")

	plain := ansi.Strip(m.View())
	assert.NotContains(t, plain, "history.db")
	assert.Len(t, strings.Split(m.View(), "\n"), Height)
}

func TestUnknownTotalHidden(t *testing.T) {
	m := New("dev")
	m.SetWidth(80)
	assert.NotContains(t, ansi.Strip(m.View()), "messages")
	assert.Equal(t, "\n", New("dev").View())
}
