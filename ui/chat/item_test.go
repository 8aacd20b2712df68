package chat

import (
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-history/history"
	"github.com/miosa/osa-history/style"
)

func message(role history.Role, content string) history.Message {
	return history.Message{
		ID:        history.StableID("items", 1),
		Session:   "items",
		Seq:       1,
		Role:      role,
		Content:   content,
		CreatedAt: time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewItemPicksRole(t *testing.T) {
	tests := []struct {
		role  history.Role
		label string
	}{
		{history.RoleUser, "You"},
		{history.RoleAssistant, "OSA"},
		{history.RoleSystem, "system"},
		{"", "You"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			it := NewItem(message(tt.role, "hello"))
			out := ansi.Strip(it.Render(60))
			assert.Contains(t, out, tt.label)
			assert.Contains(t, out, "hello")
			assert.Equal(t, history.StableID("items", 1).String(), it.ID())
		})
	}
}

func TestItemHeightMatchesRender(t *testing.T) {
	long := "a fairly long line of text that will certainly wrap once the pane gets narrow enough to force it"
	for _, role := range []history.Role{history.RoleUser, history.RoleAssistant, history.RoleSystem} {
		it := NewItem(message(role, long))
		for _, w := range []int{20, 40, 80, 200} {
			assert.Equal(t, lipgloss.Height(it.Render(w)), it.Height(w), "%s at %d", role, w)
		}
	}
}

func TestItemRewrapsOnWidthChange(t *testing.T) {
	it := NewItem(message(history.RoleUser, "one two three four five six seven eight nine ten eleven twelve"))

	wide := it.Height(120)
	narrow := it.Height(24)

	assert.Greater(t, narrow, wide)
	assert.Equal(t, wide, it.Height(120))
}

func TestItemCacheFollowsTheme(t *testing.T) {
	t.Cleanup(func() { style.SetTheme("dark") })
	require.True(t, style.SetTheme("dark"))
	it := NewItem(message(history.RoleUser, "hi")).(*userItem)
	it.Render(60)
	require.Equal(t, "dark", it.cache.theme)

	require.True(t, style.SetTheme("light"))
	it.Render(60)
	assert.Equal(t, "light", it.cache.theme)
}

func TestItemIncludesTimestampAndSeparator(t *testing.T) {
	out := NewItem(message(history.RoleUser, "hi")).Render(60)
	assert.Contains(t, ansi.Strip(out), "Mar 4")
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

func TestRenderMarkdownFallsBackOnBlank(t *testing.T) {
	assert.Equal(t, "  ", renderMarkdown("  ", 40))
	assert.Contains(t, ansi.Strip(renderMarkdown("**bold** text", 40)), "bold text")
}
