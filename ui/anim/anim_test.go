package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerLifecycle(t *testing.T) {
	m := New("loading older")
	assert.Empty(t, m.View(), "stopped spinners render nothing")

	cmd := m.Start()
	require.NotNil(t, cmd)
	assert.Nil(t, m.Start(), "one tick chain at a time")
	assert.Contains(t, m.View(), "loading older")

	m, next := m.Update(TickMsg{ID: m.id})
	assert.NotNil(t, next)
	assert.Equal(t, 1, m.frame)

	m, next = m.Update(TickMsg{ID: m.id + 1000})
	assert.Nil(t, next, "ticks for other spinners are ignored")
	assert.Equal(t, 1, m.frame)

	m.Stop()
	m, next = m.Update(TickMsg{ID: m.id})
	assert.Nil(t, next)
	assert.Empty(t, m.View())
	assert.NotNil(t, m.Start(), "restart after the chain died")
}
