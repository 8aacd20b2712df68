package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miosa/osa-history/msg"
)

func TestCopyNothing(t *testing.T) {
	assert.Nil(t, Copy(""))
	assert.NotNil(t, Copy("hello"))
}

func TestCopiedNotice(t *testing.T) {
	n := copied(5, nil, false)
	assert.Equal(t, msg.LevelInfo, n.Level)
	assert.Equal(t, "copied 5 characters", n.Text)

	n = copied(5, errors.New("no xclip"), true)
	assert.Equal(t, msg.LevelInfo, n.Level)

	n = copied(5, errors.New("pipe closed"), false)
	assert.Equal(t, msg.LevelWarning, n.Level)
	assert.Contains(t, n.Text, "pipe closed")
}
