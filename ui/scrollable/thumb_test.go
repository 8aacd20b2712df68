package scrollable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeThumb(t *testing.T) {
	t.Run("no overflow", func(t *testing.T) {
		assert.False(t, ComputeThumb(20, 20, 0, 1).Visible())
		assert.False(t, ComputeThumb(10, 20, 0, 1).Visible())
	})

	t.Run("zero client height", func(t *testing.T) {
		assert.Equal(t, Thumb{}, ComputeThumb(100, 0, 0, 1))
	})

	t.Run("size and offset", func(t *testing.T) {
		th := ComputeThumb(40, 20, 0, 1)
		assert.InDelta(t, 5, th.Size, 1e-9)
		assert.InDelta(t, 25, th.SizePercent, 1e-9)
		assert.InDelta(t, 0, th.Offset, 1e-9)

		th = ComputeThumb(40, 20, 20, 1)
		assert.InDelta(t, 75, th.OffsetPercent, 1e-9)
		assert.InDelta(t, 15, th.Offset, 1e-9)

		th = ComputeThumb(40, 20, 10, 1)
		assert.InDelta(t, 37.5, th.OffsetPercent, 1e-9)
	})

	t.Run("minimum size", func(t *testing.T) {
		th := ComputeThumb(2000, 20, 0, 1)
		assert.InDelta(t, 1, th.Size, 1e-9)
	})

	t.Run("offset clamped", func(t *testing.T) {
		th := ComputeThumb(40, 20, 500, 1)
		assert.InDelta(t, 100-th.SizePercent, th.OffsetPercent, 1e-9)
	})
}

func TestDragScroll(t *testing.T) {
	th := ComputeThumb(40, 20, 0, 1)
	assert.InDelta(t, 20.0/15.0, DragScroll(1, 40, 20, th), 1e-9)
	assert.Zero(t, DragScroll(1, 20, 20, Thumb{}))
}
