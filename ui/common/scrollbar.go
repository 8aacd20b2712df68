package common

import (
	"math"

	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/scrollable"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// ScrollbarModel renders a scrollable.Thumb as a column of terminal cells.
type ScrollbarModel struct {
	height int
	thumb  scrollable.Thumb
}

// NewScrollbar creates a scrollbar for a track of height rows.
func NewScrollbar(height int) ScrollbarModel {
	return ScrollbarModel{height: height}
}

// SetHeight changes the track height.
func (s *ScrollbarModel) SetHeight(h int) { s.height = h }

// SetThumb stores the thumb computed by the engine's last frame.
func (s *ScrollbarModel) SetThumb(t scrollable.Thumb) { s.thumb = t }

// ThumbRows returns the first row and row count of the thumb on the track.
// size is 0 when there is nothing to draw.
func (s ScrollbarModel) ThumbRows() (top, size int) {
	if s.height <= 0 || !s.thumb.Visible() {
		return 0, 0
	}
	size = min(max(int(math.Round(s.thumb.Size)), 1), s.height)
	top = int(math.Round(s.thumb.Offset))
	top = max(min(top, s.height-size), 0)
	return top, size
}

// OnThumb reports whether track row y is covered by the thumb.
func (s ScrollbarModel) OnThumb(y int) bool {
	top, size := s.ThumbRows()
	return size > 0 && y >= top && y < top+size
}

// Cells returns one rendered cell per track row. When there is no thumb the
// cells are blank so the column keeps its width.
func (s ScrollbarModel) Cells() []string {
	if s.height <= 0 {
		return nil
	}
	cells := make([]string, s.height)
	top, size := s.ThumbRows()
	for i := range cells {
		switch {
		case size == 0:
			cells[i] = " "
		case i >= top && i < top+size:
			cells[i] = style.ScrollbarThumb.Render(scrollThumbChar)
		default:
			cells[i] = style.ScrollbarTrack.Render(scrollTrackChar)
		}
	}
	return cells
}
