package scrollable

// Side names one edge of the virtual container.
type Side int

const (
	Up   Side = iota // content hidden above the viewport
	Down             // content hidden below the viewport
)

func (s Side) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Up {
		return Down
	}
	return Up
}

// Element is anything the scrollable can track. Identity is the ID: two
// elements with the same ID are the same element.
type Element interface {
	ID() string
	// Height returns the rendered height in rows at the given width.
	Height(width int) int
}

// Rect is a vertical extent in rows. Bottom is exclusive.
type Rect struct {
	Top    int
	Bottom int
}

// Height returns the extent of the rect, never negative.
func (r Rect) Height() int {
	if r.Bottom < r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// Shift returns r moved by dy rows.
func (r Rect) Shift(dy int) Rect {
	return Rect{Top: r.Top + dy, Bottom: r.Bottom + dy}
}

// Intersect returns the overlap of r with root. A zero-height rect counts as
// intersecting when it lies on or inside the root edges, which is how the
// boundary sentinels report that they reached the viewport.
func (r Rect) Intersect(root Rect) (Rect, bool) {
	if r.Height() == 0 {
		if r.Top >= root.Top && r.Top <= root.Bottom {
			return Rect{Top: r.Top, Bottom: r.Top}, true
		}
		return Rect{}, false
	}
	top := max(r.Top, root.Top)
	bottom := min(r.Bottom, root.Bottom)
	if bottom <= top {
		return Rect{}, false
	}
	return Rect{Top: top, Bottom: bottom}, true
}

// sentinel is a zero-content marker standing in for a padding spacer.
type sentinel struct{ side Side }

func (s sentinel) ID() string     { return "\x00sentinel:" + s.side.String() }
func (s sentinel) Height(int) int { return 0 }

var (
	// TopSentinel marks the top padding spacer.
	TopSentinel Element = sentinel{side: Up}
	// BottomSentinel marks the bottom padding spacer.
	BottomSentinel Element = sentinel{side: Down}
)

// SentinelSide reports whether el is one of the boundary sentinels and which
// spacer it stands for.
func SentinelSide(el Element) (Side, bool) {
	s, ok := el.(sentinel)
	if !ok {
		return 0, false
	}
	return s.side, true
}

// Geometry is a read-only snapshot of the layout used by observers.
// Coordinates are viewport-relative: row 0 is the first visible row.
type Geometry interface {
	Root() Rect
	// RectOf returns the rect of a live element or sentinel. Detached
	// elements have no geometry.
	RectOf(el Element) (Rect, bool)
}

// layout is the read-phase measurement of the window: spacer sizes plus the
// virtual offset of every live element.
type layout struct {
	scrollTop    int
	clientHeight int
	padUp        int
	padDown      int
	liveHeight   int
	tops         []int // virtual top per live index
	index        map[string]int
	live         []*tracked
}

func (l *layout) Root() Rect { return Rect{Top: 0, Bottom: l.clientHeight} }

func (l *layout) RectOf(el Element) (Rect, bool) {
	if side, ok := SentinelSide(el); ok {
		return l.spacer(side), true
	}
	i, ok := l.index[el.ID()]
	if !ok {
		return Rect{}, false
	}
	return l.liveRect(i), true
}

func (l *layout) liveRect(i int) Rect {
	top := l.tops[i] - l.scrollTop
	return Rect{Top: top, Bottom: top + l.live[i].height}
}

func (l *layout) spacer(side Side) Rect {
	if side == Up {
		return Rect{Top: 0, Bottom: l.padUp}.Shift(-l.scrollTop)
	}
	top := l.padUp + l.liveHeight
	return Rect{Top: top, Bottom: top + l.padDown}.Shift(-l.scrollTop)
}

func (l *layout) scrollHeight() int { return l.padUp + l.liveHeight + l.padDown }
