package scrollable

// Hidden is a detached element together with the height it had when it was
// hidden. The cached height is authoritative until the owner replaces it.
type Hidden struct {
	Element Element
	Height  int
	width   int
}

// HeightLedger tracks the elements detached on each side of the viewport and
// the padding that stands in for them.
//
// Each side is a stack whose last entry sits nearest the viewport boundary:
// Up is stored in visual order, Down in reverse visual order. Padding always
// equals the sum of cached heights on that side; when it cannot, the ledger
// clamps to zero and reports the drift.
type HeightLedger struct {
	queues  [2][]Hidden
	padding [2]int
	members map[string]Side

	// OnDrift is called whenever padding had to be corrected.
	OnDrift func(side Side, padding int)
}

// NewHeightLedger returns an empty ledger.
func NewHeightLedger() *HeightLedger {
	return &HeightLedger{members: make(map[string]Side)}
}

// Hide records el as the hidden element nearest the boundary on side.
func (l *HeightLedger) Hide(side Side, el Element, height int) {
	l.push(side, Hidden{Element: el, Height: max(height, 0)})
}

func (l *HeightLedger) push(side Side, h Hidden) {
	l.queues[side] = append(l.queues[side], h)
	l.padding[side] += h.Height
	l.members[h.Element.ID()] = side
}

// Bury records el as the hidden element farthest from the boundary on side.
// Appending below hidden content or prepending above it lands here.
func (l *HeightLedger) Bury(side Side, el Element, height int) {
	l.bury(side, Hidden{Element: el, Height: max(height, 0)})
}

func (l *HeightLedger) bury(side Side, h Hidden) {
	l.queues[side] = insertAt(l.queues[side], 0, h)
	l.padding[side] += h.Height
	l.members[h.Element.ID()] = side
}

// Reveal pops the hidden element nearest the boundary on side. It returns
// false when nothing is hidden there.
func (l *HeightLedger) Reveal(side Side) (Hidden, bool) {
	q := l.queues[side]
	if len(q) == 0 {
		if l.padding[side] != 0 {
			l.drift(side)
		}
		return Hidden{}, false
	}
	h := q[len(q)-1]
	q[len(q)-1] = Hidden{}
	l.queues[side] = q[:len(q)-1]
	delete(l.members, h.Element.ID())
	l.shrink(side, h.Height)
	return h, true
}

// Peek returns the hidden element nearest the boundary on side without
// removing it.
func (l *HeightLedger) Peek(side Side) (Hidden, bool) {
	q := l.queues[side]
	if len(q) == 0 {
		return Hidden{}, false
	}
	return q[len(q)-1], true
}

// InsertBefore places el visually above the hidden element ref. It reports
// the side el landed on, or false when ref is not hidden.
func (l *HeightLedger) InsertBefore(el Element, height int, ref Element) (Side, bool) {
	return l.insertBefore(Hidden{Element: el, Height: max(height, 0)}, ref.ID())
}

func (l *HeightLedger) insertBefore(h Hidden, refID string) (Side, bool) {
	side, ok := l.members[refID]
	if !ok {
		return 0, false
	}
	q := l.queues[side]
	i := l.indexOf(side, refID)
	if side == Down {
		// reverse storage: visually above means nearer the boundary
		i++
	}
	l.queues[side] = insertAt(q, i, h)
	l.padding[side] += h.Height
	l.members[h.Element.ID()] = side
	return side, true
}

// Remove drops el from whichever side holds it.
func (l *HeightLedger) Remove(el Element) (Hidden, bool) {
	side, ok := l.members[el.ID()]
	if !ok {
		return Hidden{}, false
	}
	id := el.ID()
	q, h, _ := removeFirst(l.queues[side], func(h Hidden) bool { return h.Element.ID() == id })
	l.queues[side] = q
	delete(l.members, id)
	l.shrink(side, h.Height)
	return h, true
}

// Update replaces the cached height of a hidden element.
func (l *HeightLedger) Update(el Element, height int) bool {
	side, ok := l.members[el.ID()]
	if !ok {
		return false
	}
	i := l.indexOf(side, el.ID())
	h := &l.queues[side][i]
	l.padding[side] += max(height, 0) - h.Height
	h.Height = max(height, 0)
	h.Element = el
	return true
}

// Lookup reports which side hides the element with the given ID.
func (l *HeightLedger) Lookup(id string) (Side, bool) {
	side, ok := l.members[id]
	return side, ok
}

// Padding returns the spacer height for side.
func (l *HeightLedger) Padding(side Side) int { return l.padding[side] }

// Len returns how many elements are hidden on side.
func (l *HeightLedger) Len(side Side) int { return len(l.queues[side]) }

// Each visits the hidden elements of side in visual order, top to bottom.
func (l *HeightLedger) Each(side Side, fn func(Hidden) bool) {
	q := l.queues[side]
	if side == Down {
		eachReverse(q, func(_ int, h Hidden) bool { return fn(h) })
		return
	}
	for _, h := range q {
		if !fn(h) {
			return
		}
	}
}

// Reset forgets everything hidden on both sides.
func (l *HeightLedger) Reset() {
	l.queues = [2][]Hidden{}
	l.padding = [2]int{}
	clear(l.members)
}

func (l *HeightLedger) indexOf(side Side, id string) int {
	for i, h := range l.queues[side] {
		if h.Element.ID() == id {
			return i
		}
	}
	return -1
}

func (l *HeightLedger) shrink(side Side, height int) {
	l.padding[side] -= height
	if l.padding[side] < 0 || (len(l.queues[side]) == 0 && l.padding[side] != 0) {
		l.drift(side)
	}
}

func (l *HeightLedger) drift(side Side) {
	if l.OnDrift != nil {
		l.OnDrift(side, l.padding[side])
	}
	l.padding[side] = 0
}
