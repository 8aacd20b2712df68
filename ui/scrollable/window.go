package scrollable

import (
	"log/slog"
)

// WindowState is the per-side phase of the window manager.
type WindowState int

const (
	Settled WindowState = iota
	Detaching
	Reattaching
)

func (s WindowState) String() string {
	switch s {
	case Settled:
		return "settled"
	case Detaching:
		return "detaching"
	case Reattaching:
		return "reattaching"
	default:
		return "unknown"
	}
}

// tracked is a live element with its last measured height.
type tracked struct {
	el     Element
	height int
	width  int
}

type opKind int

const (
	opDetach opKind = iota
	opReattach
)

// op is one planned mutation. Plans are computed from a layout snapshot and
// applied afterwards so that measurement never interleaves with mutation.
type op struct {
	kind    opKind
	side    Side
	victims []*tracked // detach: ordered from the boundary inward
	need    int        // reattach: rows the spacer must give back
}

// WindowManager owns the live/hidden partition. Live elements are kept in
// visual order; everything else sits in the ledger.
type WindowManager struct {
	live    []*tracked
	liveSet map[string]*tracked
	ledger  *HeightLedger
	margin  int
	state   [2]WindowState
	dirty   bool
	log     *slog.Logger

	// OnTransition is called on every per-side state change.
	OnTransition func(side Side, from, to WindowState)
}

// NewWindowManager returns a manager that keeps margin rows of content
// attached beyond each viewport edge.
func NewWindowManager(margin int, log *slog.Logger) *WindowManager {
	if log == nil {
		log = slog.Default()
	}
	w := &WindowManager{
		liveSet: make(map[string]*tracked),
		ledger:  NewHeightLedger(),
		margin:  max(margin, 0),
		log:     log,
	}
	w.ledger.OnDrift = func(side Side, padding int) {
		w.log.Warn("padding drift corrected", "side", side, "padding", padding)
	}
	return w
}

// State returns the current phase of side.
func (w *WindowManager) State(side Side) WindowState { return w.state[side] }

// Ledger exposes the hidden-element ledger for inspection.
func (w *WindowManager) Ledger() *HeightLedger { return w.ledger }

// LiveLen returns the number of attached elements.
func (w *WindowManager) LiveLen() int { return len(w.live) }

// Margin returns the retention margin in rows.
func (w *WindowManager) Margin() int { return w.margin }

func (w *WindowManager) transition(side Side, to WindowState) {
	from := w.state[side]
	if from == to {
		return
	}
	w.state[side] = to
	if w.OnTransition != nil {
		w.OnTransition(side, from, to)
	}
}

// ---------------------------------------------------------------------------
// Owner mutations
// ---------------------------------------------------------------------------

func (w *WindowManager) isLive(id string) bool {
	_, ok := w.liveSet[id]
	return ok
}

func (w *WindowManager) tracks(id string) bool {
	if w.isLive(id) {
		return true
	}
	_, ok := w.ledger.Lookup(id)
	return ok
}

// appendEl adds t at the visual bottom. With content hidden below it goes to
// the far end of that queue instead.
func (w *WindowManager) appendEl(t *tracked) {
	if w.ledger.Len(Down) > 0 {
		w.ledger.bury(Down, Hidden{Element: t.el, Height: t.height, width: t.width})
		return
	}
	w.live = append(w.live, t)
	w.liveSet[t.el.ID()] = t
}

// prependEl adds t at the visual top, or buries it above hidden content.
func (w *WindowManager) prependEl(t *tracked) {
	if w.ledger.Len(Up) > 0 {
		w.ledger.bury(Up, Hidden{Element: t.el, Height: t.height, width: t.width})
		return
	}
	w.live = insertAt(w.live, 0, t)
	w.liveSet[t.el.ID()] = t
}

// insertBefore places t visually above ref. It reports the side t was hidden
// on, if any, and false when ref is unknown.
func (w *WindowManager) insertBefore(t *tracked, ref Element) (hiddenOn Side, hidden bool, ok bool) {
	refID := ref.ID()
	if w.isLive(refID) {
		i := 0
		for j, lt := range w.live {
			if lt.el.ID() == refID {
				i = j
				break
			}
		}
		w.live = insertAt(w.live, i, t)
		w.liveSet[t.el.ID()] = t
		return 0, false, true
	}
	side, found := w.ledger.insertBefore(Hidden{Element: t.el, Height: t.height, width: t.width}, refID)
	if !found {
		return 0, false, false
	}
	return side, true, true
}

func (w *WindowManager) remove(el Element) bool {
	id := el.ID()
	if w.isLive(id) {
		w.live, _, _ = removeFirst(w.live, func(t *tracked) bool { return t.el.ID() == id })
		delete(w.liveSet, id)
		return true
	}
	_, ok := w.ledger.Remove(el)
	return ok
}

func (w *WindowManager) reset() {
	w.live = nil
	clear(w.liveSet)
	w.ledger.Reset()
	w.state = [2]WindowState{}
}

// ---------------------------------------------------------------------------
// Read phase
// ---------------------------------------------------------------------------

func (w *WindowManager) measure(scrollTop, clientHeight int) *layout {
	l := &layout{
		scrollTop:    scrollTop,
		clientHeight: clientHeight,
		padUp:        w.ledger.Padding(Up),
		padDown:      w.ledger.Padding(Down),
		tops:         make([]int, len(w.live)),
		index:        make(map[string]int, len(w.live)),
		live:         w.live,
	}
	y := l.padUp
	for i, t := range w.live {
		l.tops[i] = y
		l.index[t.el.ID()] = i
		y += t.height
	}
	l.liveHeight = y - l.padUp
	return l
}

func (w *WindowManager) liveHeight() int {
	n := 0
	for _, t := range w.live {
		n += t.height
	}
	return n
}

func (w *WindowManager) scrollHeight() int {
	return w.ledger.Padding(Up) + w.liveHeight() + w.ledger.Padding(Down)
}

// plan turns observer entries into an ordered list of operations. Entries are
// only hints: every decision is re-derived from the layout snapshot. The
// detach walks run whenever a live element was reported or the window changed
// since the last plan; they stop at the first element that stays.
func (w *WindowManager) plan(entries []Entry, l *layout) []op {
	var (
		reattach [2]bool
		need     [2]int
	)
	scan := w.dirty
	w.dirty = false
	for _, e := range entries {
		if side, ok := SentinelSide(e.Target); ok {
			if e.IsIntersecting && w.ledger.Len(side) > 0 {
				reattach[side] = true
				need[side] = max(need[side], w.reattachNeed(side, e), 1)
			}
			continue
		}
		if w.isLive(e.Target.ID()) {
			scan = true
		}
	}

	var detachOps [2]*op
	if scan {
		for _, side := range []Side{Up, Down} {
			if victims := w.victims(side, l); len(victims) > 0 {
				detachOps[side] = &op{kind: opDetach, side: side, victims: victims}
			}
		}
	}

	var ops []op
	// A side that both detaches and reattaches resolves its own detach first.
	for _, side := range []Side{Up, Down} {
		if detachOps[side] != nil && reattach[side] {
			ops = append(ops, *detachOps[side], op{kind: opReattach, side: side, need: need[side]})
			detachOps[side] = nil
			reattach[side] = false
		}
	}
	for _, side := range []Side{Up, Down} {
		if reattach[side] {
			ops = append(ops, op{kind: opReattach, side: side, need: need[side]})
		}
	}
	for _, side := range []Side{Up, Down} {
		if detachOps[side] != nil {
			ops = append(ops, *detachOps[side])
		}
	}
	for _, o := range ops {
		if o.kind == opDetach {
			w.transition(o.side, Detaching)
		} else {
			w.transition(o.side, Reattaching)
		}
	}
	return ops
}

// reattachNeed is how many rows side's spacer must give back so that its
// inner edge ends up margin rows beyond the viewport. It comes from the
// spacer bounds rather than the visible overlap: after a jump the spacer can
// cover the whole viewport with the live rows far away.
func (w *WindowManager) reattachNeed(side Side, e Entry) int {
	if side == Up {
		return e.BoundsBottom + w.margin
	}
	return e.RootHeight - e.BoundsTop + w.margin
}

// victims walks from the side's boundary inward and collects live elements
// that lie entirely beyond the retention margin.
func (w *WindowManager) victims(side Side, l *layout) []*tracked {
	var out []*tracked
	if side == Up {
		for i, t := range w.live {
			if l.liveRect(i).Bottom > -w.margin {
				break
			}
			out = append(out, t)
		}
		return out
	}
	limit := l.clientHeight + w.margin
	eachReverse(w.live, func(i int, t *tracked) bool {
		if l.liveRect(i).Top < limit {
			return false
		}
		out = append(out, t)
		return true
	})
	return out
}

// ---------------------------------------------------------------------------
// Write phase
// ---------------------------------------------------------------------------

func (w *WindowManager) apply(ops []op) {
	for _, o := range ops {
		switch o.kind {
		case opDetach:
			w.detach(o.side, o.victims)
		case opReattach:
			w.reattach(o.side, o.need)
		}
	}
	w.dirty = true
	w.transition(Up, Settled)
	w.transition(Down, Settled)
}

// Invalidate makes the next plan re-check both detach walks.
func (w *WindowManager) Invalidate() { w.dirty = true }

func (w *WindowManager) detach(side Side, victims []*tracked) {
	hidden, rows := 0, 0
	for _, t := range victims {
		// victims are contiguous from the boundary; anything else means the
		// plan went stale
		if len(w.live) == 0 {
			break
		}
		if side == Up {
			if w.live[0] != t {
				break
			}
			w.live = w.live[1:]
		} else {
			if w.live[len(w.live)-1] != t {
				break
			}
			w.live = w.live[:len(w.live)-1]
		}
		id := t.el.ID()
		delete(w.liveSet, id)
		w.ledger.push(side, Hidden{Element: t.el, Height: t.height, width: t.width})
		hidden++
		rows += t.height
	}
	if hidden > 0 {
		w.log.Debug("detached", "side", side, "count", hidden, "rows", rows, "padding", w.ledger.Padding(side))
	}
}

func (w *WindowManager) reattach(side Side, need int) {
	shown, rows := 0, 0
	for need > 0 {
		h, ok := w.ledger.Reveal(side)
		if !ok {
			break
		}
		t := &tracked{el: h.Element, height: h.Height, width: h.width}
		if side == Up {
			w.live = insertAt(w.live, 0, t)
		} else {
			w.live = append(w.live, t)
		}
		w.liveSet[h.Element.ID()] = t
		need -= max(h.Height, 1)
		shown++
		rows += h.Height
	}
	if shown > 0 {
		w.log.Debug("reattached", "side", side, "count", shown, "rows", rows, "padding", w.ledger.Padding(side))
	}
}
