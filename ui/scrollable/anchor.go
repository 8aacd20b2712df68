package scrollable

// anchorHost is the slice of the scrollable an anchor needs.
type anchorHost interface {
	root() Rect
	liveElements() []Element
	// rectOf returns viewport geometry for any tracked element, hidden ones
	// included.
	rectOf(el Element) (Rect, bool)
	ScrollTop() int
	ScrollHeight() int
	setScrollTop(y int)
}

type anchorCandidate struct {
	el     Element
	rect   Rect
	bottom bool // measure the bottom edge instead of the top
}

// ScrollPositionAnchor keeps the visible content still while the content
// around it changes size. Save records the visible matching elements; Restore
// scrolls by however far the first surviving one moved.
type ScrollPositionAnchor struct {
	candidates []anchorCandidate
	match      func(Element) bool
	known      map[string]Rect // every matching live element at save time
	reverse    bool
	saved      bool
}

// Saved reports whether an anchor is pending.
func (a *ScrollPositionAnchor) Saved() bool { return a.saved }

// Clear drops any pending anchor.
func (a *ScrollPositionAnchor) Clear() { *a = ScrollPositionAnchor{} }

// Save records the anchor. In reverse mode the lowest visible element is the
// primary candidate and its bottom edge is tracked.
func (a *ScrollPositionAnchor) Save(h anchorHost, match func(Element) bool, reverse bool) {
	if match == nil {
		match = func(Element) bool { return true }
	}
	a.match = match
	a.reverse = reverse
	a.saved = true
	a.known = make(map[string]Rect)
	a.candidates = scanAnchors(h, match, reverse, func(el Element, r Rect) {
		a.known[el.ID()] = r
	})
}

// scanAnchors collects the visible live elements matching match, primary
// candidate first. With none visible the first match stands in. seen is
// called with the rect of every matching live element.
func scanAnchors(h anchorHost, match func(Element) bool, reverse bool, seen func(Element, Rect)) []anchorCandidate {
	var (
		out   []anchorCandidate
		first Element
	)
	root := h.root()
	for _, el := range h.liveElements() {
		if !match(el) {
			continue
		}
		if first == nil {
			first = el
		}
		r, ok := h.rectOf(el)
		if !ok {
			continue
		}
		if seen != nil {
			seen(el, r)
		}
		if _, hit := r.Intersect(root); !hit || r.Height() == 0 {
			continue
		}
		bottom := reverse
		// a clipped edge moves with the viewport, not the content
		if bottom && r.Bottom > root.Bottom {
			bottom = false
		} else if !bottom && r.Top < root.Top {
			bottom = true
		}
		out = append(out, anchorCandidate{el: el, rect: r, bottom: bottom})
	}
	if len(out) == 0 && first != nil {
		if r, ok := h.rectOf(first); ok {
			out = append(out, anchorCandidate{el: first, rect: r, bottom: reverse})
		}
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Restore applies the saved anchor and clears it. It returns the scroll
// adjustment made. When every saved candidate is gone the anchor is resolved
// again from the current layout, and measured against where that element sat
// at save time. With nothing to anchor to, reverse mode jumps to the end and
// forward mode to the start.
func (a *ScrollPositionAnchor) Restore(h anchorHost) int {
	if !a.saved {
		return 0
	}
	defer a.Clear()

	if len(a.candidates) == 0 {
		before := h.ScrollTop()
		if a.reverse {
			h.setScrollTop(h.ScrollHeight())
		} else {
			h.setScrollTop(0)
		}
		return h.ScrollTop() - before
	}
	for _, c := range a.candidates {
		if r, ok := h.rectOf(c.el); ok {
			return shiftBy(h, c, r)
		}
	}
	for _, c := range scanAnchors(h, a.match, a.reverse, nil) {
		old, ok := a.known[c.el.ID()]
		if !ok {
			continue
		}
		// c.rect is where the element is now; old is where it was
		cur := c.rect
		c.rect = old
		return shiftBy(h, c, cur)
	}
	return 0
}

// shiftBy scrolls so c's tracked edge returns to its saved position, given
// the element's current rect r.
func shiftBy(h anchorHost, c anchorCandidate, r Rect) int {
	var delta int
	if c.bottom {
		delta = r.Bottom - c.rect.Bottom
	} else {
		delta = r.Top - c.rect.Top
	}
	if delta == 0 {
		return 0
	}
	before := h.ScrollTop()
	h.setScrollTop(before + delta)
	return h.ScrollTop() - before
}
