package scrollable

// Entry describes where an observed target sits relative to the viewport.
// Bounds are viewport-relative rows.
type Entry struct {
	Target             Element
	IsIntersecting     bool
	IntersectionHeight int
	BoundsTop          int
	BoundsBottom       int
	RootHeight         int
}

// VisibilityObserver turns layout snapshots into visibility entries.
// Implementations decide how often a target is reported; consumers must treat
// every entry as a hint and re-measure before acting on it.
type VisibilityObserver interface {
	Observe(el Element)
	Unobserve(el Element)
	Disconnect()
	// Take measures every observed target against g and returns the entries
	// due for delivery. Targets without geometry produce no entry.
	Take(g Geometry) []Entry
}

type observation struct {
	intersecting bool
	height       int
}

type observed struct {
	el   Element
	last observation
	seen bool
}

// targets is the observation set shared by both observer flavours. Entries
// come out in observation order.
type targets struct {
	list []*observed
	byID map[string]*observed
}

func (t *targets) observe(el Element) {
	if t.byID == nil {
		t.byID = make(map[string]*observed)
	}
	if o, ok := t.byID[el.ID()]; ok {
		// observing again restarts reporting for this target
		o.el = el
		o.seen = false
		return
	}
	o := &observed{el: el}
	t.list = append(t.list, o)
	t.byID[el.ID()] = o
}

func (t *targets) unobserve(el Element) {
	id := el.ID()
	if _, ok := t.byID[id]; !ok {
		return
	}
	delete(t.byID, id)
	t.list, _, _ = removeFirst(t.list, func(o *observed) bool { return o.el.ID() == id })
}

func (t *targets) disconnect() {
	t.list = nil
	clear(t.byID)
}

func measureEntry(el Element, g Geometry) (Entry, bool) {
	r, ok := g.RectOf(el)
	if !ok {
		return Entry{}, false
	}
	root := g.Root()
	inter, hit := r.Intersect(root)
	return Entry{
		Target:             el,
		IsIntersecting:     hit,
		IntersectionHeight: inter.Height(),
		BoundsTop:          r.Top,
		BoundsBottom:       r.Bottom,
		RootHeight:         root.Height(),
	}, true
}

// ---------------------------------------------------------------------------
// Intersection observer
// ---------------------------------------------------------------------------

// IntersectionObserver is edge-triggered: a target is reported when first
// observed and afterwards only when its intersecting state or visible height
// changes. Sentinels are the exception: they are reported on every pass while
// they intersect, so a spacer that still covers the viewport after a reattach
// keeps asking for more.
type IntersectionObserver struct {
	targets targets
}

// NewIntersectionObserver returns an empty edge-triggered observer.
func NewIntersectionObserver() *IntersectionObserver {
	return &IntersectionObserver{}
}

func (o *IntersectionObserver) Observe(el Element)   { o.targets.observe(el) }
func (o *IntersectionObserver) Unobserve(el Element) { o.targets.unobserve(el) }
func (o *IntersectionObserver) Disconnect()          { o.targets.disconnect() }

func (o *IntersectionObserver) Take(g Geometry) []Entry {
	var out []Entry
	for _, t := range o.targets.list {
		e, ok := measureEntry(t.el, g)
		if !ok {
			continue
		}
		now := observation{intersecting: e.IsIntersecting, height: e.IntersectionHeight}
		_, isSentinel := SentinelSide(t.el)
		if t.seen && now == t.last && !(isSentinel && now.intersecting) {
			continue
		}
		t.seen = true
		t.last = now
		out = append(out, e)
	}
	return out
}

// ---------------------------------------------------------------------------
// Scroll observer
// ---------------------------------------------------------------------------

// ScrollObserver is the level-triggered fallback: every observed target with
// geometry is reported on every pass. It costs a full measurement per frame
// but never misses a transition.
type ScrollObserver struct {
	targets targets
}

// NewScrollObserver returns an empty level-triggered observer.
func NewScrollObserver() *ScrollObserver {
	return &ScrollObserver{}
}

func (o *ScrollObserver) Observe(el Element)   { o.targets.observe(el) }
func (o *ScrollObserver) Unobserve(el Element) { o.targets.unobserve(el) }
func (o *ScrollObserver) Disconnect()          { o.targets.disconnect() }

func (o *ScrollObserver) Take(g Geometry) []Entry {
	out := make([]Entry, 0, len(o.targets.list))
	for _, t := range o.targets.list {
		if e, ok := measureEntry(t.el, g); ok {
			out = append(out, e)
		}
	}
	return out
}

// NewObserver maps a configured observer name to an implementation.
// Unknown names fall back to the intersection observer.
func NewObserver(kind string) VisibilityObserver {
	if kind == "scroll" {
		return NewScrollObserver()
	}
	return NewIntersectionObserver()
}
