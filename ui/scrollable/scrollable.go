// Package scrollable is a virtualized vertical viewport for very long,
// bidirectionally growing content.
//
// The Scrollable keeps only the elements near the viewport attached. Elements
// that scroll far enough away are detached into a per-side ledger and replaced
// by padding spacers of exactly their combined height, so the total scroll
// height and the visible content never jump. It also provides:
//
//   - scroll-position anchoring across prepends and resizes
//   - scrollbar thumb geometry
//   - infinite-load callbacks near either end
//
// Work is coalesced into frames: mutations and scrolls only request a frame,
// and Frame does the measuring and the window bookkeeping in one pass.
package scrollable

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// maxSettlePasses bounds how often one frame re-plans the window.
const maxSettlePasses = 8

// FrameScheduler is told when the scrollable wants Frame to run. The owner
// decides when that happens; repeated requests before the frame runs are
// coalesced by the scrollable itself.
type FrameScheduler interface {
	RequestFrame()
}

// FrameSchedulerFunc adapts a function to FrameScheduler.
type FrameSchedulerFunc func()

func (f FrameSchedulerFunc) RequestFrame() { f() }

// ViewportState is the scroll geometry after the last frame.
type ViewportState struct {
	ScrollTop     int
	ScrollHeight  int
	ClientHeight  int
	ThumbSize     float64
	ThumbPosition float64
}

// Paddings are the current spacer heights.
type Paddings struct {
	Up   int
	Down int
}

// VisibleElement is a live element intersecting the viewport.
type VisibleElement struct {
	Element Element
	Rect    Rect // viewport-relative, may extend past either edge
}

// Option configures a Scrollable.
type Option func(*Scrollable)

// WithRetentionMargin sets how many rows of content stay attached beyond each
// viewport edge.
func WithRetentionMargin(rows int) Option {
	return func(s *Scrollable) { s.margin = rows }
}

// WithOffsetThreshold sets the distance from either end at which the load
// callbacks fire.
func WithOffsetThreshold(rows int) Option {
	return func(s *Scrollable) { s.threshold = rows }
}

// WithObserver replaces the default intersection observer.
func WithObserver(o VisibilityObserver) Option {
	return func(s *Scrollable) { s.observer = o }
}

// WithScheduler sets who gets told about pending frames.
func WithScheduler(f FrameScheduler) Option {
	return func(s *Scrollable) { s.scheduler = f }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scrollable) { s.log = l }
}

// WithMinThumb sets the smallest scrollbar thumb in rows.
func WithMinThumb(rows float64) Option {
	return func(s *Scrollable) { s.minThumb = rows }
}

// WithWidth sets the width elements are measured at.
func WithWidth(w int) Option {
	return func(s *Scrollable) { s.width = w }
}

// WithClientHeight sets the viewport height.
func WithClientHeight(h int) Option {
	return func(s *Scrollable) { s.clientHeight = h }
}

// Scrollable is the virtual container. It is not safe for concurrent use;
// drive it from one goroutine, typically a Bubble Tea update loop.
type Scrollable struct {
	win       *WindowManager
	observer  VisibilityObserver
	anchor    ScrollPositionAnchor
	trigger   *LoadTrigger
	scheduler FrameScheduler
	log       *slog.Logger

	margin     int
	autoMargin bool
	threshold  int
	minThumb   float64

	width        int
	clientHeight int
	scrollTop    int

	lastScrollTop int
	direction     int
	silent        bool
	pendingFrame  bool
	generation    uint64
	thumb         Thumb
}

// New returns an empty scrollable.
func New(opts ...Option) *Scrollable {
	s := &Scrollable{
		threshold: DefaultOffsetThreshold,
		minThumb:  DefaultMinThumb,
		margin:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.observer == nil {
		s.observer = NewIntersectionObserver()
	}
	if s.margin < 0 {
		// two viewports either way when nothing was configured
		s.autoMargin = true
		s.margin = 2 * s.clientHeight
	}
	s.win = NewWindowManager(s.margin, s.log)
	s.trigger = NewLoadTrigger(s.threshold)
	s.observeSentinels()
	return s
}

func (s *Scrollable) observeSentinels() {
	s.observer.Observe(TopSentinel)
	s.observer.Observe(BottomSentinel)
}

// Window exposes the window manager for inspection.
func (s *Scrollable) Window() *WindowManager { return s.win }

// Generation changes every time the container is reset. Work started under an
// older generation must be discarded.
func (s *Scrollable) Generation() uint64 { return s.generation }

// ---------------------------------------------------------------------------
// Content
// ---------------------------------------------------------------------------

func (s *Scrollable) track(el Element) *tracked {
	return &tracked{el: el, height: s.measure(el), width: s.width}
}

func (s *Scrollable) measure(el Element) int {
	return max(el.Height(s.width), 1)
}

// Append adds elements at the bottom, in order.
func (s *Scrollable) Append(els ...Element) {
	for _, el := range els {
		s.forget(el)
		s.win.appendEl(s.track(el))
		s.observer.Observe(el)
	}
	if len(els) > 0 {
		s.trigger.Rearm(Down)
		s.requestFrame()
	}
}

// Prepend adds elements at the top. The first argument ends up topmost.
func (s *Scrollable) Prepend(els ...Element) {
	for i := len(els) - 1; i >= 0; i-- {
		s.forget(els[i])
		s.win.prependEl(s.track(els[i]))
		s.observer.Observe(els[i])
	}
	if len(els) > 0 {
		s.trigger.Rearm(Up)
		s.requestFrame()
	}
}

// InsertBefore adds el visually above ref, which may be hidden. It returns
// false when ref is not tracked.
func (s *Scrollable) InsertBefore(el, ref Element) bool {
	if el.ID() == ref.ID() || !s.win.tracks(ref.ID()) {
		return false
	}
	s.forget(el)
	if _, _, ok := s.win.insertBefore(s.track(el), ref); !ok {
		return false
	}
	s.observer.Observe(el)
	s.requestFrame()
	return true
}

// Remove drops el whether it is live or hidden.
func (s *Scrollable) Remove(el Element) bool {
	if !s.win.remove(el) {
		return false
	}
	s.observer.Unobserve(el)
	s.clampScroll()
	s.requestFrame()
	return true
}

// Replace re-measures el after its owner changed its content. el must carry
// the ID of a tracked element.
func (s *Scrollable) Replace(el Element) bool {
	id := el.ID()
	if t, ok := s.win.liveSet[id]; ok {
		t.el = el
		t.height = s.measure(el)
		t.width = s.width
		s.clampScroll()
		s.requestFrame()
		return true
	}
	if s.win.ledger.Update(el, s.measure(el)) {
		s.clampScroll()
		s.requestFrame()
		return true
	}
	return false
}

// forget removes a previous copy of el so that re-adding never duplicates.
func (s *Scrollable) forget(el Element) {
	if s.win.tracks(el.ID()) {
		s.win.remove(el)
	}
}

// Len returns the number of tracked elements, live and hidden.
func (s *Scrollable) Len() int {
	return s.win.LiveLen() + s.win.ledger.Len(Up) + s.win.ledger.Len(Down)
}

// SetVirtualContainer resets the scrollable to an empty container. Ledgers,
// observers, triggers and anchors start over and the generation moves on.
func (s *Scrollable) SetVirtualContainer() {
	s.win.reset()
	s.observer.Disconnect()
	s.observeSentinels()
	s.trigger.Reset()
	s.anchor.Clear()
	s.scrollTop, s.lastScrollTop, s.direction = 0, 0, 0
	s.thumb = Thumb{}
	s.generation++
	s.log.Debug("container reset", "generation", s.generation)
	s.requestFrame()
}

// Clear is SetVirtualContainer under the name callers usually look for.
func (s *Scrollable) Clear() { s.SetVirtualContainer() }

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// ScrollTop returns the current scroll offset.
func (s *Scrollable) ScrollTop() int { return s.scrollTop }

// ScrollHeight returns the total virtual height, spacers included.
func (s *Scrollable) ScrollHeight() int { return s.win.scrollHeight() }

// ClientHeight returns the viewport height.
func (s *Scrollable) ClientHeight() int { return s.clientHeight }

// Width returns the measuring width.
func (s *Scrollable) Width() int { return s.width }

// Paddings returns the spacer heights.
func (s *Scrollable) Paddings() Paddings {
	return Paddings{Up: s.win.ledger.Padding(Up), Down: s.win.ledger.Padding(Down)}
}

// MaxScrollTop is the largest valid scroll offset.
func (s *Scrollable) MaxScrollTop() int {
	return max(s.ScrollHeight()-s.clientHeight, 0)
}

// DistanceToEnd is how many rows remain below the viewport.
func (s *Scrollable) DistanceToEnd() int {
	return s.ScrollHeight() - s.clientHeight - s.scrollTop
}

// AtTop reports whether the viewport shows the first row.
func (s *Scrollable) AtTop() bool { return s.scrollTop <= 0 }

// AtBottom reports whether the viewport shows the last row.
func (s *Scrollable) AtBottom() bool { return s.DistanceToEnd() <= 0 }

// SetScrollTop scrolls to y, clamped to the valid range.
func (s *Scrollable) SetScrollTop(y int) {
	s.setScrollTop(y)
}

func (s *Scrollable) setScrollTop(y int) {
	y = min(max(y, 0), s.MaxScrollTop())
	if y == s.scrollTop {
		return
	}
	s.scrollTop = y
	s.requestFrame()
}

// ScrollBy scrolls by dy rows.
func (s *Scrollable) ScrollBy(dy int) { s.setScrollTop(s.scrollTop + dy) }

// ScrollTo scrolls to y.
func (s *Scrollable) ScrollTo(y int) { s.setScrollTop(y) }

// SetScrollTopSilently scrolls to y without registering a scroll direction
// or evaluating the load callbacks on the next frame.
func (s *Scrollable) SetScrollTopSilently(y int) {
	y = min(max(y, 0), s.MaxScrollTop())
	s.scrollTop = y
	s.lastScrollTop = y
	s.silent = true
	s.requestFrame()
}

// ScrollToBottom scrolls to the last row.
func (s *Scrollable) ScrollToBottom() { s.setScrollTop(s.MaxScrollTop()) }

// ScrollIntoView centers el in the viewport. It returns false when el is not
// tracked.
func (s *Scrollable) ScrollIntoView(el Element) bool {
	r, ok := s.rectOf(el)
	if !ok {
		return false
	}
	offset := (s.clientHeight - r.Height()) / 2
	s.setScrollTop(s.scrollTop + r.Top - max(offset, 0))
	return true
}

// SetClientHeight resizes the viewport.
func (s *Scrollable) SetClientHeight(h int) {
	h = max(h, 0)
	if h == s.clientHeight {
		return
	}
	s.clientHeight = h
	if s.autoMargin {
		s.margin = 2 * h
		s.win.margin = s.margin
	}
	s.clampScroll()
	s.requestFrame()
}

// SetWidth changes the measuring width. Live elements are re-measured on the
// next frame; hidden ones keep their cached height until revealed and
// refreshed.
func (s *Scrollable) SetWidth(w int) {
	if w == s.width {
		return
	}
	s.width = w
	s.requestFrame()
}

// Remeasure re-measures every live element on the next frame. Use it when
// rendering changed without a width change, such as a theme switch. Hidden
// elements keep their recorded heights until they are revealed.
func (s *Scrollable) Remeasure() {
	for _, t := range s.win.live {
		t.width = -1
	}
	s.requestFrame()
}

// SetRetentionMargin changes the retention margin. Takes effect next frame.
func (s *Scrollable) SetRetentionMargin(rows int) {
	s.margin = max(rows, 0)
	s.autoMargin = false
	s.win.margin = s.margin
	s.requestFrame()
}

// SetOffsetThreshold changes the load distance.
func (s *Scrollable) SetOffsetThreshold(rows int) {
	s.threshold = max(rows, 0)
	s.trigger.threshold = s.threshold
}

func (s *Scrollable) clampScroll() {
	if s.scrollTop > s.MaxScrollTop() {
		s.scrollTop = s.MaxScrollTop()
	}
	if s.scrollTop < 0 {
		s.scrollTop = 0
	}
}

// Visible returns the live elements intersecting the viewport, top to bottom.
func (s *Scrollable) Visible() []VisibleElement {
	l := s.win.measure(s.scrollTop, s.clientHeight)
	root := l.Root()
	var out []VisibleElement
	for i, t := range l.live {
		r := l.liveRect(i)
		if r.Bottom <= root.Top {
			continue
		}
		if r.Top >= root.Bottom {
			break
		}
		out = append(out, VisibleElement{Element: t.el, Rect: r})
	}
	return out
}

// Thumb returns the scrollbar thumb computed by the last frame.
func (s *Scrollable) Thumb() Thumb { return s.thumb }

// ViewportState returns the scroll geometry.
func (s *Scrollable) ViewportState() ViewportState {
	return ViewportState{
		ScrollTop:     s.scrollTop,
		ScrollHeight:  s.ScrollHeight(),
		ClientHeight:  s.clientHeight,
		ThumbSize:     s.thumb.Size,
		ThumbPosition: s.thumb.Offset,
	}
}

// DragThumb scrolls by the content distance matching a thumb drag of
// pointerDelta rows.
func (s *Scrollable) DragThumb(pointerDelta int) {
	d := DragScroll(float64(pointerDelta), s.ScrollHeight(), s.clientHeight, s.thumb)
	if d == 0 {
		return
	}
	s.ScrollBy(int(d))
}

// anchorHost

func (s *Scrollable) root() Rect { return Rect{Top: 0, Bottom: s.clientHeight} }

func (s *Scrollable) liveElements() []Element {
	out := make([]Element, len(s.win.live))
	for i, t := range s.win.live {
		out[i] = t.el
	}
	return out
}

// rectOf resolves viewport geometry for any tracked element. Hidden elements
// sit inside their spacer at their cached heights.
func (s *Scrollable) rectOf(el Element) (Rect, bool) {
	id := el.ID()
	padUp := s.win.ledger.Padding(Up)
	if s.win.isLive(id) {
		y := padUp
		for _, t := range s.win.live {
			if t.el.ID() == id {
				return Rect{Top: y, Bottom: y + t.height}.Shift(-s.scrollTop), true
			}
			y += t.height
		}
	}
	side, ok := s.win.ledger.Lookup(id)
	if !ok {
		return Rect{}, false
	}
	y := 0
	if side == Down {
		y = padUp + s.win.liveHeight()
	}
	var found Rect
	s.win.ledger.Each(side, func(h Hidden) bool {
		if h.Element.ID() == id {
			found = Rect{Top: y, Bottom: y + h.Height}
			return false
		}
		y += h.Height
		return true
	})
	return found.Shift(-s.scrollTop), true
}

// ---------------------------------------------------------------------------
// Anchoring
// ---------------------------------------------------------------------------

// SaveAnchor records the visible elements matching match. Pass nil to match
// every element. In reverse mode the bottom-most visible element anchors.
func (s *Scrollable) SaveAnchor(match func(Element) bool, reverse bool) {
	s.anchor.Save(s, match, reverse)
}

// RestoreAnchor scrolls so the saved anchor is where it was and returns the
// adjustment.
func (s *Scrollable) RestoreAnchor() int {
	return s.anchor.Restore(s)
}

// ---------------------------------------------------------------------------
// Load callbacks
// ---------------------------------------------------------------------------

// OnScrolledTop sets the callback fired when the viewport nears the top.
func (s *Scrollable) OnScrolledTop(fn func()) { s.trigger.On(Up, fn) }

// OnScrolledBottom sets the callback fired when the viewport nears the bottom.
func (s *Scrollable) OnScrolledBottom(fn func()) { s.trigger.On(Down, fn) }

// MarkLoaded records whether side has no more content to load.
func (s *Scrollable) MarkLoaded(side Side, all bool) { s.trigger.SetLoadedAll(side, all) }

// LoadedAll reports whether side was marked exhausted.
func (s *Scrollable) LoadedAll(side Side) bool { return s.trigger.LoadedAll(side) }

// ---------------------------------------------------------------------------
// Frames
// ---------------------------------------------------------------------------

func (s *Scrollable) requestFrame() {
	s.win.Invalidate()
	if s.pendingFrame {
		return
	}
	s.pendingFrame = true
	if s.scheduler != nil {
		s.scheduler.RequestFrame()
	}
}

// FramePending reports whether a frame was requested and has not run yet.
func (s *Scrollable) FramePending() bool { return s.pendingFrame }

// Direction returns the scroll direction measured by the last frame.
func (s *Scrollable) Direction() int { return s.direction }

// Frame runs one frame: it measures the scroll direction, settles the window,
// updates the thumb and evaluates the load callbacks.
func (s *Scrollable) Frame() {
	s.pendingFrame = false

	switch {
	case s.scrollTop > s.lastScrollTop:
		s.direction = 1
	case s.scrollTop < s.lastScrollTop:
		s.direction = -1
	default:
		s.direction = 0
	}
	s.lastScrollTop = s.scrollTop

	s.reflow()
	s.settle()
	s.thumb = ComputeThumb(s.ScrollHeight(), s.clientHeight, s.scrollTop, s.minThumb)

	if s.silent {
		s.silent = false
		return
	}
	for _, side := range s.trigger.Check(s.scrollTop, s.ScrollHeight(), s.clientHeight, s.direction) {
		s.log.Debug("load triggered", "side", side, "scrollTop", s.scrollTop, "generation", s.generation)
	}
}

// reflow re-measures live elements measured at another width, keeping the
// top visible element in place.
func (s *Scrollable) reflow() {
	stale := false
	for _, t := range s.win.live {
		if t.width != s.width {
			stale = true
			break
		}
	}
	if !stale {
		return
	}
	var a ScrollPositionAnchor
	a.Save(s, nil, false)
	for _, t := range s.win.live {
		if t.width != s.width {
			t.height = s.measure(t.el)
			t.width = s.width
		}
	}
	s.clampScroll()
	if a.Saved() && len(a.candidates) > 0 {
		a.Restore(s)
	}
	// the restore above is layout upkeep, not a user scroll
	s.lastScrollTop = s.scrollTop
}

// Settle runs the window bookkeeping until nothing changes.
func (s *Scrollable) Settle() { s.settle() }

func (s *Scrollable) settle() {
	if s.clientHeight <= 0 {
		return
	}
	for range maxSettlePasses {
		l := s.win.measure(s.scrollTop, s.clientHeight)
		ops := s.win.plan(s.observer.Take(l), l)
		if len(ops) == 0 {
			return
		}
		s.win.apply(ops)
	}
	s.log.Warn("window did not settle", "passes", maxSettlePasses,
		"live", s.win.LiveLen(), "scrollTop", s.scrollTop)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// ErrInconsistent is wrapped by every error Check returns.
var ErrInconsistent = errors.New("scrollable: inconsistent state")

// Check verifies the bookkeeping: padding matches hidden heights on each side,
// nothing is tracked twice, and the scroll offset is in range.
func (s *Scrollable) Check() error {
	var errs []error
	seen := make(map[string]string)
	note := func(id, where string) {
		if prev, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("%w: %q tracked in %s and %s", ErrInconsistent, id, prev, where))
			return
		}
		seen[id] = where
	}
	for _, t := range s.win.live {
		note(t.el.ID(), "live")
	}
	for _, side := range []Side{Up, Down} {
		sum := 0
		s.win.ledger.Each(side, func(h Hidden) bool {
			note(h.Element.ID(), "hidden "+side.String())
			sum += h.Height
			return true
		})
		if p := s.win.ledger.Padding(side); p != sum {
			errs = append(errs, fmt.Errorf("%w: %s padding %d, hidden heights %d", ErrInconsistent, side, p, sum))
		}
	}
	if s.scrollTop < 0 || s.scrollTop > s.MaxScrollTop() {
		errs = append(errs, fmt.Errorf("%w: scrollTop %d outside [0, %d]", ErrInconsistent, s.scrollTop, s.MaxScrollTop()))
	}
	return errors.Join(errs...)
}
