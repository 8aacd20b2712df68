package scrollable

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocks(prefix string, n, h int) []Element {
	out := make([]Element, n)
	for i := range out {
		out[i] = block{id: fmt.Sprintf("%s%d", prefix, i), h: h}
	}
	return out
}

func liveIDs(s *Scrollable) []string {
	out := make([]string, 0, s.Window().LiveLen())
	for _, el := range s.liveElements() {
		out = append(out, el.ID())
	}
	return out
}

type snapshot struct {
	live         []string
	up, down     []string
	paddings     Paddings
	scrollTop    int
	scrollHeight int
}

func snap(s *Scrollable) snapshot {
	return snapshot{
		live:         liveIDs(s),
		up:           visual(s.Window().Ledger(), Up),
		down:         visual(s.Window().Ledger(), Down),
		paddings:     s.Paddings(),
		scrollTop:    s.ScrollTop(),
		scrollHeight: s.ScrollHeight(),
	}
}

func TestAppendToEmpty(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	s.Append(block{"A", 50})
	s.Frame()

	assert.Equal(t, 50, s.ScrollHeight())
	assert.Equal(t, Paddings{}, s.Paddings())
	assert.Equal(t, []string{"A"}, liveIDs(s))
	require.NoError(t, s.Check())
}

func TestDetachAndReattach(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()

	// e7 ends at 160, e8 starts at 160 which is past 100+50
	assert.Equal(t, []string{"e0", "e1", "e2", "e3", "e4", "e5", "e6", "e7"}, liveIDs(s))
	assert.Equal(t, Paddings{Up: 0, Down: 240}, s.Paddings())
	assert.Equal(t, 400, s.ScrollHeight())
	require.NoError(t, s.Check())
	initial := snap(s)

	s.SetScrollTop(300)
	s.Frame()
	assert.Equal(t, []string{"e12", "e13", "e14", "e15", "e16", "e17", "e18", "e19"}, liveIDs(s))
	assert.Equal(t, Paddings{Up: 240, Down: 0}, s.Paddings())
	assert.Equal(t, 400, s.ScrollHeight())
	require.NoError(t, s.Check())

	s.SetScrollTop(0)
	s.Frame()
	assert.Equal(t, initial, snap(s))
	require.NoError(t, s.Check())
}

func TestVisibleRowsMatchScroll(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()
	s.SetScrollTop(130)
	s.Frame()

	vis := s.Visible()
	require.NotEmpty(t, vis)
	assert.Equal(t, "e6", vis[0].Element.ID())
	assert.Equal(t, Rect{Top: -10, Bottom: 10}, vis[0].Rect)
	assert.Equal(t, "e11", vis[len(vis)-1].Element.ID())
}

func TestScrollObserverMatchesIntersectionObserver(t *testing.T) {
	run := func(o VisibilityObserver) []snapshot {
		s := New(WithClientHeight(100), WithRetentionMargin(50), WithObserver(o))
		s.Append(blocks("e", 30, 15)...)
		var out []snapshot
		for _, y := range []int{0, 120, 310, 40, 450, 0} {
			s.SetScrollTop(y)
			s.Frame()
			require.NoError(t, s.Check())
			out = append(out, snap(s))
		}
		return out
	}
	assert.Equal(t, run(NewIntersectionObserver()), run(NewScrollObserver()))
}

func TestHeightConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s := New(WithClientHeight(40), WithRetentionMargin(20))
	total, n := 0, 0
	next := func() Element {
		h := 1 + rng.IntN(12)
		total += h
		n++
		return block{id: fmt.Sprintf("m%d", n), h: h}
	}

	for step := range 400 {
		switch rng.IntN(5) {
		case 0:
			s.Append(next())
		case 1:
			s.Prepend(next(), next())
		case 2:
			s.SetScrollTop(rng.IntN(s.ScrollHeight() + 1))
		case 3:
			s.ScrollBy(rng.IntN(60) - 30)
		case 4:
			if els := s.liveElements(); len(els) > 0 {
				ref := els[rng.IntN(len(els))]
				s.InsertBefore(next(), ref)
			}
		}
		s.Frame()
		require.NoError(t, s.Check(), "step %d", step)
		require.Equal(t, total, s.ScrollHeight(), "step %d", step)
		p := s.Paddings()
		require.Equal(t, p.Up+s.Window().liveHeight()+p.Down, s.ScrollHeight())
		side, shown := exposedSpacer(s)
		require.False(t, shown, "step %d: %s spacer in view", step, side)
	}
	assert.Equal(t, n, s.Len())
}

// exposedSpacer reports a spacer that overlaps the viewport while its side
// still has hidden content to give back.
func exposedSpacer(s *Scrollable) (Side, bool) {
	l := s.win.measure(s.ScrollTop(), s.ClientHeight())
	for _, side := range []Side{Up, Down} {
		if s.win.ledger.Len(side) == 0 {
			continue
		}
		if _, hit := l.spacer(side).Intersect(l.Root()); hit {
			return side, true
		}
	}
	return 0, false
}

func TestJumpAcrossHiddenContent(t *testing.T) {
	for _, o := range []VisibilityObserver{NewIntersectionObserver(), NewScrollObserver()} {
		t.Run(fmt.Sprintf("%T", o), func(t *testing.T) {
			s := New(WithClientHeight(20), WithRetentionMargin(20), WithObserver(o))
			s.Append(blocks("e", 200, 2)...)
			s.Frame()

			s.ScrollToBottom()
			s.Frame()
			vis := s.Visible()
			require.NotEmpty(t, vis)
			assert.Equal(t, "e199", vis[len(vis)-1].Element.ID())
			_, shown := exposedSpacer(s)
			assert.False(t, shown)

			s.ScrollTo(0)
			s.Frame()
			vis = s.Visible()
			require.NotEmpty(t, vis)
			assert.Equal(t, "e0", vis[0].Element.ID())
			assert.Len(t, vis, 10)
			_, shown = exposedSpacer(s)
			assert.False(t, shown)
			require.NoError(t, s.Check())

			// a jump into the middle lands away from both live edges
			s.ScrollTo(200)
			s.Frame()
			vis = s.Visible()
			require.NotEmpty(t, vis)
			assert.Equal(t, "e100", vis[0].Element.ID())
			_, shown = exposedSpacer(s)
			assert.False(t, shown)
			require.NoError(t, s.Check())

			before := snap(s)
			s.Frame()
			assert.Equal(t, before, snap(s))
		})
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	s := New(WithClientHeight(50), WithRetentionMargin(25))
	s.Append(blocks("e", 40, 7)...)
	s.Frame()
	s.SetScrollTop(133)
	s.Frame()

	before := snap(s)
	s.Frame()
	assert.Equal(t, before, snap(s))
	s.Settle()
	assert.Equal(t, before, snap(s))
}

func TestTransitions(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	type change struct {
		side     Side
		from, to WindowState
	}
	var seen []change
	s.Window().OnTransition = func(side Side, from, to WindowState) {
		seen = append(seen, change{side, from, to})
	}
	s.Append(blocks("e", 20, 20)...)
	s.Frame()

	require.NotEmpty(t, seen)
	assert.Equal(t, change{Down, Settled, Detaching}, seen[0])
	assert.Equal(t, change{Down, Detaching, Settled}, seen[1])
	assert.Equal(t, Settled, s.Window().State(Up))
	assert.Equal(t, Settled, s.Window().State(Down))
}

func TestAppendWhileBottomHidden(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()
	require.Positive(t, s.Paddings().Down)

	s.Append(block{"late", 30})
	assert.Equal(t, 270, s.Paddings().Down)
	assert.Equal(t, "late", visual(s.Window().Ledger(), Down)[12])
	assert.Equal(t, 430, s.ScrollHeight())
	require.NoError(t, s.Check())
}

func TestAnchorKeepsViewOnPrepend(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	s.Append(blocks("e", 10, 50)...)
	s.Frame()
	s.SetScrollTop(250)
	s.Frame()

	r, ok := s.rectOf(block{id: "e5"})
	require.True(t, ok)
	require.Equal(t, 0, r.Top)
	heightBefore, topBefore := s.ScrollHeight(), s.ScrollTop()

	s.SaveAnchor(nil, false)
	s.Prepend(block{"p0", 100}, block{"p1", 100}, block{"p2", 100})
	delta := s.RestoreAnchor()

	assert.Equal(t, 300, delta)
	assert.Equal(t, heightBefore+300, s.ScrollHeight())
	assert.Equal(t, topBefore+300, s.ScrollTop())
	r, _ = s.rectOf(block{id: "e5"})
	assert.Equal(t, 0, r.Top)

	s.Frame()
	require.NoError(t, s.Check())
	vis := s.Visible()
	require.NotEmpty(t, vis)
	assert.Equal(t, "e5", vis[0].Element.ID())
}

func TestAnchorReverse(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	s.Append(blocks("e", 10, 30)...)
	s.ScrollToBottom()
	s.Frame()

	s.SaveAnchor(nil, true)
	s.Append(block{"new", 10})
	assert.Equal(t, 0, s.RestoreAnchor(), "growth below the anchor")
	assert.Equal(t, 200, s.ScrollTop())
}

func TestAnchorFallback(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	s.SaveAnchor(nil, true)
	s.Append(blocks("e", 10, 30)...)
	s.RestoreAnchor()
	assert.Equal(t, 200, s.ScrollTop())

	s.Clear()
	s.SaveAnchor(nil, false)
	s.Append(blocks("e", 10, 30)...)
	s.RestoreAnchor()
	assert.Equal(t, 0, s.ScrollTop())
}

func TestAnchorReresolvesWhenCandidatesRemoved(t *testing.T) {
	s := New(WithClientHeight(60), WithRetentionMargin(300))
	s.Append(blocks("e", 10, 30)...)
	s.SetScrollTop(120)
	s.Frame()
	require.Equal(t, 10, s.Window().LiveLen())

	// e4 and e5 fill the viewport; both go away while rows are added above
	s.SaveAnchor(nil, false)
	require.True(t, s.Remove(block{id: "e4"}))
	require.True(t, s.Remove(block{id: "e5"}))
	s.Prepend(block{"p", 50})

	// e2 is now the first visible element, clipped at the top
	assert.Equal(t, 50, s.RestoreAnchor())
	assert.Equal(t, 170, s.ScrollTop())
	r, ok := s.rectOf(block{id: "e2"})
	require.True(t, ok)
	assert.Equal(t, Rect{Top: -60, Bottom: -30}, r)
}

func TestAnchorZeroDeltaDoesNotScroll(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	s.Append(blocks("e", 10, 30)...)
	s.SetScrollTop(40)
	s.Frame()
	require.False(t, s.FramePending())

	s.SaveAnchor(nil, false)
	assert.Equal(t, 0, s.RestoreAnchor())
	assert.False(t, s.FramePending())
}

func TestScrolledBottomFiresOnce(t *testing.T) {
	s := New(WithClientHeight(500), WithRetentionMargin(500), WithOffsetThreshold(300))
	bottom := 0
	s.OnScrolledBottom(func() { bottom++ })
	s.Append(blocks("e", 20, 100)...)

	s.SetScrollTop(0)
	s.Frame()
	assert.Equal(t, 0, bottom)

	s.SetScrollTop(1210)
	s.Frame()
	assert.Equal(t, 1, bottom)
	s.ScrollBy(5)
	s.Frame()
	s.Frame()
	assert.Equal(t, 1, bottom)

	s.SetScrollTop(400)
	s.Frame()
	s.SetScrollTop(1300)
	s.Frame()
	assert.Equal(t, 2, bottom)
}

func TestSilentScrollSkipsTriggers(t *testing.T) {
	s := New(WithClientHeight(100), WithOffsetThreshold(30))
	top := 0
	s.OnScrolledTop(func() { top++ })
	s.Append(blocks("e", 20, 20)...)
	s.SetScrollTopSilently(300)
	s.Frame()
	s.SetScrollTopSilently(0)
	s.Frame()
	assert.Equal(t, 0, top)
	assert.Equal(t, 0, s.Direction())
}

func TestResetBumpsGeneration(t *testing.T) {
	s := New(WithClientHeight(100))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()
	gen := s.Generation()

	s.SetVirtualContainer()
	assert.NotEqual(t, gen, s.Generation())
	assert.Zero(t, s.ScrollHeight())
	assert.Zero(t, s.Len())
	assert.Equal(t, Paddings{}, s.Paddings())

	// a stale result checks the generation and does nothing
	result := func(g uint64, els ...Element) {
		if g != s.Generation() {
			return
		}
		s.Append(els...)
	}
	result(gen, blocks("old", 3, 10)...)
	assert.Zero(t, s.Len())
}

func TestRemoveAndReplace(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()

	assert.True(t, s.Remove(block{id: "e1"}))
	assert.True(t, s.Remove(block{id: "e15"}), "hidden elements can be removed")
	assert.False(t, s.Remove(block{id: "missing"}))
	assert.Equal(t, 360, s.ScrollHeight())

	assert.True(t, s.Replace(block{"e0", 45}))
	assert.True(t, s.Replace(block{"e18", 5}))
	assert.Equal(t, 360+25-15, s.ScrollHeight())
	s.Frame()
	require.NoError(t, s.Check())
}

func TestReappendDoesNotDuplicate(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()
	s.Append(block{"e3", 20})
	s.Append(block{"e19", 20})
	s.Frame()
	assert.Equal(t, 20, s.Len())
	require.NoError(t, s.Check())
}

func TestInsertBeforeLiveRef(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 3, 20)...)
	assert.True(t, s.InsertBefore(block{"x", 5}, block{id: "e1"}))
	assert.Equal(t, []string{"e0", "x", "e1", "e2"}, liveIDs(s))
	assert.False(t, s.InsertBefore(block{"y", 5}, block{id: "nope"}))
}

func TestScrollIntoView(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(50))
	s.Append(blocks("e", 20, 20)...)
	s.Frame()

	require.True(t, s.ScrollIntoView(block{id: "e10"}))
	// e10 spans 200..220, centered leaves 40 rows above it
	assert.Equal(t, 160, s.ScrollTop())
	s.Frame()
	r, _ := s.rectOf(block{id: "e10"})
	assert.Equal(t, 40, r.Top)
}

func TestWidthChangeReflows(t *testing.T) {
	s := New(WithClientHeight(10), WithRetentionMargin(10), WithWidth(40))
	s.Append(wrapping{"a", 80}, wrapping{"b", 80}, wrapping{"c", 80})
	s.Frame()
	assert.Equal(t, 6, s.ScrollHeight())

	s.SetWidth(20)
	s.Frame()
	assert.Equal(t, 12, s.ScrollHeight())
	require.NoError(t, s.Check())
}

func TestFrameRequestsCoalesce(t *testing.T) {
	requests := 0
	s := New(WithClientHeight(100), WithScheduler(FrameSchedulerFunc(func() { requests++ })))
	s.Append(block{"a", 10})
	s.Append(block{"b", 10})
	s.ScrollBy(1)
	assert.Equal(t, 1, requests)
	assert.True(t, s.FramePending())

	s.Frame()
	assert.False(t, s.FramePending())
	s.Append(block{"c", 10})
	assert.Equal(t, 2, requests)
}

func TestViewportState(t *testing.T) {
	s := New(WithClientHeight(20))
	s.Append(blocks("e", 4, 10)...)
	s.SetScrollTop(20)
	s.Frame()
	vs := s.ViewportState()
	assert.Equal(t, 20, vs.ScrollTop)
	assert.Equal(t, 40, vs.ScrollHeight)
	assert.Equal(t, 20, vs.ClientHeight)
	assert.InDelta(t, 5, vs.ThumbSize, 1e-9)
	assert.InDelta(t, 15, vs.ThumbPosition, 1e-9)
	assert.True(t, s.AtBottom())
	assert.False(t, s.AtTop())
	assert.Equal(t, 0, s.DistanceToEnd())
}

// wrapping is text of n cells that wraps at the measuring width.
type wrapping struct {
	id    string
	cells int
}

func (w wrapping) ID() string { return w.id }

func (w wrapping) Height(width int) int {
	if width <= 0 {
		return 1
	}
	return (w.cells + width - 1) / width
}

// restyled changes height without a width change.
type restyled struct {
	id string
	h  *int
}

func (r restyled) ID() string     { return r.id }
func (r restyled) Height(int) int { return *r.h }

func TestRemeasure(t *testing.T) {
	s := New(WithClientHeight(100), WithRetentionMargin(100))
	h := 10
	s.Append(restyled{"a", &h}, block{"b", 5})
	s.Frame()
	require.Equal(t, 15, s.ScrollHeight())

	h = 20
	s.Frame()
	assert.Equal(t, 15, s.ScrollHeight(), "heights are cached until remeasured")

	s.Remeasure()
	require.True(t, s.FramePending())
	s.Frame()
	assert.Equal(t, 25, s.ScrollHeight())
	require.NoError(t, s.Check())
}
