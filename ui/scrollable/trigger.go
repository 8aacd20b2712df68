package scrollable

// DefaultOffsetThreshold is how close to an end, in rows, a load fires.
const DefaultOffsetThreshold = 30

// LoadTrigger fires the infinite-load callbacks. Each side fires once per
// approach and re-arms when the position leaves its zone or content arrives
// on that side.
type LoadTrigger struct {
	threshold int
	handlers  [2]func()
	armed     [2]bool
	loadedAll [2]bool
}

// NewLoadTrigger returns an armed trigger.
func NewLoadTrigger(threshold int) *LoadTrigger {
	return &LoadTrigger{threshold: max(threshold, 0), armed: [2]bool{true, true}}
}

// On sets the callback for side.
func (t *LoadTrigger) On(side Side, fn func()) { t.handlers[side] = fn }

// SetLoadedAll marks side as exhausted or not. Clearing it re-arms the side.
func (t *LoadTrigger) SetLoadedAll(side Side, v bool) {
	t.loadedAll[side] = v
	if !v {
		t.armed[side] = true
	}
}

// LoadedAll reports whether side is exhausted.
func (t *LoadTrigger) LoadedAll(side Side) bool { return t.loadedAll[side] }

// Rearm allows side to fire again on the current approach.
func (t *LoadTrigger) Rearm(side Side) { t.armed[side] = true }

// Reset re-arms both sides and forgets exhaustion.
func (t *LoadTrigger) Reset() {
	t.armed = [2]bool{true, true}
	t.loadedAll = [2]bool{}
}

// Check evaluates both sides for one frame. direction is negative when the
// last scroll moved up, positive when it moved down and zero otherwise. It
// returns the sides that fired.
func (t *LoadTrigger) Check(scrollTop, scrollHeight, clientHeight, direction int) []Side {
	if scrollHeight == 0 {
		return nil
	}
	var fired []Side

	inTop := scrollTop <= t.threshold
	if !inTop {
		t.armed[Up] = true
	} else if direction <= 0 && t.fire(Up) {
		fired = append(fired, Up)
	}

	distance := scrollHeight - clientHeight - scrollTop
	inBottom := distance <= t.threshold
	if !inBottom {
		t.armed[Down] = true
	} else if direction >= 0 && t.fire(Down) {
		fired = append(fired, Down)
	}
	return fired
}

func (t *LoadTrigger) fire(side Side) bool {
	if !t.armed[side] || t.loadedAll[side] || t.handlers[side] == nil {
		return false
	}
	t.armed[side] = false
	t.handlers[side]()
	return true
}
