package scrollable

// DefaultMinThumb is the smallest thumb, in rows.
const DefaultMinThumb = 1.0

// Thumb is the scrollbar thumb for one viewport state. Size and Offset are in
// rows of the track; the percentages are relative to the track height.
type Thumb struct {
	Size          float64
	Offset        float64
	SizePercent   float64
	OffsetPercent float64
}

// Visible reports whether the thumb should be drawn at all.
func (t Thumb) Visible() bool { return t.Size > 0 }

// ComputeThumb sizes and positions the thumb. There is no thumb when the
// viewport has no height or the content does not overflow it.
func ComputeThumb(scrollHeight, clientHeight, scrollTop int, minSize float64) Thumb {
	if clientHeight <= 0 || scrollHeight <= clientHeight {
		return Thumb{}
	}
	client := float64(clientHeight)
	divider := float64(scrollHeight) / client / 0.5
	size := client / divider
	size = min(max(size, minSize), client)

	ratio := float64(scrollTop) / float64(scrollHeight-clientHeight)
	ratio = min(max(ratio, 0), 1)

	sizePct := size / client * 100
	offsetPct := ratio * (100 - sizePct)
	return Thumb{
		Size:          size,
		Offset:        offsetPct / 100 * client,
		SizePercent:   sizePct,
		OffsetPercent: offsetPct,
	}
}

// DragScroll converts a pointer movement along the track into a scroll delta.
func DragScroll(pointerDelta float64, scrollHeight, clientHeight int, thumb Thumb) float64 {
	travel := float64(clientHeight) - thumb.Size
	if travel <= 0 || scrollHeight <= clientHeight {
		return 0
	}
	return pointerDelta * float64(scrollHeight-clientHeight) / travel
}
