package status

import (
	"fmt"

	"github.com/miosa/osa-history/style"
	"github.com/miosa/osa-history/ui/common"
)

// PositionPill renders where the viewport sits in the loaded content:
// "Top", "Bot", "All" or a percentage of the scrollable range.
func PositionPill(scrollTop, scrollHeight, clientHeight int) string {
	maxTop := scrollHeight - clientHeight
	var s string
	switch {
	case maxTop <= 0:
		s = "All"
	case scrollTop <= 0:
		s = "Top"
	case scrollTop >= maxTop:
		s = "Bot"
	default:
		s = fmt.Sprintf("%d%%", scrollTop*100/maxTop)
	}
	return style.StatusValue.Render(s)
}

// WindowPill renders how many messages are live and how many are held back
// on each side, e.g. "live 42 ↑180 ↓0".
func WindowPill(live, hiddenUp, hiddenDown int) string {
	return style.StatusKey.Render("live ") + style.StatusValue.Render(common.HumanCount(live)) +
		style.StatusKey.Render(fmt.Sprintf(" ↑%s ↓%s", common.HumanCount(hiddenUp), common.HumanCount(hiddenDown)))
}

// LoadedPill renders the loaded message count, with a marker once the start
// of the conversation has been reached.
func LoadedPill(loaded int, complete bool) string {
	s := style.StatusValue.Render(common.HumanCount(loaded))
	if complete {
		s += style.StatusKey.Render(" (all)")
	}
	return style.StatusKey.Render("loaded ") + s
}
