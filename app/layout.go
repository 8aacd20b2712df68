package app

import (
	"github.com/miosa/osa-history/ui/header"
	"github.com/miosa/osa-history/ui/status"
)

// minChatHeight keeps the pane usable in very short terminals; the frame is
// then taller than the terminal and the bottom rows are cut off.
const minChatHeight = 3

// Layout holds computed dimensions for the current frame.
type Layout struct {
	TermWidth    int
	TermHeight   int
	HeaderHeight int
	StatusHeight int
	ChatWidth    int
	ChatHeight   int
	ChatY        int // screen row of the chat pane's first line
}

// ComputeLayout stacks header, chat pane and status bar; the chat pane gets
// every row the other two do not use.
func ComputeLayout(termW, termH int) Layout {
	l := Layout{
		TermWidth:    termW,
		TermHeight:   termH,
		HeaderHeight: header.Height,
		StatusHeight: status.Height,
		ChatWidth:    max(termW, 0),
	}
	l.ChatY = l.HeaderHeight
	l.ChatHeight = max(termH-l.HeaderHeight-l.StatusHeight, minChatHeight)
	return l
}
