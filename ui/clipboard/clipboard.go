// Package clipboard copies message text out of the viewer.
package clipboard

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/miosa/osa-history/msg"
)

// Copy returns a command that puts text on the clipboard. The OSC 52
// sequence goes through the renderer and reaches terminals over SSH; the
// native clipboard is written as well when the platform has one.
func Copy(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	return tea.Batch(tea.SetClipboard(text), func() tea.Msg {
		return copied(len([]rune(text)), clipboard.WriteAll(text), clipboard.Unsupported)
	})
}

// copied reports the outcome. A missing native clipboard is not a failure
// because OSC 52 already carried the text.
func copied(runes int, err error, unsupported bool) msg.Notice {
	if err != nil && !unsupported {
		return msg.Notice{Level: msg.LevelWarning, Text: "clipboard: " + err.Error()}
	}
	return msg.Notice{Level: msg.LevelInfo, Text: fmt.Sprintf("copied %d characters", runes)}
}
