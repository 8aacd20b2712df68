// Package msg defines the tea.Msg types dispatched between the viewer's
// packages. It has no upstream imports beyond config to avoid import cycles;
// page results live next to the loader in package history.
package msg

import "github.com/miosa/osa-history/config"

// -- Rendering --

// Frame asks the chat pane to run one engine frame. Frames are requested by
// the engine and delivered through tea.Tick so bursts of scroll and resize
// events collapse into one pass.
type Frame struct {
	Gen uint64 // container generation the frame was requested under
}

// TailTick polls the source for messages newer than the last one loaded.
type TailTick struct{}

// -- Lifecycle --

// ImportResult from copying a backend session into the local store.
type ImportResult struct {
	Session string
	Count   int
	Err     error
}

// ConfigReloaded is sent when the config file changed on disk.
type ConfigReloaded struct {
	Config *config.Config
	Err    error
}

// -- Notices --

// Level classifies a system notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Notice is a transient system line shown in the status bar.
type Notice struct {
	Level Level
	Text  string
}
