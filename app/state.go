package app

// State represents the current application state.
type State int

const (
	StateLoading  State = iota // waiting for the first page
	StateBrowsing              // conversation on screen
	StateError                 // the first page failed to load
	StateSessions              // session browser dialog
	StateQuit                  // quit confirmation dialog
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateBrowsing:
		return "browsing"
	case StateError:
		return "error"
	case StateSessions:
		return "sessions"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// overlay reports whether s shows a dialog over the conversation.
func (s State) overlay() bool { return s == StateSessions || s == StateQuit }
