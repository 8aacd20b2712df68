package history

import (
	"context"
	"errors"
	"io"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/time/rate"
)

// Direction says which end of the conversation a page extends.
type Direction int

const (
	Initial Direction = iota // the newest page, replacing everything
	Older                    // prepended above the oldest loaded message
	Newer                    // appended below the newest loaded message
)

func (d Direction) String() string {
	switch d {
	case Initial:
		return "initial"
	case Older:
		return "older"
	case Newer:
		return "newer"
	default:
		return "unknown"
	}
}

// PageLoaded is delivered when a page load finishes. Gen is the generation
// the load was started under.
type PageLoaded struct {
	Gen       uint64
	Dir       Direction
	Messages  []Message
	Exhausted bool // that end of the conversation was reached
	Err       error
}

// Loader turns load requests into tea.Cmds. Loads are tagged with the
// generation they were started under; Reset cancels everything in flight and
// moves to a new generation so late results can be recognised and dropped.
//
// Loader is driven from the update loop and is not safe for concurrent use.
// The commands it returns only touch the state they captured.
type Loader struct {
	src      Source
	session  string
	pageSize int
	limiter  *rate.Limiter
	log      *slog.Logger

	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight [3]bool
}

// NewLoader returns a loader for session. perSecond caps how often pages are
// fetched; bursts of one page per direction pass immediately.
func NewLoader(src Source, session string, pageSize int, perSecond float64, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	l := &Loader{
		src:      src,
		session:  session,
		pageSize: max(pageSize, 1),
		limiter:  rate.NewLimiter(limit, 2),
		log:      log,
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

// Session returns the session being paged.
func (l *Loader) Session() string { return l.session }

// PageSize returns the number of messages per page.
func (l *Loader) PageSize() int { return l.pageSize }

// Generation returns the current generation.
func (l *Loader) Generation() uint64 { return l.gen }

// Busy reports whether a load in dir is in flight.
func (l *Loader) Busy(dir Direction) bool { return l.inFlight[dir] }

// Loading reports whether any load is in flight.
func (l *Loader) Loading() bool {
	return l.inFlight[Initial] || l.inFlight[Older] || l.inFlight[Newer]
}

// Reset cancels in-flight loads and adopts gen. Results of earlier
// generations are rejected by Accept from now on.
func (l *Loader) Reset(gen uint64) {
	l.cancel()
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.gen = gen
	l.inFlight = [3]bool{}
}

// SetSession switches to another session. The caller resets afterwards.
func (l *Loader) SetSession(session string) { l.session = session }

// Close cancels everything in flight.
func (l *Loader) Close() { l.cancel() }

// Load starts fetching a page in dir relative to seq. It returns nil when a
// load in that direction is already running.
func (l *Loader) Load(dir Direction, seq int64) tea.Cmd {
	if l.inFlight[dir] {
		return nil
	}
	l.inFlight[dir] = true

	ctx, gen, src, session, size, limiter := l.ctx, l.gen, l.src, l.session, l.pageSize, l.limiter
	l.log.Debug("page load", "dir", dir, "seq", seq, "generation", gen)
	return func() tea.Msg {
		if err := limiter.Wait(ctx); err != nil {
			return PageLoaded{Gen: gen, Dir: dir, Err: err}
		}
		var (
			msgs []Message
			err  error
		)
		switch dir {
		case Initial:
			msgs, err = src.Latest(ctx, session, size)
		case Older:
			msgs, err = src.Before(ctx, session, seq, size)
		case Newer:
			msgs, err = src.After(ctx, session, seq, size)
		}
		return PageLoaded{Gen: gen, Dir: dir, Messages: msgs, Exhausted: err == nil && len(msgs) < size, Err: err}
	}
}

// Accept reports whether res belongs to the current generation and clears its
// in-flight flag if so. Stale results are logged and must be dropped.
func (l *Loader) Accept(res PageLoaded) bool {
	if res.Gen != l.gen {
		l.log.Warn("discarding stale page", "dir", res.Dir, "generation", res.Gen, "current", l.gen, "messages", len(res.Messages))
		return false
	}
	l.inFlight[res.Dir] = false
	if errors.Is(res.Err, context.Canceled) {
		return false
	}
	return true
}
