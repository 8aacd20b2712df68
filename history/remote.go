package history

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/miosa/osa-history/client"
)

// Remote pages a session straight from an OSA backend.
type Remote struct {
	client *client.Client
}

// NewRemote wraps c as a Source.
func NewRemote(c *client.Client) *Remote {
	return &Remote{client: c}
}

func (r *Remote) Latest(ctx context.Context, session string, limit int) ([]Message, error) {
	return r.page(ctx, session, client.PageQuery{Limit: limit})
}

func (r *Remote) Before(ctx context.Context, session string, seq int64, limit int) ([]Message, error) {
	if seq <= 1 {
		return nil, nil
	}
	return r.page(ctx, session, client.PageQuery{Before: seq, Limit: limit})
}

func (r *Remote) After(ctx context.Context, session string, seq int64, limit int) ([]Message, error) {
	return r.page(ctx, session, client.PageQuery{After: seq, Limit: limit})
}

// Sessions lists the backend's sessions, most recently updated first.
func (r *Remote) Sessions(ctx context.Context) ([]SessionSummary, error) {
	infos, err := r.client.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SessionSummary, 0, len(infos))
	for _, in := range infos {
		out = append(out, SessionSummary{
			Session:  in.ID,
			Messages: in.MessageCount,
			Updated:  parseTime(cmp.Or(in.UpdatedAt, in.CreatedAt)),
		})
	}
	slices.SortStableFunc(out, func(a, b SessionSummary) int { return b.Updated.Compare(a.Updated) })
	return out, nil
}

// Count returns how many messages the backend holds for session.
func (r *Remote) Count(ctx context.Context, session string) (int, error) {
	info, err := r.client.GetSession(ctx, session)
	if err != nil {
		return 0, err
	}
	return info.MessageCount, nil
}

func (r *Remote) page(ctx context.Context, session string, q client.PageQuery) ([]Message, error) {
	page, err := r.client.GetSessionMessages(ctx, session, q)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(page.Messages))
	for _, sm := range page.Messages {
		m := Message{
			ID:      StableID(session, sm.Seq),
			Session: session,
			Seq:     sm.Seq,
			Role:    Role(sm.Role),
			Content: sm.Content,
		}
		m.CreatedAt = parseTime(sm.Timestamp)
		out = append(out, m)
	}
	return out, nil
}

// parseTime reads an RFC 3339 timestamp; anything else is the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Import copies a remote session into store, oldest page last, and returns
// how many messages were written.
func Import(ctx context.Context, src Source, store *Store, session string, pageSize int) (int, error) {
	page, err := src.Latest(ctx, session, pageSize)
	if err != nil {
		return 0, err
	}
	total := 0
	for len(page) > 0 {
		if err := store.Append(ctx, page...); err != nil {
			return total, err
		}
		total += len(page)
		if len(page) < pageSize {
			break
		}
		if page, err = src.Before(ctx, session, page[0].Seq, pageSize); err != nil {
			return total, err
		}
	}
	if total == 0 {
		return 0, ErrNotFound
	}
	return total, nil
}
