package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seqs(msgs []Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.Seq
	}
	return out
}

func fill(t *testing.T, s *Store, session string, n int) {
	t.Helper()
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = Message{Session: session, Seq: int64(i + 1), Role: RoleUser, Content: "m"}
	}
	require.NoError(t, s.Append(context.Background(), msgs...))
}

func TestStorePaging(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fill(t, s, "a", 10)
	fill(t, s, "b", 3)

	latest, err := s.Latest(ctx, "a", 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8, 9, 10}, seqs(latest))

	older, err := s.Before(ctx, "a", 7, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5, 6}, seqs(older))

	oldest, err := s.Before(ctx, "a", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, seqs(oldest))

	newer, err := s.After(ctx, "a", 8, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 10}, seqs(newer))

	n, err := s.Count(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	next, err := s.NextSeq(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(11), next)

	next, err = s.NextSeq(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestStoreUpsertKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fill(t, s, "a", 2)

	require.NoError(t, s.Append(ctx, Message{Session: "a", Seq: 2, Role: RoleAssistant, Content: "edited"}))
	msgs, err := s.Latest(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "edited", msgs[1].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, StableID("a", 2), msgs[1].ID)
	assert.NotEqual(t, uuid.Nil, msgs[0].ID)
}

func TestStoreSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fill(t, s, "a", 2)
	fill(t, s, "b", 5)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	counts := map[string]int{}
	for _, ss := range sessions {
		counts[ss.Session] = ss.Messages
	}
	assert.Equal(t, map[string]int{"a": 2, "b": 5}, counts)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, Seed(ctx, s, "demo", 50))
	require.NoError(t, Seed(ctx, s, "demo", 10))

	n, err := s.Count(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	latest, err := s.Latest(ctx, "demo", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), latest[0].Seq)
}

func TestStableID(t *testing.T) {
	assert.Equal(t, StableID("s", 1), StableID("s", 1))
	assert.NotEqual(t, StableID("s", 1), StableID("s", 2))
	assert.NotEqual(t, StableID("s", 1), StableID("t", 1))
}
