package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-history/client"
)

func TestLoaderPages(t *testing.T) {
	s := openTestStore(t)
	fill(t, s, "a", 25)
	l := NewLoader(s, "a", 10, 0, nil)

	cmd := l.Load(Initial, 0)
	require.NotNil(t, cmd)
	assert.Nil(t, l.Load(Initial, 0), "one load per direction")
	assert.True(t, l.Loading())

	res := cmd().(PageLoaded)
	require.True(t, l.Accept(res))
	require.NoError(t, res.Err)
	assert.Equal(t, []int64{16, 17, 18, 19, 20, 21, 22, 23, 24, 25}, seqs(res.Messages))
	assert.False(t, res.Exhausted)
	assert.False(t, l.Busy(Initial))

	res = l.Load(Older, 6)().(PageLoaded)
	require.True(t, l.Accept(res))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seqs(res.Messages))
	assert.True(t, res.Exhausted)

	res = l.Load(Newer, 25)().(PageLoaded)
	require.True(t, l.Accept(res))
	assert.Empty(t, res.Messages)
	assert.True(t, res.Exhausted)
}

func TestLoaderDropsStaleGeneration(t *testing.T) {
	s := openTestStore(t)
	fill(t, s, "a", 5)
	l := NewLoader(s, "a", 10, 0, nil)

	inFlight := l.Load(Older, 5)
	l.Reset(l.Generation() + 1)

	res := inFlight().(PageLoaded)
	assert.False(t, l.Accept(res))
	assert.False(t, l.Busy(Older), "reset cleared the flag")

	fresh := l.Load(Older, 5)
	require.NotNil(t, fresh)
	assert.True(t, l.Accept(fresh().(PageLoaded)))
}

type blockingSource struct{ started chan struct{} }

func (b blockingSource) wait(ctx context.Context) ([]Message, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b blockingSource) Latest(ctx context.Context, _ string, _ int) ([]Message, error) {
	return b.wait(ctx)
}

func (b blockingSource) Before(ctx context.Context, _ string, _ int64, _ int) ([]Message, error) {
	return b.wait(ctx)
}

func (b blockingSource) After(ctx context.Context, _ string, _ int64, _ int) ([]Message, error) {
	return b.wait(ctx)
}

func TestLoaderResetCancelsInFlight(t *testing.T) {
	src := blockingSource{started: make(chan struct{})}
	l := NewLoader(src, "a", 10, 0, nil)
	cmd := l.Load(Initial, 0)

	done := make(chan PageLoaded, 1)
	go func() { done <- cmd().(PageLoaded) }()
	<-src.started
	l.Reset(7)

	res := <-done
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, l.Accept(res))
	assert.Equal(t, uint64(7), l.Generation())
}

func newBackend(t *testing.T, total int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sessions":
			json.NewEncoder(w).Encode(map[string]any{"sessions": []client.SessionInfo{
				{ID: "old", MessageCount: 3, CreatedAt: "2024-05-01T00:00:00Z"},
				{ID: "s", MessageCount: total, CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2025-01-02T03:04:05Z"},
			}})
			return
		case "/api/v1/sessions/s":
			json.NewEncoder(w).Encode(client.SessionInfo{ID: "s", MessageCount: total})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		before, _ := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)

		lo, hi := int64(1), int64(total)
		switch {
		case before > 0:
			hi = before - 1
			lo = max(1, hi-int64(limit)+1)
		case after > 0:
			lo = after + 1
			hi = min(int64(total), lo+int64(limit)-1)
		default:
			lo = max(1, hi-int64(limit)+1)
		}
		page := client.MessagePage{Offset: lo - 1}
		for seq := lo; seq <= hi; seq++ {
			page.Messages = append(page.Messages, client.SessionMessage{
				Seq: seq, Role: "user", Content: "remote " + strconv.FormatInt(seq, 10),
				Timestamp: "2025-01-02T03:04:05Z",
			})
		}
		json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource(t *testing.T) {
	srv := newBackend(t, 12)
	r := NewRemote(client.New(srv.URL))
	ctx := context.Background()

	latest, err := r.Latest(ctx, "s", 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 9, 10, 11, 12}, seqs(latest))
	assert.Equal(t, StableID("s", 8), latest[0].ID)
	assert.Equal(t, 2025, latest[0].CreatedAt.Year())

	older, err := r.Before(ctx, "s", 8, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5, 6, 7}, seqs(older))

	none, err := r.Before(ctx, "s", 1, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRemoteCatalog(t *testing.T) {
	r := NewRemote(client.New(newBackend(t, 12).URL))
	ctx := context.Background()

	list, err := r.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s", list[0].Session, "most recently updated first")
	assert.Equal(t, 12, list[0].Messages)
	assert.Equal(t, 2025, list[0].Updated.Year())

	n, err := r.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestImport(t *testing.T) {
	srv := newBackend(t, 23)
	s := openTestStore(t)
	ctx := context.Background()

	n, err := Import(ctx, NewRemote(client.New(srv.URL)), s, "s", 10)
	require.NoError(t, err)
	assert.Equal(t, 23, n)

	// importing again rewrites the same positions
	_, err = Import(ctx, NewRemote(client.New(srv.URL)), s, "s", 10)
	require.NoError(t, err)
	count, err := s.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 23, count)

	_, err = Import(ctx, NewRemote(client.New(newBackend(t, 0).URL)), s, "empty", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
