package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Memory, WithClock(fakeClock()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreStartsSessionOnFirstCell(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	assert.Equal(t, uuid.Nil, s.Session())

	require.NoError(t, s.Store(ctx, 1, "hello()", "__awaitless_tmp = hello()"))
	id := s.Session()
	assert.NotEqual(t, uuid.Nil, id)

	cells, err := s.Cells(ctx, id)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Line)
	assert.Equal(t, "hello()", cells[0].Source)
	assert.Equal(t, "__awaitless_tmp = hello()", cells[0].Rewritten)
	assert.Equal(t, id, cells[0].Session)
	assert.Equal(t, 2024, cells[0].At.UTC().Year())
}

func TestStoreReplacesSameLine(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Store(ctx, 1, "a", "a"))
	require.NoError(t, s.Store(ctx, 1, "b", "b"))
	cells, err := s.Cells(ctx, s.Session())
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "b", cells[0].Source)
}

func TestRecentSpansSessions(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	first, err := s.StartSession(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, 1, "one", "one"))
	require.NoError(t, s.Store(ctx, 2, "two", "two"))
	require.NoError(t, s.EndSession(ctx))

	second, err := s.StartSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	require.NoError(t, s.Store(ctx, 1, "three", "three"))

	cells, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "two", cells[0].Source)
	assert.Equal(t, first, cells[0].Session)
	assert.Equal(t, "three", cells[1].Source)
	assert.Equal(t, second, cells[1].Session)

	all, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUnknownSession(t *testing.T) {
	s := openMemory(t)
	_, err := s.Cells(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(Memory)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Store(ctx, 1, "x", "x"), ErrClosed)
	_, err = s.Recent(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHistorySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Store(ctx, 1, "let a = 1", "let a = 1"))
	id := s.Session()
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	cells, err := reopened.Cells(ctx, id)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "let a = 1", cells[0].Source)
}
