package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore checks the contract every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "@recipebox:recipes")
	require.NoError(t, err)
	assert.False(t, ok, "absent key must report ok=false")

	require.NoError(t, s.Set(ctx, "@recipebox:recipes", `[{"id":"1","title":"Bolo"}]`))
	v, ok, err := s.Get(ctx, "@recipebox:recipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1","title":"Bolo"}]`, v)

	require.NoError(t, s.Set(ctx, "@recipebox:recipes", `[]`))
	v, ok, err = s.Get(ctx, "@recipebox:recipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v, "set must replace the whole value")

	require.NoError(t, s.Set(ctx, "other", "x"))
	require.NoError(t, s.Remove(ctx, "@recipebox:recipes"))
	_, ok, err = s.Get(ctx, "@recipebox:recipes")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok, "remove must not touch other keys")
	assert.Equal(t, "x", v)

	assert.NoError(t, s.Remove(ctx, "never-set"), "removing an absent key is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreFaults(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	boom := errors.New("quota exceeded")
	m.SetFaults(Faults{Set: boom})

	assert.ErrorIs(t, m.Set(ctx, "k", "v"), boom)
	assert.Equal(t, 0, m.Sets())

	m.SetFaults(Faults{})
	require.NoError(t, m.Set(ctx, "k", "v"))
	assert.Equal(t, 1, m.Sets())
}

func TestMemoryStoreHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMemory().Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "@recipebox:recipes", "[]"))

	reopened, err := OpenFile(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "@recipebox:recipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "recipebox.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	s, err := NewFirestore(context.Background(), FirestoreConfig{ProjectID: "recipebox-test", Collection: t.Name()})
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestFirestoreRequiresProject(t *testing.T) {
	_, err := NewFirestore(context.Background(), FirestoreConfig{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{BackendMemory, BackendFile, BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(ctx, Config{Backend: backend, DataDir: dir}, zerolog.Nop())
			require.NoError(t, err)
			defer s.Close()
			exerciseStore(t, s)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "asyncstorage"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestEncodeKeyIsPathSafe(t *testing.T) {
	k := encodeKey("@recipebox:recipes/../x")
	assert.NotContains(t, k, "/")
	assert.NotContains(t, k, ":")
}
