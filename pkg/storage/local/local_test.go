package local

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/pkg/logger"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(config.LocalStorageConfig{Dir: t.TempDir()}, logger.NewTestLogger())
	require.NoError(t, err)
	return s
}

func TestStoreAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	key, err := s.Store(ctx, strings.NewReader("hello"), "uploads/d1.txt")
	require.NoError(t, err)
	assert.Equal(t, "uploads/d1.txt", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	_, err := s.Store(ctx, strings.NewReader("x"), "uploads/d1.txt")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "uploads/d1.txt"))
	require.NoError(t, s.Delete(ctx, "uploads/d1.txt"))

	_, err = s.Get(ctx, "uploads/d1.txt")
	assert.Error(t, err)
}

func TestKeyCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	_, err := s.Store(ctx, strings.NewReader("x"), "../escape.txt")
	assert.Error(t, err)
	_, err = s.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
}

func TestCleanupBefore(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	_, err := s.Store(ctx, strings.NewReader("keep"), "uploads/keep.txt")
	require.NoError(t, err)

	// Nothing is older than a threshold in the past.
	require.NoError(t, s.CleanupBefore(ctx, time.Now().Add(-time.Hour)))
	rc, err := s.Get(ctx, "uploads/keep.txt")
	require.NoError(t, err)
	rc.Close()

	// Everything is older than a threshold in the future.
	require.NoError(t, s.CleanupBefore(ctx, time.Now().Add(time.Hour)))
	_, err = s.Get(ctx, "uploads/keep.txt")
	assert.Error(t, err)
}
