package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docuvault/config"
	"github.com/docuvault/docuvault/pkg/logger"
)

func TestNewSelectsBackend(t *testing.T) {
	log := logger.NewTestLogger()

	st, err := New(config.StorageConfig{
		Type:  "local",
		Local: config.LocalStorageConfig{Dir: t.TempDir()},
	}, log)
	require.NoError(t, err)
	assert.NotNil(t, st)

	_, err = New(config.StorageConfig{Type: "carrier-pigeon"}, log)
	assert.Error(t, err)
}

func TestRunRetentionSweepPrunesOldFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	st, err := New(config.StorageConfig{
		Type:  "local",
		Local: config.LocalStorageConfig{Dir: dir},
	}, logger.NewTestLogger())
	require.NoError(t, err)

	_, err = st.Store(ctx, strings.NewReader("old"), "old.txt")
	require.NoError(t, err)
	_, err = st.Store(ctx, strings.NewReader("fresh"), "fresh.txt")
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.txt"), stale, stale))

	go RunRetentionSweep(ctx, st, 24*time.Hour, 10*time.Millisecond, logger.NewTestLogger())

	assert.Eventually(t, func() bool {
		_, err := st.Get(ctx, "old.txt")
		return err != nil
	}, time.Second, 10*time.Millisecond)

	rc, err := st.Get(ctx, "fresh.txt")
	require.NoError(t, err)
	rc.Close()
}

func TestRunRetentionSweepDisabledByZeroRetention(t *testing.T) {
	// Returns immediately instead of ticking forever.
	done := make(chan struct{})
	go func() {
		RunRetentionSweep(context.Background(), nil, 0, time.Millisecond, logger.NewTestLogger())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not exit with zero retention")
	}
}
