package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	_, err := New(Config{Triggers: []string{"vectors.bin"}}, noop)
	assert.Error(t, err)

	_, err = New(Config{Dir: t.TempDir()}, noop)
	assert.Error(t, err)

	_, err = New(Config{Dir: t.TempDir(), Triggers: []string{"vectors.bin"}}, nil)
	assert.Error(t, err)

	_, err = New(Config{Dir: filepath.Join(t.TempDir(), "missing"), Triggers: []string{"vectors.bin"}}, noop)
	assert.Error(t, err)
}

func startWatcher(t *testing.T, dir string, reload ReloadFunc) {
	t.Helper()
	w, err := New(Config{Dir: dir, Triggers: []string{"vectors.bin"}, Debounce: 50 * time.Millisecond}, reload)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestRun_ReloadsOnTrigger(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.bin"), []byte("a"), 0o600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRun_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	path := filepath.Join(dir, "vectors.bin")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o600))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.db"), []byte("a"), 0o600))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRun_StopsOnCancel(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Triggers: []string{"vectors.bin"}}, func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	assert.NoError(t, w.Close())
}
