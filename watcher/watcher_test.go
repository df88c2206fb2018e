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

	"github.com/vcnkl/browserprobe/logger"
)

func TestDebouncer(t *testing.T) {
	t.Run("collapses a burst", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDebouncer(30 * time.Millisecond)

		for i := 0; i < 5; i++ {
			d.Trigger(func() { calls.Add(1) })
		}

		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("stop drops pending trigger", func(t *testing.T) {
		var calls atomic.Int32
		d := NewDebouncer(30 * time.Millisecond)

		d.Trigger(func() { calls.Add(1) })
		d.Stop()

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestNewWatcher_NoFiles(t *testing.T) {
	_, err := NewWatcher(nil, DefaultDelay, logger.Nop())
	assert.Error(t, err)
}

func TestWatcher_Start(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "browserprobe.yml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(config, []byte("log_dir: /tmp\n"), 0644))

	w, err := NewWatcher([]string{config}, 20*time.Millisecond, logger.Nop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan string, 10)
	w.OnChange(func(path string) { changed <- path })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	select {
	case path := <-changed:
		t.Fatalf("unexpected change for %s", path)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(config, []byte("log_dir: /var/tmp\n"), 0644))
	select {
	case path := <-changed:
		assert.Equal(t, config, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "browserprobe.yml")
	envFile := filepath.Join(dir, "probe.env")
	require.NoError(t, os.WriteFile(config, []byte("log_dir: /tmp\n"), 0644))

	absent, err := Fingerprint([]string{config, envFile})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(envFile, nil, 0644))
	empty, err := Fingerprint([]string{envFile, config})
	require.NoError(t, err)
	assert.NotEqual(t, absent, empty)

	again, err := Fingerprint([]string{config, envFile})
	require.NoError(t, err)
	assert.Equal(t, empty, again, "order of files must not matter")

	require.NoError(t, os.WriteFile(config, []byte("log_dir: /var/tmp\n"), 0644))
	changed, err := Fingerprint([]string{config, envFile})
	require.NoError(t, err)
	assert.NotEqual(t, empty, changed)
	assert.Contains(t, changed, "sha256:")
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.env")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}
