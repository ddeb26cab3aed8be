package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: []\n"), 0o644))

	var calls atomic.Int32
	w, err := New([]string{path}, 50*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, w.Close()) })

	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("steps: []\n# edit\n"), 0o644))
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var calls atomic.Int32
	w, err := New([]string{path}, 20*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, w.Close()) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".story.yaml.swp"), nil, 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	w, err := New([]string{path}, DefaultDelay, func() {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, DefaultDelay, func() {})
	require.Error(t, err)
	_, err = New([]string{filepath.Join(t.TempDir(), "missing", "story.yaml")}, DefaultDelay, func() {})
	require.Error(t, err)
}

func TestShouldIgnore(t *testing.T) {
	for name, want := range map[string]bool{
		"story.yaml":     false,
		"story.yaml~":    true,
		".#story.yaml":   true,
		"story.yaml.swp": true,
		"index.lock":     true,
		"details/a.md":   false,
	} {
		assert.Equal(t, want, shouldIgnore(name), name)
	}
}
