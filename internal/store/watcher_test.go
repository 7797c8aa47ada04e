package store

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/normal-ex/letrecovery-web/internal/theme"
)

func TestPreferenceWatcher_NotifiesOnSave(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "state.json")

	var calls atomic.Int32
	w, err := NewPreferenceWatcher(path, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, NewPreferenceFile(path).Save(theme.PreferenceDark))

	assert.Eventually(t, func() bool {
		return calls.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
}

func TestPreferenceWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	var calls atomic.Int32
	w, err := NewPreferenceWatcher(path, func() { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, w.Stop())
}

func TestPreferenceWatcher_ReloadsResolver(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "state.json")
	source := theme.NewManualSource(true)

	r := theme.New(NewPreferenceFile(path), source)
	defer r.Close()
	require.Equal(t, theme.ResolvedDark, r.Resolved())

	w, err := NewPreferenceWatcher(path, r.Reload, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Another process writes an explicit preference.
	require.NoError(t, NewPreferenceFile(path).Save(theme.PreferenceLight))

	assert.Eventually(t, func() bool {
		return r.Preference() == theme.PreferenceLight
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, theme.ResolvedLight, r.Resolved())
	assert.False(t, r.Watching())
}

func TestPreferenceWatcher_StopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewPreferenceWatcher(filepath.Join(t.TempDir(), "state.json"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	_ = w.Stop()
}
