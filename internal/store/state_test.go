package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normal-ex/letrecovery-web/internal/theme"
)

func TestDataDir_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AppName), got)

	path, err := StateFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AppName, "state.json"), path)
}

func TestPreferenceFile_MissingFile(t *testing.T) {
	f := NewPreferenceFile(filepath.Join(t.TempDir(), "state.json"))

	p, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, theme.Preference(""), p)
}

func TestPreferenceFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f := NewPreferenceFile(path)

	for _, p := range theme.ValidPreferences() {
		require.NoError(t, f.Save(p))

		got, err := f.Load()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	// Temp file must not be left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "system"`)
	assert.Contains(t, string(data), `"schema_version": 1`)
}

func TestPreferenceFile_CorruptedTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	p, err := NewPreferenceFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, theme.Preference(""), p)
}

func TestPreferenceFile_UnknownValuePassedThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"sepia","schema_version":1}`), 0600))

	p, err := NewPreferenceFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, theme.Preference("sepia"), p)

	// The resolver treats it as absent.
	r := theme.New(NewPreferenceFile(path), theme.StaticSource(true))
	defer r.Close()
	assert.Equal(t, theme.PreferenceSystem, r.Preference())
	assert.Equal(t, theme.ResolvedDark, r.Resolved())
}

func TestPreferenceFile_WithResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f := NewPreferenceFile(path)

	source := theme.NewManualSource(false)
	r := theme.New(f, source)
	defer r.Close()

	require.NoError(t, r.SetPreference(theme.PreferenceDark))

	// A fresh session reads the persisted value back.
	r2 := theme.New(NewPreferenceFile(path), source)
	defer r2.Close()
	assert.Equal(t, theme.PreferenceDark, r2.Preference())
	assert.Equal(t, theme.ResolvedDark, r2.Resolved())
}

func TestPreferenceFile_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	// Parent is a regular file, so MkdirAll fails.
	f := NewPreferenceFile(filepath.Join(blocker, "state.json"))
	assert.Error(t, f.Save(theme.PreferenceDark))

	r := theme.New(f, theme.StaticSource(false))
	defer r.Close()
	require.NoError(t, r.SetPreference(theme.PreferenceDark))
	assert.Equal(t, theme.ResolvedDark, r.Resolved())
}
