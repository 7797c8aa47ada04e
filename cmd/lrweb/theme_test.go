package main

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normal-ex/letrecovery-web/internal/config"
	"github.com/normal-ex/letrecovery-web/internal/theme"
)

func setupThemeTest(t *testing.T, source string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "state.json")
	cfg = config.DefaultConfig()
	cfg.Theme.StateFile = path
	cfg.Theme.Source = source
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	themeOpts.source = ""
	return path
}

func TestThemeSetThenGet(t *testing.T) {
	setupThemeTest(t, "dark")

	var out bytes.Buffer
	themeSetCmd.SetOut(&out)
	require.NoError(t, runThemeSet(themeSetCmd, []string{"Light"}))
	assert.Contains(t, out.String(), "light")

	r, file, cleanup, err := newDesktopResolver()
	require.NoError(t, err)
	defer cleanup()

	saved, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, theme.PreferenceLight, saved)
	assert.Equal(t, theme.State{Preference: theme.PreferenceLight, Resolved: theme.ResolvedLight}, r.State())
}

func TestThemeSet_Invalid(t *testing.T) {
	setupThemeTest(t, "light")
	err := runThemeSet(themeSetCmd, []string{"sepia"})
	assert.ErrorIs(t, err, theme.ErrInvalidPreference)
}

func TestNewDesktopResolver_SystemFollowsStaticSource(t *testing.T) {
	setupThemeTest(t, "light")
	themeOpts.source = "dark"

	r, _, cleanup, err := newDesktopResolver()
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, theme.PreferenceSystem, r.Preference())
	assert.Equal(t, theme.ResolvedDark, r.Resolved())
}

func TestNewDesktopResolver_InvalidSource(t *testing.T) {
	setupThemeTest(t, "gtk")
	_, _, _, err := newDesktopResolver()
	assert.Error(t, err)
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, theme.State{Preference: theme.PreferenceSystem, Resolved: theme.ResolvedDark})

	assert.Contains(t, out.String(), "preference:")
	assert.Contains(t, out.String(), "system")
	assert.Contains(t, out.String(), "dark")
}
