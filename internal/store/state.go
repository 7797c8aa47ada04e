package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/normal-ex/letrecovery-web/internal/theme"
)

// AppName names the XDG data subdirectory.
const AppName = "letrecovery-web"

// CurrentSchemaVersion is the current version of the state schema.
const CurrentSchemaVersion = 1

// DataDir returns the path to the data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/letrecovery-web.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName), nil
}

// StateFilePath returns the default path to the preference state file.
func StateFilePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

// preferenceState is the on-disk layout. The theme key is theme.StorageKey.
type preferenceState struct {
	Theme         string `json:"theme"`
	UpdatedAt     int64  `json:"updated_at,omitempty"`
	SchemaVersion int    `json:"schema_version"`
}

// PreferenceFile persists the theme preference as a small JSON document.
// It implements theme.PreferenceStore.
type PreferenceFile struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

// NewPreferenceFile creates a PreferenceFile at path.
// The file is created on the first Save.
func NewPreferenceFile(path string) *PreferenceFile {
	return &PreferenceFile{
		path: path,
		now:  time.Now,
	}
}

// Path returns the file location.
func (f *PreferenceFile) Path() string {
	return f.path
}

// Load reads the stored preference. A missing or corrupted file yields ""
// so the resolver falls back to its default; the value is not validated.
func (f *PreferenceFile) Load() (theme.Preference, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read state file: %w", err)
	}

	var state preferenceState
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupted file is treated as absent.
		return "", nil
	}

	return theme.Preference(state.Theme), nil
}

// Save overwrites the stored preference.
func (f *PreferenceFile) Save(p theme.Preference) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(preferenceState{
		Theme:         string(p),
		UpdatedAt:     f.now().Unix(),
		SchemaVersion: CurrentSchemaVersion,
	}, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return os.Rename(tmpPath, f.path)
}
