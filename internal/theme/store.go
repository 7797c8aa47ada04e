package theme

import "sync"

// PreferenceStore persists the preference under StorageKey.
type PreferenceStore interface {
	// Load returns the stored value, or "" when nothing is stored.
	// The value is not validated.
	Load() (Preference, error)

	// Save overwrites the stored value.
	Save(p Preference) error
}

// MemoryStore keeps the preference in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	value Preference
}

// NewMemoryStore creates a MemoryStore holding p ("" for unset).
func NewMemoryStore(p Preference) *MemoryStore {
	return &MemoryStore{value: p}
}

// Load implements PreferenceStore.
func (s *MemoryStore) Load() (Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

// Save implements PreferenceStore.
func (s *MemoryStore) Save(p Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = p
	return nil
}
