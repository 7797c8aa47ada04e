package theme

import (
	"errors"
	"fmt"
	"strings"
)

// StorageKey is the fixed key under which the preference is persisted.
const StorageKey = "theme"

// Preference is the user's explicit theme choice.
type Preference string

const (
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// DefaultPreference is used when nothing valid has been persisted.
const DefaultPreference = PreferenceSystem

// ErrInvalidPreference is returned when a value is not light, dark or system.
var ErrInvalidPreference = errors.New("invalid theme preference")

// ValidPreferences returns all valid preference values.
func ValidPreferences() []Preference {
	return []Preference{PreferenceLight, PreferenceDark, PreferenceSystem}
}

// Valid reports whether p is one of the three known values.
func (p Preference) Valid() bool {
	switch p {
	case PreferenceLight, PreferenceDark, PreferenceSystem:
		return true
	default:
		return false
	}
}

func (p Preference) String() string {
	return string(p)
}

// ParsePreference converts user input into a Preference.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParsePreference(s string) (Preference, error) {
	p := Preference(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: %v", ErrInvalidPreference, s, ValidPreferences())
	}
	return p, nil
}

// Resolved is the concrete mode applied to the presentation.
// It is never "system".
type Resolved string

const (
	ResolvedLight Resolved = "light"
	ResolvedDark  Resolved = "dark"
)

// IsDark reports whether the resolved mode is dark.
func (r Resolved) IsDark() bool {
	return r == ResolvedDark
}

func (r Resolved) String() string {
	return string(r)
}

// ResolvePreference maps a preference and the current OS signal to a
// concrete mode. Invalid preferences are treated as system.
func ResolvePreference(p Preference, systemDark bool) Resolved {
	switch p {
	case PreferenceLight:
		return ResolvedLight
	case PreferenceDark:
		return ResolvedDark
	default:
		if systemDark {
			return ResolvedDark
		}
		return ResolvedLight
	}
}

// State is the snapshot published to subscribers.
type State struct {
	Preference Preference
	Resolved   Resolved
}
