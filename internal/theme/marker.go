package theme

import "sync"

// DarkClass is the root class consumed by the stylesheet.
const DarkClass = "dark"

// Marker receives the global dark-mode marker.
type Marker interface {
	SetDark(dark bool)
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(dark bool)

// SetDark implements Marker.
func (f MarkerFunc) SetDark(dark bool) {
	f(dark)
}

// ClassMarker tracks the class list rendered onto the root <html> element.
type ClassMarker struct {
	mu   sync.RWMutex
	dark bool
}

// SetDark implements Marker.
func (m *ClassMarker) SetDark(dark bool) {
	m.mu.Lock()
	m.dark = dark
	m.mu.Unlock()
}

// Dark reports whether the marker is set.
func (m *ClassMarker) Dark() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dark
}

// Class returns the root class list: "dark" or "".
func (m *ClassMarker) Class() string {
	if m.Dark() {
		return DarkClass
	}
	return ""
}

type nopMarker struct{}

func (nopMarker) SetDark(bool) {}
