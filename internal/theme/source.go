package theme

import "sync"

// SchemeSource reports the OS color-scheme signal.
type SchemeSource interface {
	// PrefersDark returns whether the OS currently asks for dark rendering.
	PrefersDark() (bool, error)

	// Watch registers fn for color-scheme change notifications.
	// fn may be called from any goroutine, including from within Watch.
	// The returned stop function releases the subscription and is safe to
	// call more than once.
	Watch(fn func(dark bool)) (stop func(), err error)
}

// StaticSource is a signal that never changes.
type StaticSource bool

// PrefersDark implements SchemeSource.
func (s StaticSource) PrefersDark() (bool, error) {
	return bool(s), nil
}

// Watch implements SchemeSource. A static signal never fires.
func (s StaticSource) Watch(fn func(dark bool)) (func(), error) {
	return func() {}, nil
}

// ManualSource is a signal flipped programmatically.
// It is used by tests.
type ManualSource struct {
	mu       sync.Mutex
	dark     bool
	nextID   int
	watchers map[int]func(bool)
}

// NewManualSource creates a ManualSource with an initial value.
func NewManualSource(dark bool) *ManualSource {
	return &ManualSource{
		dark:     dark,
		watchers: make(map[int]func(bool)),
	}
}

// PrefersDark implements SchemeSource.
func (m *ManualSource) PrefersDark() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dark, nil
}

// Watch implements SchemeSource.
func (m *ManualSource) Watch(fn func(dark bool)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		})
	}, nil
}

// Set changes the signal and notifies watchers when the value differs.
// Watchers run on the caller's goroutine.
func (m *ManualSource) Set(dark bool) {
	m.mu.Lock()
	if m.dark == dark {
		m.mu.Unlock()
		return
	}
	m.dark = dark
	fns := make([]func(bool), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// Watchers returns the number of live subscriptions.
func (m *ManualSource) Watchers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}
