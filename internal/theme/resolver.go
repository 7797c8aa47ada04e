package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by SetPreference after Close.
var ErrClosed = errors.New("theme resolver is closed")

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMarker sets the marker that receives the dark-mode flag.
func WithMarker(m Marker) Option {
	return func(r *Resolver) {
		if m != nil {
			r.marker = m
		}
	}
}

// Resolver owns the theme preference and the resolved theme.
//
// The OS color-scheme subscription exists only while the preference is
// system: it is acquired on the transition into system and released on the
// transition out of it or on Close. With an explicit preference the
// resolver never hears about OS changes.
type Resolver struct {
	mu     sync.Mutex
	logger *slog.Logger
	store  PreferenceStore
	source SchemeSource
	marker Marker

	pref     Preference
	resolved Resolved
	// published is the last state handed to listeners.
	published State

	// stopWatch is non-nil while the OS subscription is live.
	stopWatch func()
	// watchGen invalidates notifications from a released subscription
	// that were already in flight.
	watchGen uint64

	listeners map[uint64]func(State)
	nextID    uint64
	closed    bool
}

// New creates a Resolver, reading the persisted preference once.
// A nil store keeps the preference in memory; a nil source reports light.
func New(store PreferenceStore, source SchemeSource, opts ...Option) *Resolver {
	if store == nil {
		store = NewMemoryStore("")
	}
	if source == nil {
		source = StaticSource(false)
	}

	r := &Resolver{
		logger:    slog.Default(),
		store:     store,
		source:    source,
		marker:    nopMarker{},
		listeners: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mu.Lock()
	r.pref = r.loadPreference()
	r.syncWatchLocked()
	r.resolveLocked()
	r.mu.Unlock()

	r.logger.Debug("theme resolver initialized",
		"preference", r.pref,
		"resolved", r.resolved)

	return r
}

// loadPreference reads the store, falling back to the default on any
// error or unknown value.
func (r *Resolver) loadPreference() Preference {
	p, err := r.store.Load()
	if err != nil {
		r.logger.Warn("failed to load theme preference, using default",
			"default", DefaultPreference, "error", err)
		return DefaultPreference
	}
	return r.normalize(p)
}

// normalize maps absent and invalid stored values to the default.
func (r *Resolver) normalize(p Preference) Preference {
	if p == "" {
		return DefaultPreference
	}
	if !p.Valid() {
		r.logger.Warn("ignoring invalid stored theme preference",
			"value", string(p), "default", DefaultPreference)
		return DefaultPreference
	}
	return p
}

// Preference returns the current preference.
func (r *Resolver) Preference() Preference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pref
}

// Resolved returns the last resolved theme without re-evaluating.
func (r *Resolver) Resolved() Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// State returns the current preference and resolved theme.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{Preference: r.pref, Resolved: r.resolved}
}

// Watching reports whether an OS color-scheme subscription is live.
func (r *Resolver) Watching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopWatch != nil
}

// SetPreference overwrites the preference in memory and in the store,
// then re-resolves. A failed save is logged and the in-memory value is kept.
func (r *Resolver) SetPreference(p Preference) error {
	if !p.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidPreference, string(p))
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}

	r.pref = p
	if err := r.store.Save(p); err != nil {
		r.logger.Warn("failed to persist theme preference, keeping in-memory value",
			"preference", p, "error", err)
	}

	stop := r.syncWatchLocked()
	state, changed := r.resolveLocked()
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	notify(listeners, state)

	r.logger.Debug("theme preference set", "preference", state.Preference, "resolved", state.Resolved)
	return nil
}

// Resolve re-evaluates the resolved theme and re-applies the marker.
// With no intervening change it returns the same value every time.
func (r *Resolver) Resolve() Resolved {
	r.mu.Lock()
	state, changed := r.resolveLocked()
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	notify(listeners, state)
	return state.Resolved
}

// Reload re-reads the store, picking up a preference written by another
// process. It does not write back. A read error keeps the current value.
func (r *Resolver) Reload() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	stored, err := r.store.Load()
	if err != nil {
		r.logger.Warn("failed to reload theme preference, keeping current value",
			"preference", r.pref, "error", err)
		r.mu.Unlock()
		return
	}
	p := r.normalize(stored)
	if p == r.pref {
		r.mu.Unlock()
		return
	}
	r.pref = p

	stop := r.syncWatchLocked()
	state, changed := r.resolveLocked()
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	notify(listeners, state)

	r.logger.Info("theme preference reloaded", "preference", state.Preference, "resolved", state.Resolved)
}

// Subscribe registers fn to receive the state whenever it changes.
// The returned function unsubscribes and is safe to call more than once.
func (r *Resolver) Subscribe(fn func(State)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	if !r.closed {
		r.listeners[id] = fn
	}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Close releases the OS subscription and drops all subscribers.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stop := r.stopWatch
	r.stopWatch = nil
	r.watchGen++
	r.listeners = make(map[uint64]func(State))
	r.mu.Unlock()

	if stop != nil {
		stop()
		r.logger.Debug("released color-scheme subscription")
	}
	return nil
}

// syncWatchLocked acquires the OS subscription when the preference is
// system and none is live. When the preference is explicit it detaches the
// live subscription and returns its stop function, which the caller must
// invoke after releasing r.mu.
func (r *Resolver) syncWatchLocked() func() {
	if r.pref == PreferenceSystem {
		if r.stopWatch == nil && !r.closed {
			r.watchGen++
			gen := r.watchGen
			// Values delivered from inside Watch are dropped: r.mu is held
			// and the caller resolves against the source right after.
			var ready atomic.Bool
			stop, err := r.source.Watch(func(dark bool) {
				if !ready.Load() {
					return
				}
				r.onSchemeChange(gen, dark)
			})
			ready.Store(true)
			if err != nil {
				r.logger.Warn("failed to watch OS color scheme, live updates disabled", "error", err)
				return nil
			}
			r.stopWatch = stop
			r.logger.Debug("acquired color-scheme subscription")
		}
		return nil
	}

	if r.stopWatch == nil {
		return nil
	}
	stop := r.stopWatch
	r.stopWatch = nil
	r.watchGen++
	r.logger.Debug("released color-scheme subscription", "preference", r.pref)
	return stop
}

// onSchemeChange handles an OS notification synchronously.
func (r *Resolver) onSchemeChange(gen uint64, dark bool) {
	r.mu.Lock()
	if r.closed || gen != r.watchGen || r.pref != PreferenceSystem {
		r.mu.Unlock()
		return
	}
	state, changed := r.applyLocked(ResolvePreference(r.pref, dark))
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	notify(listeners, state)

	if changed {
		r.logger.Debug("OS color scheme changed", "resolved", state.Resolved)
	}
}

// resolveLocked evaluates the OS signal only when the preference is system.
func (r *Resolver) resolveLocked() (State, bool) {
	systemDark := false
	if r.pref == PreferenceSystem {
		dark, err := r.source.PrefersDark()
		if err != nil {
			r.logger.Warn("failed to read OS color scheme, assuming light", "error", err)
		}
		systemDark = dark && err == nil
	}
	return r.applyLocked(ResolvePreference(r.pref, systemDark))
}

func (r *Resolver) applyLocked(resolved Resolved) (State, bool) {
	r.resolved = resolved
	r.marker.SetDark(resolved.IsDark())

	state := State{Preference: r.pref, Resolved: resolved}
	changed := state != r.published
	r.published = state
	return state, changed
}

func (r *Resolver) listenersLocked(changed bool) []func(State) {
	if !changed || len(r.listeners) == 0 {
		return nil
	}
	fns := make([]func(State), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
