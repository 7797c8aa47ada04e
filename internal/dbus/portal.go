package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// ErrNotConnected is returned when the source has no bus connection.
var ErrNotConnected = errors.New("not connected to D-Bus")

// PortalSource reports the desktop color scheme through the settings portal.
// It implements theme.SchemeSource.
type PortalSource struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewPortalSource creates a new portal source. Call Connect before use.
func NewPortalSource(logger *slog.Logger) *PortalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalSource{
		logger: logger,
	}
}

// Connect opens a private session bus connection.
func (p *PortalSource) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	p.conn = conn

	p.logger.Debug("connected to settings portal", "dest", PortalDest)
	return nil
}

func (p *PortalSource) connection() (*dbus.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil, ErrNotConnected
	}
	return p.conn, nil
}

// ColorScheme reads the current color-scheme setting.
// ReadOne is tried first; portals older than version 2 only offer Read.
func (p *PortalSource) ColorScheme() (ColorScheme, error) {
	conn, err := p.connection()
	if err != nil {
		return 0, err
	}

	obj := conn.Object(PortalDest, PortalPath)

	var value dbus.Variant
	err = obj.Call(SettingsInterface+".ReadOne", 0, AppearanceNamespace, ColorSchemeKey).Store(&value)
	if err != nil {
		p.logger.Debug("ReadOne not available, falling back to Read", "error", err)
		if err := obj.Call(SettingsInterface+".Read", 0, AppearanceNamespace, ColorSchemeKey).Store(&value); err != nil {
			return 0, fmt.Errorf("failed to read %s %s: %w", AppearanceNamespace, ColorSchemeKey, err)
		}
	}

	return ParseColorScheme(value)
}

// PrefersDark implements theme.SchemeSource.
func (p *PortalSource) PrefersDark() (bool, error) {
	scheme, err := p.ColorScheme()
	if err != nil {
		return false, err
	}
	return scheme.PrefersDark(), nil
}

// Watch implements theme.SchemeSource. fn runs on the signal goroutine.
func (p *PortalSource) Watch(fn func(dark bool)) (func(), error) {
	conn, err := p.connection()
	if err != nil {
		return nil, err
	}

	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(PortalPath),
		dbus.WithMatchInterface(SettingsInterface),
		dbus.WithMatchMember(SettingChanged),
		dbus.WithMatchArg(0, AppearanceNamespace),
	}
	if err := conn.AddMatchSignal(opts...); err != nil {
		return nil, fmt.Errorf("failed to add SettingChanged match: %w", err)
	}

	ch := make(chan *dbus.Signal, 10)
	conn.Signal(ch)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig, ok := <-ch:
				if !ok {
					return
				}
				scheme, ok := parseSettingChanged(sig)
				if !ok {
					continue
				}
				p.logger.Debug("color scheme changed", "scheme", scheme.String())
				fn(scheme.PrefersDark())
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			conn.RemoveSignal(ch)
			if err := conn.RemoveMatchSignal(opts...); err != nil {
				p.logger.Debug("failed to remove SettingChanged match", "error", err)
			}
		})
	}

	p.logger.Debug("watching color scheme", "namespace", AppearanceNamespace, "key", ColorSchemeKey)
	return stop, nil
}

// Close closes the bus connection.
func (p *PortalSource) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
