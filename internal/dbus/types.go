package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Portal addressing.
const (
	PortalDest          = "org.freedesktop.portal.Desktop"
	PortalPath          = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	SettingsInterface   = "org.freedesktop.portal.Settings"
	SettingChanged      = "SettingChanged"
	AppearanceNamespace = "org.freedesktop.appearance"
	ColorSchemeKey      = "color-scheme"
)

// ColorScheme is the portal's color-scheme value.
// These values are defined by the xdg-desktop-portal Settings interface.
type ColorScheme uint32

const (
	// ColorSchemeNoPreference means the desktop expresses no preference.
	ColorSchemeNoPreference ColorScheme = 0
	// ColorSchemePreferDark means the desktop prefers dark appearance.
	ColorSchemePreferDark ColorScheme = 1
	// ColorSchemePreferLight means the desktop prefers light appearance.
	ColorSchemePreferLight ColorScheme = 2
)

// String returns the string representation of the color scheme.
func (c ColorScheme) String() string {
	switch c {
	case ColorSchemeNoPreference:
		return "no-preference"
	case ColorSchemePreferDark:
		return "prefer-dark"
	case ColorSchemePreferLight:
		return "prefer-light"
	default:
		return "unknown"
	}
}

// PrefersDark reports whether the scheme asks for dark rendering.
// No preference renders light.
func (c ColorScheme) PrefersDark() bool {
	return c == ColorSchemePreferDark
}

// ParseColorScheme decodes a portal value. The older Read method wraps the
// value in an extra variant, so nested variants are unwrapped first.
func ParseColorScheme(value any) (ColorScheme, error) {
	for {
		v, ok := value.(dbus.Variant)
		if !ok {
			break
		}
		value = v.Value()
	}

	var n uint64
	switch v := value.(type) {
	case uint32:
		n = uint64(v)
	case int32:
		if v < 0 {
			return 0, fmt.Errorf("invalid color-scheme value %d", v)
		}
		n = uint64(v)
	case uint8:
		n = uint64(v)
	case uint64:
		n = v
	default:
		return 0, fmt.Errorf("unexpected color-scheme type %T", value)
	}

	if n > uint64(ColorSchemePreferLight) {
		// Unknown future values are treated as no preference.
		return ColorSchemeNoPreference, nil
	}
	return ColorScheme(n), nil
}

// parseSettingChanged extracts the color scheme from a SettingChanged
// signal. ok is false for signals about other settings.
func parseSettingChanged(sig *dbus.Signal) (ColorScheme, bool) {
	if sig == nil || sig.Name != SettingsInterface+"."+SettingChanged {
		return 0, false
	}
	// SettingChanged(namespace s, key s, value v)
	if len(sig.Body) < 3 {
		return 0, false
	}
	namespace, ok := sig.Body[0].(string)
	if !ok || namespace != AppearanceNamespace {
		return 0, false
	}
	key, ok := sig.Body[1].(string)
	if !ok || key != ColorSchemeKey {
		return 0, false
	}

	scheme, err := ParseColorScheme(sig.Body[2])
	if err != nil {
		return 0, false
	}
	return scheme, true
}
