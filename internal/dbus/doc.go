// Package dbus reads the desktop color-scheme preference from the
// freedesktop settings portal (org.freedesktop.portal.Settings) and
// delivers SettingChanged signals for the org.freedesktop.appearance
// color-scheme key.
package dbus
