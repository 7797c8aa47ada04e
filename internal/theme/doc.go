// Package theme resolves the light/dark presentation mode for the site.
// It owns the user's theme preference, persists it through a
// PreferenceStore and follows the OS color-scheme signal while the
// preference is "system".
package theme
