// Package site serves the LetRecovery website: the home page with the
// download dialog and intro video, the community page and the license page.
// Each request resolves its theme from the "theme" cookie and the
// Sec-CH-Prefers-Color-Scheme client hint.
package site
