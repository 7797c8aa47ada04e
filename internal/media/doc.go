// Package media manages the lifecycle of the embedded video player.
// A Host constructs exactly one player handle per mount and destroys it
// exactly once per unmount; handles are never reused.
package media
