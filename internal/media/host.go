package media

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Errors
var (
	ErrContainerBusy = errors.New("container already has a live player")
	ErrDestroyed     = errors.New("player already destroyed")
	ErrUnknownHandle = errors.New("handle was not created by this factory")
	ErrNoSource      = errors.New("video source is required")
)

// Config holds player options.
type Config struct {
	Autoplay bool
	Muted    bool
	Loop     bool
	Controls bool
	Preload  string
}

// Handle is an opaque live player.
type Handle interface {
	ID() string
}

// Factory constructs and destroys players.
type Factory interface {
	Construct(container, source, poster string, cfg Config) (Handle, error)
	Destroy(h Handle) error
}

// Host binds a Factory to one view's container.
type Host struct {
	mu      sync.Mutex
	factory Factory
	logger  *slog.Logger

	container string
	source    string
	poster    string
	cfg       Config

	live Handle
}

// NewHost creates a Host for container.
func NewHost(factory Factory, container, source, poster string, cfg Config, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		factory:   factory,
		logger:    logger,
		container: container,
		source:    source,
		poster:    poster,
		cfg:       cfg,
	}
}

// Mount constructs the player. While a player is live, Mount is a no-op
// returning the live handle.
func (h *Host) Mount() (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.live != nil {
		return h.live, nil
	}

	handle, err := h.factory.Construct(h.container, h.source, h.poster, h.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to construct player for %s: %w", h.container, err)
	}
	h.live = handle

	h.logger.Debug("mounted player", "container", h.container, "handle", handle.ID())
	return handle, nil
}

// Unmount destroys the live player. Without a live player it does nothing.
func (h *Host) Unmount() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.live == nil {
		return nil
	}

	handle := h.live
	h.live = nil
	if err := h.factory.Destroy(handle); err != nil {
		return fmt.Errorf("failed to destroy player %s: %w", handle.ID(), err)
	}

	h.logger.Debug("unmounted player", "container", h.container, "handle", handle.ID())
	return nil
}

// Live returns the live handle, or nil.
func (h *Host) Live() Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}
