package media

import (
	"crypto/rand"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Player is a handle that renders as an HTML5 <video> element.
type Player struct {
	id        ulid.ULID
	container string
	source    string
	poster    string
	cfg       Config
	destroyed bool
}

// ID returns the unique player ID.
func (p *Player) ID() string {
	return p.id.String()
}

// Container returns the container the player is mounted in.
func (p *Player) Container() string {
	return p.container
}

var playerTmpl = template.Must(template.New("player").Parse(
	`<video id="{{.ID}}" class="player" data-container="{{.Container}}"` +
		`{{if .Poster}} poster="{{.Poster}}"{{end}}` +
		`{{range .Flags}} {{.}}{{end}}` +
		`{{if .Preload}} preload="{{.Preload}}"{{end}} playsinline>` +
		`<source src="{{.Source}}" type="{{.Type}}"></video>`))

// HTML renders the player markup.
func (p *Player) HTML() (template.HTML, error) {
	var flags []template.HTMLAttr
	if p.cfg.Controls {
		flags = append(flags, "controls")
	}
	if p.cfg.Autoplay {
		flags = append(flags, "autoplay")
	}
	// Browsers only autoplay muted video.
	if p.cfg.Muted || p.cfg.Autoplay {
		flags = append(flags, "muted")
	}
	if p.cfg.Loop {
		flags = append(flags, "loop")
	}

	var b strings.Builder
	err := playerTmpl.Execute(&b, map[string]any{
		"ID":        p.ID(),
		"Container": p.container,
		"Poster":    p.poster,
		"Flags":     flags,
		"Preload":   p.cfg.Preload,
		"Source":    p.source,
		"Type":      mimeType(p.source),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func mimeType(source string) string {
	s := strings.ToLower(source)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".m3u8"):
		return "application/vnd.apple.mpegurl"
	default:
		return "video/mp4"
	}
}

// HTMLFactory creates Players and enforces one live player per container.
type HTMLFactory struct {
	mu   sync.Mutex
	live map[string]*Player
	now  func() time.Time
}

// NewHTMLFactory creates a new HTMLFactory.
func NewHTMLFactory() *HTMLFactory {
	return &HTMLFactory{
		live: make(map[string]*Player),
		now:  time.Now,
	}
}

// Construct implements Factory.
func (f *HTMLFactory) Construct(container, source, poster string, cfg Config) (Handle, error) {
	if source == "" {
		return nil, ErrNoSource
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.live[container]; busy {
		return nil, fmt.Errorf("%w: %s", ErrContainerBusy, container)
	}

	id, err := ulid.New(ulid.Timestamp(f.now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}

	p := &Player{
		id:        id,
		container: container,
		source:    source,
		poster:    poster,
		cfg:       cfg,
	}
	f.live[container] = p
	return p, nil
}

// Destroy implements Factory.
func (f *HTMLFactory) Destroy(h Handle) error {
	p, ok := h.(*Player)
	if !ok {
		return ErrUnknownHandle
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if p.destroyed {
		return ErrDestroyed
	}
	if f.live[p.container] != p {
		return ErrUnknownHandle
	}

	p.destroyed = true
	delete(f.live, p.container)
	return nil
}

// LiveCount returns the number of live players.
func (f *HTMLFactory) LiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}
