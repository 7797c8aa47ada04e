package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFactory records every Construct and Destroy call.
type countingFactory struct {
	inner      *HTMLFactory
	constructs int
	destroys   []string
	failNext   bool
}

func (f *countingFactory) Construct(container, source, poster string, cfg Config) (Handle, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New("network unreachable")
	}
	f.constructs++
	return f.inner.Construct(container, source, poster, cfg)
}

func (f *countingFactory) Destroy(h Handle) error {
	f.destroys = append(f.destroys, h.ID())
	return f.inner.Destroy(h)
}

func newTestHost(f Factory) *Host {
	return NewHost(f, "home-video", "https://cdn.example.com/intro.mp4", "/static/poster.svg",
		Config{Controls: true, Preload: "metadata"}, nil)
}

func TestHost_MountConstructsOnce(t *testing.T) {
	f := &countingFactory{inner: NewHTMLFactory()}
	h := newTestHost(f)

	first, err := h.Mount()
	require.NoError(t, err)
	second, err := h.Mount()
	require.NoError(t, err)

	assert.Equal(t, 1, f.constructs)
	assert.Same(t, first, second)
	assert.Equal(t, 1, f.inner.LiveCount())
}

func TestHost_UnmountDestroysOnce(t *testing.T) {
	f := &countingFactory{inner: NewHTMLFactory()}
	h := newTestHost(f)

	handle, err := h.Mount()
	require.NoError(t, err)

	require.NoError(t, h.Unmount())
	require.NoError(t, h.Unmount())

	assert.Equal(t, []string{handle.ID()}, f.destroys)
	assert.Nil(t, h.Live())
	assert.Equal(t, 0, f.inner.LiveCount())
}

func TestHost_RemountProducesFreshHandle(t *testing.T) {
	f := &countingFactory{inner: NewHTMLFactory()}
	h := newTestHost(f)

	first, err := h.Mount()
	require.NoError(t, err)
	require.NoError(t, h.Unmount())

	second, err := h.Mount()
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, f.constructs)

	// The destroyed handle stays destroyed.
	assert.ErrorIs(t, f.inner.Destroy(first), ErrDestroyed)
	require.NoError(t, h.Unmount())
}

func TestHost_UnmountWithoutMount(t *testing.T) {
	f := &countingFactory{inner: NewHTMLFactory()}
	h := newTestHost(f)

	require.NoError(t, h.Unmount())
	assert.Empty(t, f.destroys)
}

func TestHost_ConstructFailure(t *testing.T) {
	f := &countingFactory{inner: NewHTMLFactory(), failNext: true}
	h := newTestHost(f)

	_, err := h.Mount()
	require.Error(t, err)
	assert.Nil(t, h.Live())

	// A later mount succeeds.
	_, err = h.Mount()
	require.NoError(t, err)
	require.NoError(t, h.Unmount())
}

func TestHTMLFactory_NoOverlappingHandles(t *testing.T) {
	f := NewHTMLFactory()

	_, err := f.Construct("c", "https://example.com/a.mp4", "", Config{})
	require.NoError(t, err)

	_, err = f.Construct("c", "https://example.com/a.mp4", "", Config{})
	assert.ErrorIs(t, err, ErrContainerBusy)

	_, err = f.Construct("other", "https://example.com/a.mp4", "", Config{})
	assert.NoError(t, err)
	assert.Equal(t, 2, f.LiveCount())
}

func TestHTMLFactory_Errors(t *testing.T) {
	f := NewHTMLFactory()

	_, err := f.Construct("c", "", "", Config{})
	assert.ErrorIs(t, err, ErrNoSource)

	other := NewHTMLFactory()
	h, err := other.Construct("c", "https://example.com/a.mp4", "", Config{})
	require.NoError(t, err)
	assert.ErrorIs(t, f.Destroy(h), ErrUnknownHandle)
}

func TestPlayer_HTML(t *testing.T) {
	f := NewHTMLFactory()
	h, err := f.Construct("home-video", "https://cdn.example.com/intro.webm?v=2", "/static/poster.svg",
		Config{Controls: true, Autoplay: true, Loop: true, Preload: "metadata"})
	require.NoError(t, err)

	html, err := h.(*Player).HTML()
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, `id="`+h.ID()+`"`)
	assert.Contains(t, s, `data-container="home-video"`)
	assert.Contains(t, s, `poster="/static/poster.svg"`)
	assert.Contains(t, s, " controls")
	assert.Contains(t, s, " autoplay")
	assert.Contains(t, s, " muted")
	assert.Contains(t, s, " loop")
	assert.Contains(t, s, `preload="metadata"`)
	assert.Contains(t, s, `type="video/webm"`)
	assert.Contains(t, s, `src="https://cdn.example.com/intro.webm?v=2"`)
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"a.mp4", "video/mp4"},
		{"A.WEBM", "video/webm"},
		{"live/index.m3u8#t=1", "application/vnd.apple.mpegurl"},
		{"noext", "video/mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, mimeType(tt.source))
		})
	}
}
