package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/normal-ex/letrecovery-web/internal/theme"
)

// ClientHintHeader carries the browser's color-scheme preference.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// cookieMaxAge keeps the preference for a year.
const cookieMaxAge = 365 * 24 * 60 * 60

// CookieStore persists the preference in the visitor's "theme" cookie.
// It implements theme.PreferenceStore for a single request.
type CookieStore struct {
	w http.ResponseWriter
	r *http.Request
}

// NewCookieStore creates a CookieStore for one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r}
}

// Load implements theme.PreferenceStore.
func (c *CookieStore) Load() (theme.Preference, error) {
	cookie, err := c.r.Cookie(theme.StorageKey)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	return theme.Preference(cookie.Value), nil
}

// Save implements theme.PreferenceStore. The cookie is readable from
// script so the page can follow the OS scheme live.
func (c *CookieStore) Save(p theme.Preference) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     theme.StorageKey,
		Value:    string(p),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.r.TLS != nil,
		HttpOnly: false,
	})
	return nil
}

// ClientHintSource reports the scheme the browser sent with the request.
// Browsers without client hints report light; the page script corrects
// that on load.
func ClientHintSource(r *http.Request) theme.StaticSource {
	v := strings.Trim(strings.TrimSpace(r.Header.Get(ClientHintHeader)), `"`)
	return theme.StaticSource(strings.EqualFold(v, "dark"))
}

// setThemeHeaders asks the browser for the color-scheme hint and marks the
// response as varying on it.
func setThemeHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Accept-CH", ClientHintHeader)
	h.Set("Critical-CH", ClientHintHeader)
	h.Add("Vary", ClientHintHeader)
	h.Add("Vary", "Cookie")
}

// resolverFor builds a request-scoped resolver. The caller must Close it.
func (s *Server) resolverFor(w http.ResponseWriter, r *http.Request) (*theme.Resolver, *theme.ClassMarker) {
	marker := &theme.ClassMarker{}
	resolver := theme.New(
		NewCookieStore(w, r),
		ClientHintSource(r),
		theme.WithMarker(marker),
		theme.WithLogger(s.logger),
	)
	return resolver, marker
}
