package site

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/normal-ex/letrecovery-web/internal/media"
	"github.com/normal-ex/letrecovery-web/internal/theme"
)

// videoContainer is the DOM id hosting the intro player.
const videoContainer = "home-video"

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	resolver, marker := s.resolverFor(w, r)
	defer resolver.Close()
	setThemeHeaders(w)

	data := s.newPageData(s.site.Product.Name, PathHome, resolver.State(), marker)
	data.Downloads = s.downloadViews()
	data.Primary = s.primaryDownload()

	if s.site.Video.Source != "" {
		host := s.videoHost()
		player, err := s.mountPlayer(host)
		if err != nil {
			// The page renders without the video.
			s.logger.Warn("failed to mount intro video", "error", err)
		}
		defer func() {
			if err := host.Unmount(); err != nil {
				s.logger.Warn("failed to unmount intro video", "error", err)
			}
		}()
		data.Player = player
	}

	s.render(w, r, http.StatusOK, pageHome, data)
}

func (s *Server) videoHost() *media.Host {
	v := s.site.Video
	return media.NewHost(media.NewHTMLFactory(), videoContainer, v.Source, v.Poster, media.Config{
		Autoplay: v.Autoplay,
		Muted:    v.Muted,
		Loop:     v.Loop,
		Controls: v.Controls,
		Preload:  v.Preload,
	}, s.logger)
}

func (s *Server) mountPlayer(host *media.Host) (template.HTML, error) {
	handle, err := host.Mount()
	if err != nil {
		return "", err
	}
	player, ok := handle.(*media.Player)
	if !ok {
		return "", media.ErrUnknownHandle
	}
	return player.HTML()
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	resolver, marker := s.resolverFor(w, r)
	defer resolver.Close()
	setThemeHeaders(w)

	data := s.newPageData("交流群", PathGroups, resolver.State(), marker)
	s.render(w, r, http.StatusOK, pageGroups, data)
}

func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	resolver, marker := s.resolverFor(w, r)
	defer resolver.Close()
	setThemeHeaders(w)

	data := s.newPageData("许可证", PathLicense, resolver.State(), marker)
	data.License = s.license
	s.render(w, r, http.StatusOK, pageLicense, data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	resolver, marker := s.resolverFor(w, r)
	defer resolver.Close()
	setThemeHeaders(w)

	data := s.newPageData("页面不存在", r.URL.Path, resolver.State(), marker)
	s.render(w, r, http.StatusNotFound, pageNotFound, data)
}

// handleSetTheme is the header theme switcher: it stores the chosen
// preference in the cookie and sends the visitor back.
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pref, err := theme.ParsePreference(r.PostForm.Get("theme"))
	if err != nil {
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	resolver, _ := s.resolverFor(w, r)
	defer resolver.Close()

	if err := resolver.SetPreference(pref); err != nil {
		s.logger.Error("failed to set theme preference", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.logger.Debug("theme preference changed",
		"preference", pref,
		"resolved", resolver.Resolved())

	http.Redirect(w, r, safeReturnPath(r.PostForm.Get("return")), http.StatusSeeOther)
}

// safeReturnPath accepts only local absolute paths so the switcher cannot
// be used as an open redirect. Both the raw and the decoded path are
// checked, and the escaped form is returned.
func safeReturnPath(raw string) string {
	if !isLocalPath(raw) {
		return PathHome
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || u.Opaque != "" {
		return PathHome
	}
	if !isLocalPath(u.Path) {
		return PathHome
	}
	if u.RawQuery != "" {
		return u.EscapedPath() + "?" + u.RawQuery
	}
	return u.EscapedPath()
}

// isLocalPath reports whether p is rooted at this site. "//host" and any
// backslash are rejected since browsers read both as another origin.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.stylesheet)
}
