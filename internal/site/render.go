package site

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/normal-ex/letrecovery-web/internal/content"
	"github.com/normal-ex/letrecovery-web/internal/theme"
)

// Page template names.
const (
	pageHome     = "home.html"
	pageGroups   = "qqg.html"
	pageLicense  = "license.html"
	pageNotFound = "notfound.html"
)

var pageNames = []string{pageHome, pageGroups, pageLicense, pageNotFound}

// parsePages parses every page against a shared layout.
func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.ParseFS(fsys, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.ParseFS(fsys, "templates/"+name); err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

type navLink struct {
	Path   string
	Label  string
	Active bool
}

type themeOption struct {
	Value    theme.Preference
	Label    string
	Selected bool
}

type themeView struct {
	Preference theme.Preference
	Resolved   theme.Resolved
	Class      string
	Options    []themeOption
}

type downloadView struct {
	content.Download
	SizeText     string
	ReleasedDate string
	ReleasedAgo  string
}

// pageData is handed to every page template.
type pageData struct {
	Title string
	Path  string
	Nav   []navLink
	Theme themeView
	Site  *content.Site
	Year  int

	Player    template.HTML
	Downloads []downloadView
	Primary   *downloadView
	License   template.HTML
}

var themeLabels = map[theme.Preference]string{
	theme.PreferenceLight:  "浅色",
	theme.PreferenceDark:   "深色",
	theme.PreferenceSystem: "跟随系统",
}

func (s *Server) newPageData(title, path string, state theme.State, marker *theme.ClassMarker) *pageData {
	nav := []navLink{
		{Path: PathHome, Label: "首页"},
		{Path: PathGroups, Label: "交流群"},
		{Path: PathLicense, Label: "许可证"},
	}
	for i := range nav {
		nav[i].Active = nav[i].Path == path
	}

	options := make([]themeOption, 0, 3)
	for _, p := range theme.ValidPreferences() {
		options = append(options, themeOption{
			Value:    p,
			Label:    themeLabels[p],
			Selected: p == state.Preference,
		})
	}

	return &pageData{
		Title: title,
		Path:  path,
		Nav:   nav,
		Theme: themeView{
			Preference: state.Preference,
			Resolved:   state.Resolved,
			Class:      marker.Class(),
			Options:    options,
		},
		Site: s.site,
		Year: s.now().Year(),
	}
}

func (s *Server) downloadViews() []downloadView {
	views := make([]downloadView, 0, len(s.site.Downloads))
	for _, d := range s.site.Downloads {
		views = append(views, s.downloadView(d))
	}
	return views
}

// primaryDownload is the download behind the hero button, nil if none.
func (s *Server) primaryDownload() *downloadView {
	d := s.site.PrimaryDownload()
	if d == nil {
		return nil
	}
	v := s.downloadView(*d)
	return &v
}

func (s *Server) downloadView(d content.Download) downloadView {
	v := downloadView{Download: d}
	if d.Size > 0 {
		v.SizeText = humanize.Bytes(d.Size)
	}
	if !d.Released.IsZero() {
		v.ReleasedDate = d.Released.Format(time.DateOnly)
		v.ReleasedAgo = humanize.RelTime(d.Released, s.now(), "ago", "from now")
	}
	return v
}

// render executes a page into a buffer so template errors become a 500
// instead of a truncated page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown page template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", "page", page, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
