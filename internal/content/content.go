// Package content holds the static site content: product copy, downloads,
// community groups, the intro video and the license text.
package content

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml LICENSE.md
var embedded embed.FS

// Site is the complete site content.
type Site struct {
	Product   Product    `yaml:"product"`
	Features  []Feature  `yaml:"features"`
	Downloads []Download `yaml:"downloads"`
	Groups    []Group    `yaml:"groups"`
	Video     Video      `yaml:"video"`
}

// Product describes the advertised tool.
type Product struct {
	Name        string   `yaml:"name"`
	Tagline     string   `yaml:"tagline"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Repository  string   `yaml:"repository"`
	Copyright   []string `yaml:"copyright"`
}

// Feature is one entry in the home page feature grid.
type Feature struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Download is one entry in the download dialog.
type Download struct {
	Name     string    `yaml:"name"`
	URL      string    `yaml:"url"`
	Size     uint64    `yaml:"size"`     // Bytes, 0 = unknown
	Released time.Time `yaml:"released"` // Zero = unknown
	Primary  bool      `yaml:"primary"`
}

// Group is a community chat group shown on the QQ group page.
type Group struct {
	Name   string `yaml:"name"`
	Number string `yaml:"number"`
	QRCode string `yaml:"qrcode"` // Image URL
	Full   bool   `yaml:"full"`
}

// Video configures the embedded intro player.
type Video struct {
	Source   string `yaml:"source"`
	Poster   string `yaml:"poster"`
	Autoplay bool   `yaml:"autoplay"`
	Muted    bool   `yaml:"muted"`
	Loop     bool   `yaml:"loop"`
	Controls bool   `yaml:"controls"`
	Preload  string `yaml:"preload"` // "none", "metadata" or "auto"
}

// Load returns the embedded site content.
func Load() (*Site, error) {
	data, err := embedded.ReadFile("site.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded content: %w", err)
	}
	return Parse(data)
}

// LoadFile reads site content from path.
func LoadFile(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates site content.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}
	return &site, nil
}

// Validate checks required fields and reports every problem found.
func (s *Site) Validate() error {
	var errs []error

	if strings.TrimSpace(s.Product.Name) == "" {
		errs = append(errs, errors.New("product.name is required"))
	}

	if len(s.Downloads) == 0 {
		errs = append(errs, errors.New("at least one download is required"))
	}
	for i, d := range s.Downloads {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("downloads[%d].name is required", i))
		}
		if !isHTTPURL(d.URL) {
			errs = append(errs, fmt.Errorf("downloads[%d].url %q must be an http(s) URL", i, d.URL))
		}
	}

	for i, g := range s.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("groups[%d].name is required", i))
		}
		if g.Number == "" {
			errs = append(errs, fmt.Errorf("groups[%d].number is required", i))
		}
	}

	if s.Video.Source != "" && !isHTTPURL(s.Video.Source) && !strings.HasPrefix(s.Video.Source, "/") {
		errs = append(errs, fmt.Errorf("video.source %q must be an http(s) URL or absolute path", s.Video.Source))
	}
	switch s.Video.Preload {
	case "", "none", "metadata", "auto":
	default:
		errs = append(errs, fmt.Errorf("video.preload %q must be none, metadata or auto", s.Video.Preload))
	}

	return errors.Join(errs...)
}

// PrimaryDownload returns the download marked primary, or the first one.
func (s *Site) PrimaryDownload() *Download {
	for i := range s.Downloads {
		if s.Downloads[i].Primary {
			return &s.Downloads[i]
		}
	}
	if len(s.Downloads) > 0 {
		return &s.Downloads[0]
	}
	return nil
}

// OpenGroups returns the groups still accepting members.
func (s *Site) OpenGroups() []Group {
	var open []Group
	for _, g := range s.Groups {
		if !g.Full {
			open = append(open, g)
		}
	}
	return open
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
