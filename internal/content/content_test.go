package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	site, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "LetRecovery", site.Product.Name)
	assert.NotEmpty(t, site.Features)
	assert.NotEmpty(t, site.Downloads)
	assert.NotEmpty(t, site.Groups)
	assert.NotEmpty(t, site.Video.Source)

	primary := site.PrimaryDownload()
	require.NotNil(t, primary)
	assert.True(t, primary.Primary)
	assert.NotZero(t, primary.Size)
	assert.False(t, primary.Released.IsZero())
}

func TestParse_Minimal(t *testing.T) {
	site, err := Parse([]byte(`
product:
  name: Demo
downloads:
  - name: Demo
    url: https://example.com/demo.exe
`))
	require.NoError(t, err)
	assert.Equal(t, "Demo", site.Product.Name)
	assert.Equal(t, "https://example.com/demo.exe", site.PrimaryDownload().URL)
	assert.Empty(t, site.Groups)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("product: [unclosed"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	site := &Site{
		Downloads: []Download{{URL: "ftp://example.com/file"}},
		Groups:    []Group{{Name: "g"}},
		Video:     Video{Source: "relative.mp4", Preload: "eager"},
	}

	err := site.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "product.name is required")
	assert.Contains(t, msg, "downloads[0].name is required")
	assert.Contains(t, msg, "downloads[0].url")
	assert.Contains(t, msg, "groups[0].number is required")
	assert.Contains(t, msg, "video.source")
	assert.Contains(t, msg, "video.preload")
}

func TestValidate_NoDownloads(t *testing.T) {
	err := (&Site{Product: Product{Name: "x"}}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one download")
}

func TestPrimaryDownload_FallsBackToFirst(t *testing.T) {
	site := &Site{Downloads: []Download{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, "a", site.PrimaryDownload().Name)

	assert.Nil(t, (&Site{}).PrimaryDownload())
}

func TestOpenGroups(t *testing.T) {
	site := &Site{Groups: []Group{
		{Name: "one", Full: true},
		{Name: "two"},
		{Name: "three"},
	}}

	open := site.OpenGroups()
	require.Len(t, open, 2)
	assert.Equal(t, "two", open[0].Name)
	assert.Equal(t, "three", open[1].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
product: {name: File}
downloads: [{name: f, url: "https://example.com/f"}]
`), 0644))

	site, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "File", site.Product.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLicense(t *testing.T) {
	html, err := License()
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, "<h1")
	assert.Contains(t, s, "PolyForm Noncommercial License 1.0.0")
	assert.Contains(t, s, `href="https://github.com/NORMAL-EX/LetRecovery"`)
	assert.Contains(t, s, "将本软件整合到商业产品或服务中")
	assert.Contains(t, s, "在注明出处的前提下进行非商业性质的分发")
	assert.Contains(t, s, "致谢</h2>")
	assert.Contains(t, s, "感谢 电脑病毒爱好者 提供 WinPE")
}

func TestRenderMarkdown_OmitsRawHTML(t *testing.T) {
	html, err := RenderMarkdown([]byte("hello <script>alert(1)</script>\n\n**bold**"))
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "<strong>bold</strong>")
}
