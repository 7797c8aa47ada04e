package content

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// License renders the embedded license text.
func License() (template.HTML, error) {
	src, err := embedded.ReadFile("LICENSE.md")
	if err != nil {
		return "", fmt.Errorf("failed to read embedded license: %w", err)
	}
	return RenderMarkdown(src)
}

// LicenseFile renders the license text at path.
func LicenseFile(path string) (template.HTML, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read license file: %w", err)
	}
	return RenderMarkdown(src)
}

// RenderMarkdown converts Markdown to HTML. Raw HTML in the source is
// omitted by goldmark's default renderer.
func RenderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
