package site

import (
	"embed"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

//go:embed templates static
var embedded embed.FS

// stylesheetEntry is the bundled stylesheet's root file.
const stylesheetEntry = "css/site.css"

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// staticFS returns the embedded static directory.
func staticFS() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// bundleStylesheet reads name from fsys and inlines its @import statements.
func bundleStylesheet(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	seen := map[string]bool{name: true}
	return processImports(fsys, string(data), path.Dir(name), seen), nil
}

// processImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir; seen prevents circular imports.
func processImports(fsys fs.FS, css, baseDir string, seen map[string]bool) string {
	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		importPath := submatch[1]
		if strings.Contains(importPath, "://") {
			// Remote imports stay as they are.
			return match
		}

		fullPath := path.Clean(path.Join(baseDir, importPath))
		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		imported, err := fs.ReadFile(fsys, fullPath)
		if err != nil {
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		return "/* imported: " + importPath + " */\n" +
			processImports(fsys, string(imported), path.Dir(fullPath), seen)
	})
}
