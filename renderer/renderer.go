// Package renderer renders synchronization reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embedded embed.FS

// templates is the flat directory of markdown templates.
var templates, _ = fs.Sub(embedded, "templates")

// RenderSync renders the Sync report to a markdown string.
func RenderSync(s *Sync) string {
	partials := map[string]string{
		"sync_title":   "sync_title.md",
		"sync_windows": "sync_windows.md",
		"sync_totals":  "sync_totals.md",
	}
	// An empty file name results in an empty template.
	if s.Error == "" {
		partials["sync_error"] = ""
	} else {
		partials["sync_error"] = "sync_error.md"
	}
	return renderTemplate("sync.md", partials, s)
}

// RenderStatus renders the Status of a store to a markdown string.
func RenderStatus(s *Status) string {
	return renderTemplate("status.md", nil, s)
}

// renderTemplate renders the template of mainFile with its partials. Errors
// are rendered in place of the report.
func renderTemplate(mainFile string, partials map[string]string, data any) string {
	tmpl, err := parseTemplate(mainFile, partials)
	if err != nil {
		return err.Error()
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", mainFile, err)
	}
	return b.String()
}

// parseTemplate parses the main template and associates every partial by
// name. An empty partial file name defines an empty template.
func parseTemplate(mainFile string, partials map[string]string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templates, mainFile)
	if err != nil {
		return nil, fmt.Errorf("error parsing main template %q: %w", mainFile, err)
	}
	for name, file := range partials {
		var content []byte
		if file != "" {
			if content, err = fs.ReadFile(templates, file); err != nil {
				return nil, fmt.Errorf("error reading partial template %q: %w", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("error parsing partial template %q for %q: %w", file, name, err)
		}
	}
	return tmpl, nil
}
