// Package renderer formats snapshots as markdown reports.
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

// templates is the template directory, without its prefix.
var templates, _ = fs.Sub(embedded, "templates")

// RenderSnapshot renders a snapshot report: totals, positions and errors.
func RenderSnapshot(s *Snapshot) string {
	partials := map[string]string{
		"snapshot_title":     "snapshot_title.md",
		"snapshot_totals":    "snapshot_totals.md",
		"snapshot_positions": "snapshot_positions.md",
		"snapshot_errors":    "snapshot_errors.md",
	}
	return renderTemplate("snapshot", "snapshot.md", partials, s)
}

// RenderHistory renders the daily series as a table.
func RenderHistory(h *History) string {
	return renderTemplate("history", "history.md", nil, h)
}

// RenderInvestments renders grouped investments as a table.
func RenderInvestments(i *Investments) string {
	return renderTemplate("investments", "investments.md", nil, i)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
