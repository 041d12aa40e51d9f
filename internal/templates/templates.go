// Package templates embeds the HTML pages and stylesheet of the survey.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"strings"
	"time"
)

//go:embed pages/*.tmpl
var pageFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Static returns the stylesheet tree rooted at static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Funcs are the helpers available to every page
var Funcs = template.FuncMap{
	"seconds": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 1, 64)
	},
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"add": func(a, b int) int {
		return a + b
	},
	"join": strings.Join,
	"contains": func(items []string, v string) bool {
		for _, item := range items {
			if item == v {
				return true
			}
		}
		return false
	},
	"paragraphs": func(text string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

// Load parses every page. Pages are executed by file name, e.g. "intro.tmpl".
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs).ParseFS(pageFiles, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
