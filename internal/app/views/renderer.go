// Package views renders the HTML pages of the dashboard. Every page is
// parsed together with the shared layout and exposed to gin as an HTMLRender.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/yigit/attendance-admin/internal/app/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutFile = "layout.html"

// Renderer holds one compiled template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer compiles every page of fsys with the layout. A nil fsys
// uses the embedded templates.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	if fsys == nil {
		sub, err := fs.Sub(templateFiles, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, file := range names {
		if file == layoutFile {
			continue
		}
		tmpl, err := template.New(layoutFile).Funcs(funcMap).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(file, ".html")] = tmpl
	}
	return r, nil
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		// Surfaces as a 500 through gin's recovery; every page is compiled at startup.
		panic(fmt.Sprintf("views: unknown page %q", name))
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

// Has reports whether a page was compiled
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcMap = template.FuncMap{
	"date": formatDate,
	"join": strings.Join,
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "-"
		}
		return t.Format(models.DateLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return "-"
		}
		return t.Format(models.DateLayout)
	default:
		return "-"
	}
}
