package response

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

// ViewEngine renders named views. Register one on the server to enable
// Response.Render.
type ViewEngine interface {
	Render(w io.Writer, name string, data any) error
}

// TemplateEngine renders html/template views parsed from a filesystem.
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine parses every file matching patterns in fsys. Views are
// addressed by base file name, e.g. "index.html".
func NewTemplateEngine(fsys fs.FS, patterns ...string) (*TemplateEngine, error) {
	if len(patterns) == 0 {
		patterns = []string{"*.html"}
	}
	tmpl, err := template.ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	return &TemplateEngine{tmpl: tmpl}, nil
}

// Render implements ViewEngine
func (e *TemplateEngine) Render(w io.Writer, name string, data any) error {
	t := e.tmpl.Lookup(name)
	if t == nil {
		return fmt.Errorf("view %q not found", name)
	}
	return t.Execute(w, data)
}
