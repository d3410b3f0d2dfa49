package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/foxzi/leadboard/internal/campaign"
	"github.com/foxzi/leadboard/internal/mailbox"
	"github.com/foxzi/leadboard/internal/records"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Files that are always parsed into every page
const (
	layoutFile   = "layout.html"
	partialsFile = "partials.html"
)

// standalone pages render without the application shell
var standalone = map[string]bool{
	"login":   true,
	"signup":  true,
	"loading": true,
}

// Engine renders the embedded page templates
type Engine struct {
	templates map[string]*template.Template
}

// New parses every page once. Layout pages execute "layout", standalone
// pages execute "page". Timestamps are displayed in loc.
func New(loc *time.Location) (*Engine, error) {
	e := &Engine{
		templates: make(map[string]*template.Template),
	}

	base, err := template.New("base").Funcs(Funcs(loc)).ParseFS(templatesFS, "templates/"+partialsFile)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == layoutFile || name == partialsFile {
			continue
		}
		baseName := strings.TrimSuffix(name, path.Ext(name))

		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}

		files := []string{"templates/" + name}
		if !standalone[baseName] {
			files = append([]string{"templates/" + layoutFile}, files...)
		}
		if _, err := tmpl.ParseFS(templatesFS, files...); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		e.templates[baseName] = tmpl
	}

	return e, nil
}

// Render executes page name into w. Output is buffered so a failing template
// does not leave a half-written page.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	entry := "layout"
	if standalone[name] {
		entry = "page"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a page exists
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}

// Funcs are the helpers available to every template
func Funcs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"join":  strings.Join,
		"upper": strings.ToUpper,
		"contains": func(list []string, v string) bool {
			return slices.Contains(list, v)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(loc).Format("Jan 2, 2006 15:04")
		},
		"day": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("2006-01-02")
		},
		"deref": func(p *int) string {
			if p == nil {
				return "-"
			}
			return fmt.Sprint(*p)
		},
		"orDash": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "-"
			}
			return s
		},
		"statusClass": func(res *records.Resource, status string) string {
			return records.StatusClass(res, strings.ToUpper(status))
		},
		"campaignClass": campaign.StatusClass,
		"statusBadge":   checkClass,
		"inputType":     inputType,
		"href":          href,
		"input": func(f records.Field, value string, edit bool) FieldView {
			return FieldView{Field: f, Value: value, Edit: edit}
		},
		"filter": func(f records.Field, value string) FieldView {
			return FieldView{Field: f, Value: value, Filter: true}
		},
	}
}

// FieldView is the data of the "field" partial
type FieldView struct {
	Field  records.Field
	Value  string
	Edit   bool
	Filter bool
}

// Pager is a page of a list with the links to its neighbours
type Pager struct {
	records.Page
	Prev template.URL
	Next template.URL
}

// NewPager builds the pager of p; link returns the query string of a page number
func NewPager(path string, p records.Page, link func(page int) string) Pager {
	pg := Pager{Page: p}
	if p.HasPrev() {
		pg.Prev = href(path, link(p.Number-1))
	}
	if p.HasNext() {
		pg.Next = href(path, link(p.Number+1))
	}
	return pg
}

func checkClass(status string) string {
	switch status {
	case mailbox.StatusOK:
		return "green"
	case mailbox.StatusWarning:
		return "orange"
	case mailbox.StatusError:
		return "red"
	default:
		return "default"
	}
}

// href joins a local path and an already encoded query string
func href(base, query string) template.URL {
	if query == "" {
		return template.URL(base)
	}
	return template.URL(base + "?" + query)
}

func inputType(f records.Field) string {
	switch f.Kind {
	case records.FieldEmail:
		return "email"
	case records.FieldDate:
		return "date"
	case records.FieldPassword:
		return "password"
	case records.FieldSelect:
		return "select"
	case records.FieldTextArea:
		return "textarea"
	default:
		return "text"
	}
}
