// internal/view/render.go
//
// Central view engine: embedded page templates, func-map injection, and
// per-page parsed sets built once at startup.
//
// Public helpers
// --------------
//   - New            – parse every page against the shared layout.
//   - Render         – write a rendered page with status 200.
//   - RenderStatus   – same, with an explicit status.
//   - Static         – http.Handler for the embedded /static tree.
//
// Layout
// ------
//   templates/layout.html        defines "layout", which calls "content".
//   templates/partials/*.html    shared snippets ({{ template "flashes" . }}).
//   templates/pages/<name>.html  defines "title" and "content" for one page.
//
// Each page is parsed as its own set together with the layout and the
// partials, so every page may define "content" without clashing.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/requestinfo"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the value every template receives.
type Page struct {
	Title   string
	Session *auth.Session
	Flashes []message.Flash
	CSRF    string
	Client  *requestinfo.RequestInfo
	Path    string
	Data    map[string]any
}

// Renderer holds the parsed page sets.  Safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
	csrf  *form.CSRF
}

//
// construction
//

// New parses every page in the embedded tree.  A template error fails
// startup rather than the first request.
func New(csrf *form.CSRF, forms *form.Registry) (*Renderer, error) {
	fm := buildFuncMap(forms)

	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	v := &Renderer{pages: make(map[string]*template.Template, len(names)), csrf: csrf}
	for _, p := range names {
		name := strings.TrimSuffix(path.Base(p), ".html")
		t, err := template.New(name).Funcs(fm).ParseFS(templateFS,
			"templates/layout.html", "templates/partials/*.html", p)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

//
// public helpers
//

// Render executes page name and streams it to w with status 200.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	v.RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes page name into a buffer and writes it with status.
// Flash messages are consumed only when rendering succeeds.
func (v *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	t, ok := v.pages[name]
	if !ok {
		zap.L().Error("view: unknown page", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := Page{
		Client: requestinfo.FromContext(r.Context()),
		Path:   r.URL.Path,
		Data:   data,
	}
	if s, ok := auth.FromContext(r.Context()); ok {
		page.Session = &s
	}
	if tok, err := v.csrf.Token(); err == nil {
		page.CSRF = tok
	} else {
		zap.L().Error("view: csrf token", zap.Error(err))
	}
	page.Flashes = message.Peek(r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", &page); err != nil {
		zap.L().Error("view: render", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(page.Flashes) > 0 {
		message.Clear(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Has reports whether a page exists.  Used by tests.
func (v *Renderer) Has(name string) bool {
	_, ok := v.pages[name]
	return ok
}

// Static serves the embedded static tree.  Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
