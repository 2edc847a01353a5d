// internal/server/router.go
//
// Root HTTP handler.
//
// Context
// -------
// The router is built once at boot.  It wires the middleware chain in the
// order the later links depend on, then mounts every registered component
// at its prefix.
//
//   RequestID → Recoverer → Security → BodyLimit → requestinfo.Enrich
//     → session Guard → AccessLog → CSRF → component routes
//
// AccessLog sits inside Guard so each line carries the user, and CSRF sits
// last so a rejected token is still logged.
//
// Notes
// -----
// • /static and /metrics are mounted here, not by a component.
// • Unknown paths render the error page, or JSON for AJAX callers.
// • Oxford commas, two spaces after periods.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/middleware"
	"github.com/prismappolice/control-room-dsr/internal/requestinfo"
	"github.com/prismappolice/control-room-dsr/internal/respond"
	"github.com/prismappolice/control-room-dsr/internal/view"
)

// RouterOptions wires the root handler.
type RouterOptions struct {
	Deps       component.Deps
	CSRF       *form.CSRF
	ForceHTTPS bool // redirect plain HTTP and send HSTS
}

// Router builds the root handler from every registered component.
func Router(opts RouterOptions) http.Handler {
	d := opts.Deps
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security(opts.ForceHTTPS))
	r.Use(middleware.BodyLimit(d.MaxUploadBytes))
	r.Use(requestinfo.Enrich)
	r.Use(d.Sessions.Guard)
	r.Use(middleware.AccessLog)
	r.Use(opts.CSRF.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		notFound(d.View, w, req)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Fail(w, req, apperr.New(apperr.Invalid, "Method not allowed"), "/")
	})

	r.Mount("/static", view.Static())
	r.Handle("/metrics", promhttp.Handler())

	for _, c := range component.Build(d) {
		r.Mount(c.Prefix(), c.Routes())
		zap.L().Debug("component mounted",
			zap.String("component", c.Name()),
			zap.String("prefix", c.Prefix()))
	}

	return middleware.ForceHTTPS(opts.ForceHTTPS, r)
}

func notFound(v *view.Renderer, w http.ResponseWriter, r *http.Request) {
	if respond.WantsJSON(r) {
		respond.Fail(w, r, apperr.New(apperr.NotFound, "Page not found"), "/")
		return
	}
	v.RenderStatus(w, r, http.StatusNotFound, "error", map[string]any{
		"Status":  http.StatusNotFound,
		"Message": "The page you asked for does not exist.",
	})
}
