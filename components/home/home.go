// components/home/home.go
//
// Public landing page and liveness probe.
//
// Neither route passes the idle guard.  The landing page offers a link to
// the caller's dashboard when a current session exists, and /healthz pings
// the database so a balancer can drop an instance that lost it.

package home

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

var _ component.Component = (*Component)(nil)

// Component serves / and /healthz.
type Component struct {
	d component.Deps
}

// New builds the component.
func New(d component.Deps) component.Component { return &Component{d: d} }

func init() { component.Register("home", New) }

func (c *Component) Name() string   { return "home" }
func (c *Component) Prefix() string { return "/" }

// Routes builds the router mounted at /.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleIndex)
	r.Get("/healthz", c.handleHealth)
	return r
}

func (c *Component) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if s, ok := c.d.Sessions.Current(r); ok {
		data["Landing"] = s.Role.LandingPath()
	}
	c.d.View.Render(w, r, "index", data)
}

func (c *Component) handleHealth(w http.ResponseWriter, r *http.Request) {
	if c.d.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.d.Ping(ctx); err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
