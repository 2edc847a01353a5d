// components/auth/auth.go
//
// Authentication component: login, logout, profile, and password change.
//
// Context
//   Login is role-qualified: the form posts a user type alongside the
//   username and password, and only an account of that type may match.  A
//   successful login writes the signed session cookie and sends the caller
//   to the landing page for the role.  Logout clears the cookie from
//   wherever it is called, signed in or not.
//
//------------------------------------------------------------------------------

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/acl"
	"github.com/prismappolice/control-room-dsr/internal/apperr"
	iauth "github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates the account flows.
type Component struct {
	d component.Deps
}

// New builds the component.
func New(d component.Deps) component.Component { return &Component{d: d} }

// Register component at program start.
func init() { component.Register("auth", New) }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Prefix is the mount point.
func (c *Component) Prefix() string { return "/auth" }

// Routes builds the router mounted at /auth.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", c.handleLoginGET)
	r.Post("/login", c.handleLoginPOST)
	r.Get("/logout", c.handleLogout)

	r.With(acl.Require(acl.OpProfile)).Get("/profile", c.handleProfile)
	r.Group(func(r chi.Router) {
		r.Use(acl.Require(acl.OpChangePassword))
		r.Get("/change-password", c.handleChangePasswordGET)
		r.Post("/change-password", c.handleChangePasswordPOST)
	})
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type roleOption struct {
	Value string
	Label string
}

var roleOptions = []roleOption{
	{string(iauth.RoleDistrict), "District"},
	{string(iauth.RoleControlRoom), "Control Room"},
	{string(iauth.RoleAdmin), "Admin"},
}

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	if s, ok := c.d.Sessions.Current(r); ok {
		http.Redirect(w, r, s.Role.LandingPath(), http.StatusSeeOther)
		return
	}
	c.d.View.Render(w, r, "login", map[string]any{
		"Roles":    roleOptions,
		"UserType": r.URL.Query().Get("user_type"),
	})
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	s, err := c.d.Auth.Authenticate(r.Context(),
		username, r.PostFormValue("password"), r.PostFormValue("user_type"))
	if err != nil {
		if respond.WantsJSON(r) || apperr.KindOf(err) == apperr.Internal {
			respond.Fail(w, r, err, "/auth/login")
			return
		}
		c.d.View.RenderStatus(w, r, http.StatusUnauthorized, "login", map[string]any{
			"Roles":    roleOptions,
			"UserType": r.PostFormValue("user_type"),
			"Username": username,
			"Error":    apperr.Message(err),
		})
		return
	}

	if err := c.d.Sessions.Issue(w, s); err != nil {
		respond.Fail(w, r, err, "/auth/login")
		return
	}
	if respond.WantsJSON(r) {
		respond.OK(w, "Login successful", map[string]any{"redirect": s.Role.LandingPath()})
		return
	}
	respond.Redirect(w, r, s.Role.LandingPath(), message.Success, "Login successful")
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := c.d.Sessions.Read(r); ok {
		zap.L().Info("logout", zap.String("user", s.Username))
	}
	c.d.Sessions.Clear(w)
	respond.Redirect(w, r, "/", message.Info, "You have been logged out.")
}

func (c *Component) handleProfile(w http.ResponseWriter, r *http.Request) {
	s, _ := iauth.FromContext(r.Context())
	u, err := c.d.Auth.Profile(r.Context(), s)
	if err != nil {
		respond.Fail(w, r, err, "/")
		return
	}
	c.d.View.Render(w, r, "profile", map[string]any{"User": u})
}

func (c *Component) handleChangePasswordGET(w http.ResponseWriter, r *http.Request) {
	c.d.View.Render(w, r, "change_password", nil)
}

func (c *Component) handleChangePasswordPOST(w http.ResponseWriter, r *http.Request) {
	s, _ := iauth.FromContext(r.Context())
	err := c.d.Auth.ChangePassword(r.Context(), s,
		r.PostFormValue("current_password"),
		r.PostFormValue("new_password"),
		r.PostFormValue("confirm_password"))
	if err != nil {
		respond.Fail(w, r, err, "/auth/change-password")
		return
	}
	if respond.WantsJSON(r) {
		respond.OK(w, "Password changed successfully", nil)
		return
	}
	respond.Redirect(w, r, s.Role.LandingPath(), message.Success, "Password changed successfully")
}
