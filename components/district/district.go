// components/district/district.go
//
// District component: daily entry forms, and the control-room upload pages
// that share the /district prefix.
//
// Context
//   District users file one or more entries per form per day.  The form page
//   lists today's entries; its JavaScript loads one entry back into the
//   inputs for editing and deletes entries in place.  Saves post the whole
//   form, with entry_id set when editing.
//
//   Control-room users land on /district/dashboard too, and are forwarded
//   to their own dashboard.  Their upload routes live in controlroom.go.
//
// Notes
//   • Every route is gated by acl.Require; the services check role and
//     scope again.
//   • Oxford commas, two spaces after periods.
//
//------------------------------------------------------------------------------

package district

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prismappolice/control-room-dsr/internal/acl"
	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/entry"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

// RecentEntries is the district dashboard list length.
const RecentEntries = 10

var _ component.Component = (*Component)(nil)

// Component serves /district.
type Component struct {
	d component.Deps
}

// New builds the component.
func New(d component.Deps) component.Component { return &Component{d: d} }

func init() { component.Register("district", New) }

func (c *Component) Name() string   { return "district" }
func (c *Component) Prefix() string { return "/district" }

// Routes builds the router mounted at /district.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.Require(acl.OpDistrictDashboard)).Get("/dashboard", c.handleDashboard)

	r.Route("/form/{type}", func(r chi.Router) {
		r.With(acl.Require(acl.OpEntryForm)).Get("/", c.handleFormGET)
		r.With(acl.Require(acl.OpEntryForm)).Post("/", c.handleFormPOST)
		r.With(acl.Require(acl.OpEntryEdit)).Get("/edit/{id}", c.handleEdit)
		r.With(acl.Require(acl.OpEntryDelete)).Delete("/delete/{id}", c.handleDelete)
	})

	c.controlRoomRoutes(r)
	return r
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func session(r *http.Request) auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

/*──────────────────────────── entries ──────────────────────────────────────*/

func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	if s.Role == auth.RoleControlRoom {
		http.Redirect(w, r, auth.RoleControlRoom.LandingPath(), http.StatusSeeOther)
		return
	}
	recent, err := c.d.Entries.Recent(r.Context(), s, RecentEntries)
	if err != nil {
		respond.Fail(w, r, err, "/")
		return
	}
	c.d.View.Render(w, r, "district_dashboard", map[string]any{"Recent": recent})
}

func (c *Component) handleFormGET(w http.ResponseWriter, r *http.Request) {
	formType := chi.URLParam(r, "type")
	fd, ok := c.d.Forms.Form(formType)
	if !ok {
		respond.Fail(w, r, entry.ErrInvalidFormType, "/district/dashboard")
		return
	}
	rows, err := c.d.Entries.ListToday(r.Context(), session(r), formType)
	if err != nil {
		respond.Fail(w, r, err, "/district/dashboard")
		return
	}
	c.d.View.Render(w, r, "district_form", map[string]any{
		"Form":    fd,
		"Entries": rows,
		"Today":   civil.FormatDate(c.d.Clock.Today()),
	})
}

func (c *Component) handleFormPOST(w http.ResponseWriter, r *http.Request) {
	formType := chi.URLParam(r, "type")
	back := "/district/form/" + formType
	if err := r.ParseForm(); err != nil {
		respond.Fail(w, r, apperr.New(apperr.Invalid, "Malformed form submission"), back)
		return
	}

	in := entry.SubmitInput{
		FormType: formType,
		Date:     r.PostForm.Get(form.EntryDateField),
		Values:   make(map[string]string, len(r.PostForm)),
	}
	for k, v := range r.PostForm {
		if !form.Reserved(k) && len(v) > 0 {
			in.Values[k] = v[0]
		}
	}
	if raw := r.PostForm.Get(form.EntryIDField); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respond.Fail(w, r, entry.ErrEntryNotFound, back)
			return
		}
		in.EntryID = id
	}

	res, err := c.d.Entries.Submit(r.Context(), session(r), in)
	if err != nil {
		respond.Fail(w, r, err, back)
		return
	}
	if respond.WantsJSON(r) {
		respond.OK(w, res.Message(), map[string]any{"entry_id": res.Entry.ID})
		return
	}
	respond.Redirect(w, r, auth.RoleDistrict.LandingPath(), message.Success, res.Message())
}

func (c *Component) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, r, entry.ErrEntryNotFound)
		return
	}
	data, err := c.d.Entries.FetchForEdit(r.Context(), session(r), chi.URLParam(r, "type"), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "", map[string]any{"data": data})
}

func (c *Component) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, r, entry.ErrEntryNotFound)
		return
	}
	if err := c.d.Entries.Delete(r.Context(), session(r), chi.URLParam(r, "type"), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "Entry deleted successfully", nil)
}
