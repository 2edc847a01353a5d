// components/admin/admin.go
//
// Admin component: headquarters review of every district's reports and the
// control-room uploads.
//
// Context
// -------
// Pages render through the shared view engine.  The search, uploads
// filter, and upload details endpoints answer the dashboard JavaScript with
// JSON.  download_dsr streams a PDF built by report.Export.
//
// Dates
// -----
// The uploads filter endpoint formats dates as dd-mm-yyyy and times as
// dd-mm-yyyy HH:MM:SS, which is what the table code on the page expects.
// Everything else uses ISO dates.
//
// Notes
// -----
// • Every route is gated by acl.Require; report and upload services check
//   the admin role again.
// • Oxford commas, two spaces after periods.

package admin

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prismappolice/control-room-dsr/internal/acl"
	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/respond"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
)

const (
	jsonDate     = "02-01-2006"
	jsonDateTime = "02-01-2006 15:04:05"
	home         = "/admin/dashboard"
)

var _ component.Component = (*Component)(nil)

// Component serves /admin.
type Component struct {
	d component.Deps
}

// New builds the component.
func New(d component.Deps) component.Component { return &Component{d: d} }

func init() { component.Register("admin", New) }

func (c *Component) Name() string   { return "admin" }
func (c *Component) Prefix() string { return "/admin" }

// Routes builds the router mounted at /admin.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(acl.Require(acl.OpAdminDashboard)).Get("/dashboard", c.handleDashboard)
	r.With(acl.Require(acl.OpAdminDistrict)).Get("/district/{name}", c.handleDistrict)
	r.With(acl.Require(acl.OpAdminForm)).Get("/form/{type}", c.handleForm)
	r.With(acl.Require(acl.OpAdminSearch)).Get("/search", c.handleSearch)
	r.With(acl.Require(acl.OpAdminExport)).Get("/download_dsr/{district}/{date}", c.handleExport)

	r.Group(func(r chi.Router) {
		r.Use(acl.Require(acl.OpAdminUploads))
		r.Get("/uploads", c.handleUploads)
		r.Get("/uploads/filter", c.handleUploadsFilter)
		r.Get("/upload/details/{id}", c.handleUploadDetails)
	})
	r.Group(func(r chi.Router) {
		r.Use(acl.Require(acl.OpAdminUploadFile))
		r.Get("/download_upload/{id}", c.handleUploadFile(true))
		r.Get("/view_upload/{id}", c.handleUploadFile(false))
	})
	return r
}

func session(r *http.Request) auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}

/*──────────────────────────── pages ────────────────────────────────────────*/

func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := c.d.Reports.Dashboard(r.Context(), session(r))
	if err != nil {
		respond.Fail(w, r, err, "/")
		return
	}
	c.d.View.Render(w, r, "admin_dashboard", map[string]any{"Overview": ov})
}

func (c *Component) handleDistrict(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !c.d.Forms.IsUnit(name) {
		respond.Fail(w, r, apperr.New(apperr.NotFound, "Unknown district"), home)
		return
	}
	groups, err := c.d.Reports.ListByDistrict(r.Context(), session(r), name)
	if err != nil {
		respond.Fail(w, r, err, home)
		return
	}
	c.d.View.Render(w, r, "admin_district", map[string]any{"District": name, "Groups": groups})
}

func (c *Component) handleForm(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	fd, rows, err := c.d.Reports.ListByForm(r.Context(), session(r), chi.URLParam(r, "type"), date)
	if err != nil {
		respond.Fail(w, r, err, home)
		return
	}
	c.d.View.Render(w, r, "admin_form", map[string]any{"Form": fd, "Rows": rows, "FilterDate": date})
}

func (c *Component) handleUploads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNo, _ := strconv.Atoi(q.Get("page"))
	f := upload.Filter{Date: q.Get("date"), UploadType: q.Get("upload_type"), Page: pageNo}
	page, err := c.d.Uploads.List(r.Context(), session(r), f)
	if err != nil {
		respond.Fail(w, r, err, home)
		return
	}
	c.d.View.Render(w, r, "admin_uploads", map[string]any{"Page": page, "Filter": f})
}

/*──────────────────────────── JSON ─────────────────────────────────────────*/

func (c *Component) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := c.d.Reports.Search(r.Context(), session(r), q.Get("date"), q.Get("district"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, "", map[string]any{"data": items})
}

// uploadRow is one upload as the filter table draws it.
type uploadRow struct {
	ID               int64  `json:"id"`
	Date             string `json:"date"`
	UploadType       string `json:"upload_type"`
	UploadLabel      string `json:"upload_label"`
	OriginalFilename string `json:"original_filename"`
	UploadedAt       string `json:"uploaded_at"`
}

func (c *Component) row(u store.Upload) uploadRow {
	label := u.UploadType
	for _, t := range c.d.Forms.UploadTypes() {
		if t.Key == u.UploadType {
			label = t.Label
			break
		}
	}
	return uploadRow{
		ID:               u.ID,
		Date:             u.Date.Format(jsonDate),
		UploadType:       u.UploadType,
		UploadLabel:      label,
		OriginalFilename: u.OriginalFilename,
		UploadedAt:       u.UploadedAt.Format(jsonDateTime),
	}
}

func (c *Component) handleUploadsFilter(w http.ResponseWriter, r *http.Request) {
	ups, err := c.d.Uploads.ByDate(r.Context(), session(r), r.URL.Query().Get("date"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	rows := make([]uploadRow, 0, len(ups))
	for _, u := range ups {
		rows = append(rows, c.row(u))
	}
	respond.OK(w, "", map[string]any{"uploads": rows})
}

func (c *Component) handleUploadDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, upload.ErrUploadNotFound)
		return
	}
	d, err := c.d.Uploads.Details(r.Context(), session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	row := c.row(d.Upload)
	respond.OK(w, "", map[string]any{"upload": map[string]any{
		"id":                row.ID,
		"date":              row.Date,
		"upload_type":       row.UploadLabel,
		"original_filename": row.OriginalFilename,
		"uploaded_at":       row.UploadedAt,
		"uploaded_by":       d.UploadedBy,
		"file_size":         d.FileSize,
		"file_exists":       d.FileSize != "",
	}})
}

/*──────────────────────────── files ────────────────────────────────────────*/

func (c *Component) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := c.d.Reports.Export(r.Context(), session(r),
		chi.URLParam(r, "district"), chi.URLParam(r, "date"))
	if err != nil {
		respond.Fail(w, r, err, home)
		return
	}
	respond.File(w, bytes.NewReader(doc.Body), doc.Filename, int64(len(doc.Body)), c.d.Clock.Now(), true)
}

func (c *Component) handleUploadFile(attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respond.Fail(w, r, upload.ErrUploadNotFound, "/admin/uploads")
			return
		}
		rc, rec, info, err := c.d.Uploads.Open(r.Context(), session(r), id)
		if err != nil {
			respond.Fail(w, r, err, "/admin/uploads")
			return
		}
		defer rc.Close()
		respond.File(w, rc, rec.OriginalFilename, info.Size, info.ModTime, attachment)
	}
}
