package district

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prismappolice/control-room-dsr/internal/acl"
	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/respond"
	"github.com/prismappolice/control-room-dsr/internal/upload"
)

// RecentUploads is the list length beside the upload form.
const RecentUploads = 5

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

func (c *Component) controlRoomRoutes(r chi.Router) {
	r.With(acl.Require(acl.OpControlRoomDashboard)).Get("/controlroom_dashboard", c.handleControlRoomDashboard)
	r.Group(func(r chi.Router) {
		r.Use(acl.Require(acl.OpControlRoomUpload))
		r.Get("/upload", c.handleUploadGET)
		r.Post("/upload", c.handleUploadPOST)
	})
	r.Group(func(r chi.Router) {
		r.Use(acl.Require(acl.OpControlRoomUploadFile))
		r.Get("/download_upload/{id}", c.handleUploadFile(true))
		r.Get("/view_upload/{id}", c.handleUploadFile(false))
	})
}

func (c *Component) handleControlRoomDashboard(w http.ResponseWriter, r *http.Request) {
	pageNo, _ := strconv.Atoi(r.URL.Query().Get("page"))
	page, err := c.d.Uploads.List(r.Context(), session(r), upload.Filter{Page: pageNo})
	if err != nil {
		respond.Fail(w, r, err, "/")
		return
	}
	c.d.View.Render(w, r, "controlroom_dashboard", map[string]any{"Page": page})
}

func (c *Component) handleUploadGET(w http.ResponseWriter, r *http.Request) {
	recent, err := c.d.Uploads.Recent(r.Context(), session(r), RecentUploads)
	if err != nil {
		respond.Fail(w, r, err, "/")
		return
	}
	c.d.View.Render(w, r, "controlroom_upload", map[string]any{
		"Today":    civil.FormatDate(c.d.Clock.Today()),
		"MaxBytes": c.d.MaxUploadBytes,
		"Recent":   recent,
	})
}

func (c *Component) handleUploadPOST(w http.ResponseWriter, r *http.Request) {
	const back = "/district/upload"
	r.Body = http.MaxBytesReader(w, r.Body, c.d.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Fail(w, r, apperr.ErrTooLarge, back)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			respond.Fail(w, r, apperr.New(apperr.Invalid, "Malformed upload"), back)
			return
		}
	}

	in := upload.StoreInput{
		Date:       r.FormValue("date"),
		UploadType: r.FormValue("upload_type"),
	}
	file, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		in.Body = file
		in.Filename = hdr.Filename
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		respond.Fail(w, r, err, back)
		return
	}

	rec, err := c.d.Uploads.Store(r.Context(), session(r), in)
	if err != nil {
		respond.Fail(w, r, err, back)
		return
	}
	if respond.WantsJSON(r) {
		respond.OK(w, "File uploaded successfully", map[string]any{"id": rec.ID})
		return
	}
	respond.Redirect(w, r, "/district/controlroom_dashboard", message.Success, "File uploaded successfully")
}

// handleUploadFile streams one of the caller's own uploads.
func (c *Component) handleUploadFile(attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const back = "/district/controlroom_dashboard"
		id, ok := pathID(r)
		if !ok {
			respond.Fail(w, r, upload.ErrUploadNotFound, back)
			return
		}
		rc, rec, info, err := c.d.Uploads.Open(r.Context(), session(r), id)
		if err != nil {
			respond.Fail(w, r, err, back)
			return
		}
		defer rc.Close()
		respond.File(w, rc, rec.OriginalFilename, info.Size, info.ModTime, attachment)
	}
}

