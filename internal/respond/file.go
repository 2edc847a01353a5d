package respond

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"
)

// File streams body as filename.  attachment selects a download prompt over
// inline display.  size is sent as Content-Length when positive.
func File(w http.ResponseWriter, body io.Reader, filename string, size int64, modTime time.Time, attachment bool) {
	ctype := mime.TypeByExtension(path.Ext(filename))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	disp := "inline"
	if attachment {
		disp = "attachment"
	}

	h := w.Header()
	h.Set("Content-Type", ctype)
	h.Set("Content-Disposition", mime.FormatMediaType(disp, map[string]string{"filename": filename}))
	h.Set("X-Content-Type-Options", "nosniff")
	if size > 0 {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if !modTime.IsZero() {
		h.Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
