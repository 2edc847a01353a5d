// internal/respond/respond.go
//
// Response helpers shared by every component.
//
// Context
// -------
// The same handler often serves two kinds of caller.  A browser form post
// expects a redirect and a flash message; the page's JavaScript expects a
// JSON body with an explicit status.  WantsJSON decides which one is asking,
// and Fail turns any service error into the right answer for it.
//
// Notes
// -----
// • Internal errors are logged here, once, and shown as a generic message.
// • Oxford commas, two spaces after periods.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/message"
)

// WantsJSON reports whether the caller is programmatic: an XMLHttpRequest
// marker header, an Accept header naming application/json, or the form
// field ajax_request=true.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.FormValue("ajax_request") == "true"
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("json encode", zap.Error(err))
	}
}

// OK writes {"success": true, "message": msg} plus any extra fields.
func OK(w http.ResponseWriter, msg string, extra map[string]any) {
	body := map[string]any{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Redirect queues a flash message (when msg is non-empty) and sends a 303.
func Redirect(w http.ResponseWriter, r *http.Request, to, category, msg string) {
	if msg != "" {
		message.Add(w, r, category, msg)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Fail reports err to the caller.  JSON callers get Error; browsers are
// redirected to back with the message flashed.
func Fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if WantsJSON(r) {
		Error(w, r, err)
		return
	}
	logInternal(r, err)
	Redirect(w, r, back, message.Error, apperr.Message(err))
}

// Error writes {"success": false, "message": …, "error": …} with the status
// mapped from err's kind.  Endpoints that only ever answer JSON call it
// directly, whatever headers the caller sent.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	logInternal(r, err)
	msg := apperr.Message(err)
	JSON(w, apperr.Status(apperr.KindOf(err)), map[string]any{
		"success": false,
		"message": msg,
		"error":   msg,
	})
}

func logInternal(r *http.Request, err error) {
	if apperr.KindOf(err) != apperr.Internal {
		return
	}
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
}
