// internal/acl/middleware.go
//
// Chi middleware that enforces the operation table.

package acl

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

// Require admits the request only when the session role may perform op.
//
// Anonymous callers are sent to the login page (401 for JSON callers).
// Signed-in callers with the wrong role are sent to the landing page with
// "Access denied" flashed (403 for JSON callers).
func Require(op Operation) func(http.Handler) http.Handler {
	if _, ok := table[op]; !ok {
		panic("acl.Require: unknown operation " + string(op))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := auth.FromContext(r.Context())
			if !ok {
				respond.Fail(w, r, apperr.ErrLoginNeeded, "/auth/login")
				return
			}
			if !Allowed(op, s.Role) {
				metrics.AccessDeniedTotal.WithLabelValues(string(op)).Inc()
				zap.L().Warn("access denied",
					zap.String("op", string(op)),
					zap.String("user", s.Username),
					zap.String("role", string(s.Role)))
				respond.Fail(w, r, apperr.ErrAccessDenied, "/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
