package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/requestinfo"
)

// BodyLimit caps request bodies at n bytes.  Reads past the cap fail, and
// multipart parsing reports the error to the handler.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog writes one structured line per request after it completes.
// It must run inside requestinfo.Enrich and the session guard to pick up
// the client details and user.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("req_id", middleware.GetReqID(r.Context())),
		}
		if s, ok := auth.FromContext(r.Context()); ok {
			fields = append(fields, zap.String("user", s.Username))
		}
		if info := requestinfo.FromContext(r.Context()); info != nil {
			fields = append(fields,
				zap.Stringer("ip", info.Geo.IP),
				zap.String("browser", info.UA.Browser),
				zap.String("device", info.UA.Device))
			if info.Geo.CountryISO != "" {
				fields = append(fields, zap.String("country", info.Geo.CountryISO))
			}
		}
		zap.L().Info("http request", fields...)
	})
}
