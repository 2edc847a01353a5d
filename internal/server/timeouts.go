// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers (10 s)
//   • ReadTimeout       – cap body upload time (30 s, configurable)
//   • WriteTimeout      – cap total response time (60 s, configurable)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// Read and write windows are wider than a typical API because control-room
// staff push multi-megabyte scans over district links, and admins pull
// them back.  This helper centralises the defaults so cmd/web doesn't
// repeat boilerplate.
//

package server

import (
	"net/http"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/config"
)

// Defaults used when the config leaves a timeout at zero.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	headerTimeout       = 10 * time.Second
	idleTimeout         = 60 * time.Second
)

// New constructs an *http.Server for cfg with sensible defaults.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read == 0 {
		read = DefaultReadTimeout
	}
	if write == 0 {
		write = DefaultWriteTimeout
	}
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
	}
}
