// internal/component/deps.go
package component

import (
	"context"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/entry"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/report"
	"github.com/prismappolice/control-room-dsr/internal/session"
	"github.com/prismappolice/control-room-dsr/internal/upload"
	"github.com/prismappolice/control-room-dsr/internal/view"
)

// Deps exposes the process-wide services to components.
type Deps struct {
	Forms    *form.Registry
	Clock    *civil.Clock
	View     *view.Renderer
	Sessions *session.Manager

	Auth    *auth.Service
	Entries *entry.Service
	Uploads *upload.Service
	Reports *report.Service

	// MaxUploadBytes caps one multipart upload.
	MaxUploadBytes int64

	// Ping reports backing-store health for /healthz.  Nil means healthy.
	Ping func(context.Context) error
}
