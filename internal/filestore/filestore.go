// Package filestore keeps the bytes of control-room uploads.  Metadata lives
// in the database; this package only maps an opaque key such as
// "controlroom/periscope_20251110_091500_3f2a9c1d_report.pdf" to bytes.
//
// Two backends exist: Local (a directory tree) and S3 (any S3-compatible
// bucket).  cmd/web selects one from upload.backend.
package filestore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist is returned when a key has no backing object.
var ErrNotExist = errors.New("filestore: object does not exist")

// Info describes a stored object.
type Info struct {
	Size    int64
	ModTime time.Time
}

// Store is implemented by every backend.
type Store interface {
	// Put writes r under key and returns the byte count.  Keys are never
	// reused by callers; Local refuses to overwrite.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	// Open returns a reader for key.  Callers must Close it.
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
	// Stat reports size and modification time without reading the object.
	Stat(ctx context.Context, key string) (Info, error)
	// Delete removes key.  Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
