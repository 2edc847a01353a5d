// internal/upload/upload.go
//
// Control-room document uploads.
//
// Context
// -------
// Control-room staff attach supporting documents (Periscope sheets, VIP
// engagement lists, forecasts) to a date.  The bytes go to a filestore
// backend under a generated key; the metadata row records who uploaded
// what, for which day, and where it lives.
//
// Visibility
// ----------
//   • admin        sees and opens every upload.
//   • controlroom  lists only its own uploads; opening someone else's id is
//                  refused with access denied.
//
// Notes
// -----
// • Bytes are written first.  If the metadata insert then fails the object
//   is removed, so no orphan is left behind.
// • A metadata row whose object has vanished is reported as a missing
//   file.  The row is never cleaned up automatically.
// • Oxford commas, two spaces after periods.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/filestore"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// PerPage is the admin listing page size.
const PerPage = 20

// keyPrefix groups control-room objects inside the store.
const keyPrefix = "controlroom"

// UploadedBy is the uploader label shown to admins.
const UploadedBy = "Control Room"

// Errors surfaced to users.
var (
	ErrFieldsRequired    = apperr.New(apperr.Invalid, "All fields are required")
	ErrNoFile            = apperr.New(apperr.Invalid, "No file selected")
	ErrDateRequired      = apperr.New(apperr.Invalid, "Date is required")
	ErrInvalidUploadType = apperr.New(apperr.Invalid, "Invalid upload type")
	ErrUploadNotFound    = apperr.New(apperr.NotFound, "Upload not found")
	ErrFileMissing       = apperr.New(apperr.NotFound, "File not found on server")
)

// Repository is the subset of store.Uploads the service needs.
type Repository interface {
	Insert(ctx context.Context, u *store.Upload) (int64, error)
	ByID(ctx context.Context, id int64) (*store.Upload, error)
	List(ctx context.Context, q store.UploadQuery) ([]store.Upload, error)
	Count(ctx context.Context, q store.UploadQuery) (int, error)
}

// Service implements the upload operations.
type Service struct {
	repo  Repository
	files filestore.Store
	forms *form.Registry
	clock *civil.Clock
	nonce func() string
}

// NewService wires a Service.
func NewService(repo Repository, files filestore.Store, forms *form.Registry, clock *civil.Clock) *Service {
	return &Service{
		repo:  repo,
		files: files,
		forms: forms,
		clock: clock,
		nonce: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
}

/*──────────────────────────── store ────────────────────────────────────────*/

// StoreInput is one posted upload.
type StoreInput struct {
	Date       string
	UploadType string
	Filename   string    // client-supplied name
	Body       io.Reader // nil when no file part was sent
}

// Store validates in, writes the bytes, and records the metadata.
func (s *Service) Store(ctx context.Context, sess auth.Session, in StoreInput) (store.Upload, error) {
	if sess.Role != auth.RoleControlRoom {
		return store.Upload{}, apperr.ErrAccessDenied
	}
	if in.Date == "" || in.UploadType == "" || in.Body == nil {
		return store.Upload{}, ErrFieldsRequired
	}
	if in.Filename == "" {
		return store.Upload{}, ErrNoFile
	}
	day, err := civil.ParseDate(in.Date)
	if err != nil {
		return store.Upload{}, apperr.ErrBadDate
	}
	if !s.forms.IsUploadType(in.UploadType) {
		return store.Upload{}, ErrInvalidUploadType
	}

	now := s.clock.Now()
	safe := SanitizeFilename(in.Filename)
	stored := fmt.Sprintf("%s_%s_%s_%s", in.UploadType, now.Format("20060102_150405"), s.nonce(), safe)
	key := path.Join(keyPrefix, stored)

	n, err := s.files.Put(ctx, key, in.Body)
	if err != nil {
		return store.Upload{}, fmt.Errorf("store upload bytes: %w", err)
	}

	rec := store.Upload{
		Date:             day,
		UploadType:       in.UploadType,
		Filename:         stored,
		OriginalFilename: safe,
		FilePath:         key,
		UploadedAt:       now,
		UserID:           sess.UserID,
	}
	if _, err := s.repo.Insert(ctx, &rec); err != nil {
		if derr := s.files.Delete(ctx, key); derr != nil {
			zap.L().Error("orphan upload left behind", zap.String("key", key), zap.Error(derr))
		}
		return store.Upload{}, fmt.Errorf("insert upload: %w", err)
	}

	metrics.UploadTotal.WithLabelValues(in.UploadType).Inc()
	metrics.UploadBytesTotal.Add(float64(n))
	zap.L().Info("upload stored",
		zap.Int64("id", rec.ID),
		zap.String("type", in.UploadType),
		zap.String("key", key),
		zap.Int64("bytes", n))
	return rec, nil
}

/*──────────────────────────── list ─────────────────────────────────────────*/

// Filter narrows a listing.  Empty fields do not filter.
type Filter struct {
	Date       string
	UploadType string
	Page       int // 1-based; clamped to the available pages
}

// Page is one page of uploads.
type Page struct {
	Items   []store.Upload
	Page    int
	PerPage int
	Total   int
}

// Pages returns the page count, at least 1.
func (p Page) Pages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Page < p.Pages() }

// query builds the store query for sess, forcing the owner filter for
// control-room callers.
func (s *Service) query(sess auth.Session, f Filter) (store.UploadQuery, error) {
	var q store.UploadQuery
	switch sess.Role {
	case auth.RoleAdmin:
	case auth.RoleControlRoom:
		q.UserID = sess.UserID
	default:
		return q, apperr.ErrAccessDenied
	}
	if f.Date != "" {
		day, err := civil.ParseDate(f.Date)
		if err != nil {
			return q, apperr.ErrBadDate
		}
		q.Date = &day
	}
	q.UploadType = f.UploadType
	return q, nil
}

// List returns one page of uploads visible to sess, newest first.
func (s *Service) List(ctx context.Context, sess auth.Session, f Filter) (Page, error) {
	q, err := s.query(sess, f)
	if err != nil {
		return Page{}, err
	}
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("count uploads: %w", err)
	}
	// Out-of-range pages land on the last page.
	out := Page{PerPage: PerPage, Total: total}
	out.Page = min(max(f.Page, 1), out.Pages())
	q.Limit = PerPage
	q.Offset = (out.Page - 1) * PerPage
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("list uploads: %w", err)
	}
	out.Items = items
	return out, nil
}

// ByDate returns every upload for one day.  The date is mandatory.
func (s *Service) ByDate(ctx context.Context, sess auth.Session, date string) ([]store.Upload, error) {
	if date == "" {
		return nil, ErrDateRequired
	}
	q, err := s.query(sess, Filter{Date: date})
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, q)
}

// Recent returns the newest uploads visible to sess.
func (s *Service) Recent(ctx context.Context, sess auth.Session, limit int) ([]store.Upload, error) {
	q, err := s.query(sess, Filter{})
	if err != nil {
		return nil, err
	}
	q.Limit = limit
	return s.repo.List(ctx, q)
}

/*──────────────────────────── open ─────────────────────────────────────────*/

// lookup resolves id and applies the ownership rule.
func (s *Service) lookup(ctx context.Context, sess auth.Session, id int64) (*store.Upload, error) {
	if sess.Role != auth.RoleAdmin && sess.Role != auth.RoleControlRoom {
		return nil, apperr.ErrAccessDenied
	}
	rec, err := s.repo.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get upload %d: %w", id, err)
	}
	if sess.Role == auth.RoleControlRoom && rec.UserID != sess.UserID {
		return nil, apperr.ErrAccessDenied
	}
	return rec, nil
}

// Open returns the upload's bytes.  Callers must Close the reader.
func (s *Service) Open(ctx context.Context, sess auth.Session, id int64) (io.ReadCloser, store.Upload, filestore.Info, error) {
	rec, err := s.lookup(ctx, sess, id)
	if err != nil {
		return nil, store.Upload{}, filestore.Info{}, err
	}
	rc, info, err := s.files.Open(ctx, rec.FilePath)
	if errors.Is(err, filestore.ErrNotExist) {
		zap.L().Warn("upload bytes missing", zap.Int64("id", id), zap.String("key", rec.FilePath))
		return nil, *rec, filestore.Info{}, ErrFileMissing
	}
	if err != nil {
		return nil, *rec, filestore.Info{}, fmt.Errorf("open upload %d: %w", id, err)
	}
	return rc, *rec, info, nil
}

// Details is the admin popup view of one upload.
type Details struct {
	Upload     store.Upload
	FileSize   string // empty when the object is missing
	UploadedBy string
}

// Details returns metadata plus a human-readable size.
func (s *Service) Details(ctx context.Context, sess auth.Session, id int64) (Details, error) {
	if sess.Role != auth.RoleAdmin {
		return Details{}, apperr.ErrAccessDenied
	}
	rec, err := s.lookup(ctx, sess, id)
	if err != nil {
		return Details{}, err
	}
	d := Details{Upload: *rec, UploadedBy: UploadedBy}
	if info, err := s.files.Stat(ctx, rec.FilePath); err == nil {
		d.FileSize = HumanSize(info.Size)
	}
	return d, nil
}
