// internal/entry/entry.go
//
// District DSR entries: submit, list, fetch for edit, and delete.
//
// Context
// -------
// A district files any number of entries per form per day.  Submit decides
// between insert and update purely on whether the caller names an entry id:
//
//   • no id      → always a new row, even for an identical district, form,
//                  and date.
//   • id present → update only the row whose id, district, and form type
//                  all match the session; otherwise ErrEntryNotFound and
//                  nothing is written.
//
// Every read and write is keyed by the session's district, never by user
// id, so colleagues in one district share and can correct each other's
// entries while other districts cannot see them at all.
//
// Notes
// -----
// • Concurrent updates to one id are last-write-wins.  There is no version
//   column.
// • Oxford commas, two spaces after periods.
package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// Errors surfaced to users.
var (
	ErrInvalidFormType = apperr.New(apperr.Invalid, "Invalid form type")
	ErrDateRequired    = apperr.New(apperr.Invalid, "Date is required")
	ErrEntryNotFound   = apperr.New(apperr.NotFound, "Entry not found")
	ErrNoDistrict      = apperr.New(apperr.Forbidden, "Your account is not linked to a district")
)

// Repository is the subset of store.Entries the service needs.
type Repository interface {
	Insert(ctx context.Context, e *store.Entry) (int64, error)
	UpdateScoped(ctx context.Context, id int64, district, formType string, data store.Payload, updatedAt time.Time) (bool, error)
	GetScoped(ctx context.Context, id int64, district, formType string) (*store.Entry, error)
	DeleteScoped(ctx context.Context, id int64, district, formType string) (bool, error)
	ListForDay(ctx context.Context, district, formType string, date time.Time) ([]store.Entry, error)
	RecentByDistrict(ctx context.Context, district string, limit int) ([]store.Entry, error)
}

// SubmitInput is one posted form.
type SubmitInput struct {
	FormType string
	Date     string            // YYYY-MM-DD, mandatory
	Values   map[string]string // raw posted values
	EntryID  int64             // zero means insert
}

// Result reports what Submit did.
type Result struct {
	Entry   store.Entry
	Created bool
}

// Message is the flash text for a page caller.
func (r Result) Message() string {
	if r.Created {
		return "New entry added successfully"
	}
	return "Entry updated successfully"
}

// Service implements the entry operations.
type Service struct {
	repo  Repository
	forms *form.Registry
	clock *civil.Clock
}

// NewService wires a Service.
func NewService(repo Repository, forms *form.Registry, clock *civil.Clock) *Service {
	return &Service{repo: repo, forms: forms, clock: clock}
}

// scope checks the caller is a district user and resolves the form.
func (s *Service) scope(sess auth.Session, formType string) (*form.FormDef, error) {
	if sess.Role != auth.RoleDistrict {
		return nil, apperr.ErrAccessDenied
	}
	if sess.District == "" {
		return nil, ErrNoDistrict
	}
	fd, ok := s.forms.Form(formType)
	if !ok {
		return nil, ErrInvalidFormType
	}
	return fd, nil
}

// Submit validates in and inserts or updates one entry.
func (s *Service) Submit(ctx context.Context, sess auth.Session, in SubmitInput) (Result, error) {
	fd, err := s.scope(sess, in.FormType)
	if err != nil {
		return Result{}, err
	}
	if in.Date == "" {
		return Result{}, ErrDateRequired
	}
	day, err := civil.ParseDate(in.Date)
	if err != nil {
		return Result{}, apperr.ErrBadDate
	}

	data := store.Payload(fd.Collect(in.Values))
	now := s.clock.Now()

	if in.EntryID != 0 {
		ok, err := s.repo.UpdateScoped(ctx, in.EntryID, sess.District, fd.Key, data, now)
		if err != nil {
			return Result{}, fmt.Errorf("update entry %d: %w", in.EntryID, err)
		}
		if !ok {
			return Result{}, ErrEntryNotFound
		}
		metrics.EntryMutationsTotal.WithLabelValues("update").Inc()
		zap.L().Info("entry updated",
			zap.Int64("id", in.EntryID),
			zap.String("district", sess.District),
			zap.String("form", fd.Key))
		return Result{Entry: store.Entry{
			ID: in.EntryID, DistrictName: sess.District, FormType: fd.Key,
			Data: data, UpdatedAt: now, UserID: sess.UserID,
		}}, nil
	}

	e := store.Entry{
		DistrictName: sess.District,
		FormType:     fd.Key,
		Date:         day,
		Data:         data,
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       sess.UserID,
	}
	if _, err := s.repo.Insert(ctx, &e); err != nil {
		return Result{}, fmt.Errorf("insert entry: %w", err)
	}
	metrics.EntryMutationsTotal.WithLabelValues("create").Inc()
	zap.L().Info("entry created",
		zap.Int64("id", e.ID),
		zap.String("district", sess.District),
		zap.String("form", fd.Key),
		zap.String("date", in.Date))
	return Result{Entry: e, Created: true}, nil
}

// ListToday returns today's entries of one form for the session district,
// newest created first.
func (s *Service) ListToday(ctx context.Context, sess auth.Session, formType string) ([]store.Entry, error) {
	fd, err := s.scope(sess, formType)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForDay(ctx, sess.District, fd.Key, s.clock.Today())
}

// FetchForEdit returns one entry's stored values.  Entries of another
// district or form are reported as not found.
func (s *Service) FetchForEdit(ctx context.Context, sess auth.Session, formType string, id int64) (store.Payload, error) {
	fd, err := s.scope(sess, formType)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.GetScoped(ctx, id, sess.District, fd.Key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e.Data, nil
}

// Delete removes one entry under the same scoping as FetchForEdit.
func (s *Service) Delete(ctx context.Context, sess auth.Session, formType string, id int64) error {
	fd, err := s.scope(sess, formType)
	if err != nil {
		return err
	}
	ok, err := s.repo.DeleteScoped(ctx, id, sess.District, fd.Key)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if !ok {
		return ErrEntryNotFound
	}
	metrics.EntryMutationsTotal.WithLabelValues("delete").Inc()
	zap.L().Info("entry deleted",
		zap.Int64("id", id),
		zap.String("district", sess.District),
		zap.String("form", fd.Key))
	return nil
}

// Recent returns the district's most recently updated entries for the
// dashboard.
func (s *Service) Recent(ctx context.Context, sess auth.Session, limit int) ([]store.Entry, error) {
	if sess.Role != auth.RoleDistrict {
		return nil, apperr.ErrAccessDenied
	}
	return s.repo.RecentByDistrict(ctx, sess.District, limit)
}
