// internal/report/report.go
//
// Admin read views over every district's entries.
//
// Context
// -------
// Admins never write entries.  They browse them three ways (by district,
// by form, and by one district on one day) and can download a day's
// filing for a district as a PDF.  The dashboard adds a few headline
// counts and the most recent activity.
//
// Notes
// -----
// • Every operation re-checks the admin role, even behind the route gate.
// • Dates follow the strict YYYY-MM-DD rule.  A malformed date is an
//   error, never an empty result.
// • Oxford commas, two spaces after periods.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// Dashboard list sizes.
const (
	RecentEntries = 10
	RecentUploads = 5
)

// Errors surfaced to users.
var (
	ErrInvalidFormType = apperr.New(apperr.Invalid, "Invalid form type")
	ErrDateAndDistrict = apperr.New(apperr.Invalid, "Date and district required")
	ErrNoData          = apperr.New(apperr.NotFound, "No data found for the selected date")
)

// Entries is the read side of store.Entries.
type Entries interface {
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
	ByDistrict(ctx context.Context, district string) ([]store.Entry, error)
	ByForm(ctx context.Context, formType string, date *time.Time) ([]store.Entry, error)
	ByDateAndDistrict(ctx context.Context, date time.Time, district string) ([]store.Entry, error)
	CountOnDate(ctx context.Context, date time.Time) (int, error)
}

// Uploads is the read side of store.Uploads.
type Uploads interface {
	List(ctx context.Context, q store.UploadQuery) ([]store.Upload, error)
}

// Service implements the admin views.
type Service struct {
	entries Entries
	uploads Uploads
	forms   *form.Registry
	clock   *civil.Clock
}

// NewService wires a Service.
func NewService(entries Entries, uploads Uploads, forms *form.Registry, clock *civil.Clock) *Service {
	return &Service{entries: entries, uploads: uploads, forms: forms, clock: clock}
}

func admin(sess auth.Session) error {
	if sess.Role != auth.RoleAdmin {
		return apperr.ErrAccessDenied
	}
	return nil
}

/*──────────────────────────── dashboard ────────────────────────────────────*/

// Stats are the dashboard headline numbers.
type Stats struct {
	TotalDistricts int
	TotalForms     int
	TodayEntries   int
}

// Overview is everything the admin dashboard shows.
type Overview struct {
	Stats         Stats
	RecentEntries []store.Entry
	RecentUploads []store.Upload
}

// Dashboard gathers the headline counts and recent activity.
func (s *Service) Dashboard(ctx context.Context, sess auth.Session) (Overview, error) {
	if err := admin(sess); err != nil {
		return Overview{}, err
	}
	recent, err := s.entries.Recent(ctx, RecentEntries)
	if err != nil {
		return Overview{}, fmt.Errorf("recent entries: %w", err)
	}
	ups, err := s.uploads.List(ctx, store.UploadQuery{Limit: RecentUploads})
	if err != nil {
		return Overview{}, fmt.Errorf("recent uploads: %w", err)
	}
	today, err := s.entries.CountOnDate(ctx, s.clock.Today())
	if err != nil {
		return Overview{}, fmt.Errorf("count today: %w", err)
	}
	return Overview{
		Stats: Stats{
			TotalDistricts: len(s.forms.Districts()),
			TotalForms:     len(s.forms.Forms()),
			TodayEntries:   today,
		},
		RecentEntries: recent,
		RecentUploads: ups,
	}, nil
}

/*──────────────────────────── views ────────────────────────────────────────*/

// DateGroup is one day's entries for a district.
type DateGroup struct {
	Date    string
	Entries []store.Entry
}

// ListByDistrict returns the district's entries grouped by date, newest
// date first.
func (s *Service) ListByDistrict(ctx context.Context, sess auth.Session, district string) ([]DateGroup, error) {
	if err := admin(sess); err != nil {
		return nil, err
	}
	rows, err := s.entries.ByDistrict(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("entries for %s: %w", district, err)
	}
	var out []DateGroup
	for _, e := range rows {
		day := civil.FormatDate(e.Date)
		if n := len(out); n > 0 && out[n-1].Date == day {
			out[n-1].Entries = append(out[n-1].Entries, e)
			continue
		}
		out = append(out, DateGroup{Date: day, Entries: []store.Entry{e}})
	}
	return out, nil
}

// FormRow is one entry in a per-form listing.
type FormRow struct {
	ID       int64
	District string
	Date     time.Time
	Data     store.Payload
}

// ListByForm returns every entry of formType, optionally for one date.
func (s *Service) ListByForm(ctx context.Context, sess auth.Session, formType, date string) (*form.FormDef, []FormRow, error) {
	if err := admin(sess); err != nil {
		return nil, nil, err
	}
	fd, ok := s.forms.Form(formType)
	if !ok {
		return nil, nil, ErrInvalidFormType
	}
	var day *time.Time
	if date != "" {
		d, err := civil.ParseDate(date)
		if err != nil {
			return nil, nil, apperr.ErrBadDate
		}
		day = &d
	}
	rows, err := s.entries.ByForm(ctx, formType, day)
	if err != nil {
		return nil, nil, fmt.Errorf("entries for form %s: %w", formType, err)
	}
	out := make([]FormRow, 0, len(rows))
	for _, e := range rows {
		out = append(out, FormRow{ID: e.ID, District: e.DistrictName, Date: e.Date, Data: e.Data})
	}
	return fd, out, nil
}

// SearchItem is one result of Search, shaped for JSON callers.
type SearchItem struct {
	FormType string        `json:"form_type"`
	FormName string        `json:"form_name"`
	Data     store.Payload `json:"data"`
	ID       int64         `json:"id"`
}

// Search returns every form's entries for one district on one day.
func (s *Service) Search(ctx context.Context, sess auth.Session, date, district string) ([]SearchItem, error) {
	if err := admin(sess); err != nil {
		return nil, err
	}
	if date == "" || district == "" {
		return nil, ErrDateAndDistrict
	}
	day, err := civil.ParseDate(date)
	if err != nil {
		return nil, apperr.ErrBadDate
	}
	rows, err := s.entries.ByDateAndDistrict(ctx, day, district)
	if err != nil {
		return nil, fmt.Errorf("search %s %s: %w", district, date, err)
	}
	out := make([]SearchItem, 0, len(rows))
	for _, e := range rows {
		out = append(out, SearchItem{
			FormType: e.FormType,
			FormName: s.forms.FormName(e.FormType),
			Data:     e.Data,
			ID:       e.ID,
		})
	}
	return out, nil
}
