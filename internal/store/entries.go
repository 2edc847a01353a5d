package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

const entryColumns = `id, district_name, form_type, date, data, created_at, updated_at, user_id`

// Entries reads and writes dsr_entry.  Every district-facing method takes
// the district and form type as part of the key, so a caller cannot reach
// another district's rows by id alone.
type Entries struct{ db *sqlx.DB }

// NewEntries binds an Entries repository to db.
func NewEntries(db *sqlx.DB) *Entries { return &Entries{db: db} }

// Insert stores a new entry and sets e.ID.
func (s *Entries) Insert(ctx context.Context, e *Entry) (int64, error) {
	const q = `INSERT INTO dsr_entry (district_name, form_type, date, data, created_at, updated_at, user_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := insert(ctx, s.db, q,
		e.DistrictName, e.FormType, e.Date, e.Data, e.CreatedAt, e.UpdatedAt, e.UserID)
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// UpdateScoped overwrites data and updated_at of the entry matching all of
// id, district, and form type.  It reports false when nothing matched.
func (s *Entries) UpdateScoped(ctx context.Context, id int64, district, formType string, data Payload, updatedAt time.Time) (bool, error) {
	const q = `UPDATE dsr_entry SET data = ?, updated_at = ?
	            WHERE id = ? AND district_name = ? AND form_type = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), data, updatedAt, id, district, formType)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetScoped returns the entry matching id, district, and form type.
func (s *Entries) GetScoped(ctx context.Context, id int64, district, formType string) (*Entry, error) {
	var out Entry
	q := `SELECT ` + entryColumns + ` FROM dsr_entry WHERE id = ? AND district_name = ? AND form_type = ?`
	if err := s.db.GetContext(ctx, &out, s.db.Rebind(q), id, district, formType); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// DeleteScoped removes the entry matching id, district, and form type.
func (s *Entries) DeleteScoped(ctx context.Context, id int64, district, formType string) (bool, error) {
	const q = `DELETE FROM dsr_entry WHERE id = ? AND district_name = ? AND form_type = ?`
	res, err := s.db.ExecContext(ctx, s.db.Rebind(q), id, district, formType)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListForDay returns a district's entries of one form for one date, newest
// created first.
func (s *Entries) ListForDay(ctx context.Context, district, formType string, date time.Time) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry
	       WHERE district_name = ? AND form_type = ? AND date = ?
	       ORDER BY created_at DESC, id DESC`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), district, formType, date)
	return out, err
}

// RecentByDistrict returns the district's most recently updated entries.
func (s *Entries) RecentByDistrict(ctx context.Context, district string, limit int) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry
	       WHERE district_name = ?
	       ORDER BY updated_at DESC, id DESC LIMIT ?`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), district, limit)
	return out, err
}

// Recent returns the most recently updated entries across all districts.
func (s *Entries) Recent(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry ORDER BY updated_at DESC, id DESC LIMIT ?`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), limit)
	return out, err
}

// ByDistrict returns every entry of one district, newest date first.
func (s *Entries) ByDistrict(ctx context.Context, district string) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry
	       WHERE district_name = ?
	       ORDER BY date DESC, created_at DESC, id DESC`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), district)
	return out, err
}

// ByForm returns every entry of one form, optionally limited to one date.
func (s *Entries) ByForm(ctx context.Context, formType string, date *time.Time) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry WHERE form_type = ?`
	args := []any{formType}
	if date != nil {
		q += ` AND date = ?`
		args = append(args, *date)
	}
	q += ` ORDER BY date DESC, district_name, id`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), args...)
	return out, err
}

// ByDateAndDistrict returns every form's entries for one district and day.
func (s *Entries) ByDateAndDistrict(ctx context.Context, date time.Time, district string) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM dsr_entry
	       WHERE date = ? AND district_name = ?
	       ORDER BY form_type, created_at, id`
	var out []Entry
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), date, district)
	return out, err
}

// CountOnDate returns how many entries were filed for date.
func (s *Entries) CountOnDate(ctx context.Context, date time.Time) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM dsr_entry WHERE date = ?`), date)
	return n, err
}
