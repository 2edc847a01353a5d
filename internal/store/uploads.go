package store

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const uploadColumns = `id, date, upload_type, filename, original_filename, file_path, uploaded_at, user_id`

// UploadQuery filters control_room_upload.  Zero fields do not filter.
type UploadQuery struct {
	Date       *time.Time
	UploadType string
	UserID     int64 // owner restriction; 0 means any owner
	Limit      int   // 0 means no limit
	Offset     int
}

func (q UploadQuery) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Date != nil {
		conds = append(conds, "date = ?")
		args = append(args, *q.Date)
	}
	if q.UploadType != "" {
		conds = append(conds, "upload_type = ?")
		args = append(args, q.UploadType)
	}
	if q.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, q.UserID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Uploads reads and writes control_room_upload.  Rows are append-only.
type Uploads struct{ db *sqlx.DB }

// NewUploads binds an Uploads repository to db.
func NewUploads(db *sqlx.DB) *Uploads { return &Uploads{db: db} }

// Insert stores upload metadata and sets u.ID.
func (s *Uploads) Insert(ctx context.Context, u *Upload) (int64, error) {
	const q = `INSERT INTO control_room_upload (date, upload_type, filename, original_filename, file_path, uploaded_at, user_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := insert(ctx, s.db, q,
		u.Date, u.UploadType, u.Filename, u.OriginalFilename, u.FilePath, u.UploadedAt, u.UserID)
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// ByID returns the upload with id.
func (s *Uploads) ByID(ctx context.Context, id int64) (*Upload, error) {
	var out Upload
	q := `SELECT ` + uploadColumns + ` FROM control_room_upload WHERE id = ?`
	if err := s.db.GetContext(ctx, &out, s.db.Rebind(q), id); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// List returns uploads matching q, newest uploaded first.
func (s *Uploads) List(ctx context.Context, q UploadQuery) ([]Upload, error) {
	where, args := q.where()
	sqlText := `SELECT ` + uploadColumns + ` FROM control_room_upload` + where +
		` ORDER BY uploaded_at DESC, id DESC`
	if q.Limit > 0 {
		sqlText += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}
	var out []Upload
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(sqlText), args...)
	return out, err
}

// Count returns how many uploads match q.  Limit and Offset are ignored.
func (s *Uploads) Count(ctx context.Context, q UploadQuery) (int, error) {
	where, args := q.where()
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM control_room_upload`+where), args...)
	return n, err
}
