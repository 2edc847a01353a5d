// internal/store/store.go
//
// Row types and shared helpers for the three DSR tables.
//
// Context
// -------
// The application persists exactly three tables:
//
//	users                (id PK, username UNIQUE, password_hash, user_type, …)
//	dsr_entry            (id PK, district_name, form_type, date, data JSON, …)
//	control_room_upload  (id PK, date, upload_type, filename, file_path, …)
//
// Repositories accept a *sqlx.DB that may speak either MySQL or PostgreSQL.
// Every statement is written with `?` placeholders and passed through
// Rebind, so the same text runs on both drivers.  Inserts use RETURNING on
// PostgreSQL and LastInsertId on MySQL.
//
// Notes
// -----
// • Timestamps are naive local wall times produced by civil.Clock.
// • Oxford commas, two spaces after periods.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

/*──────────────────────────── row types ────────────────────────────────────*/

// User is one row of users.
type User struct {
	ID                 int64          `db:"id"`
	Username           string         `db:"username"`
	PasswordHash       string         `db:"password_hash"`
	UserType           string         `db:"user_type"`
	DistrictName       sql.NullString `db:"district_name"`
	IsActive           bool           `db:"is_active"`
	CreatedAt          time.Time      `db:"created_at"`
	LastPasswordChange sql.NullTime   `db:"last_password_change"`
}

// Payload is an entry's field values, stored as a JSON object of strings.
type Payload map[string]string

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("payload: cannot scan %T", src)
	}
	out := Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}
	*p = out
	return nil
}

// Entry is one row of dsr_entry.
type Entry struct {
	ID           int64     `db:"id"`
	DistrictName string    `db:"district_name"`
	FormType     string    `db:"form_type"`
	Date         time.Time `db:"date"`
	Data         Payload   `db:"data"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	UserID       int64     `db:"user_id"`
}

// Upload is one row of control_room_upload.
type Upload struct {
	ID               int64     `db:"id"`
	Date             time.Time `db:"date"`
	UploadType       string    `db:"upload_type"`
	Filename         string    `db:"filename"`
	OriginalFilename string    `db:"original_filename"`
	FilePath         string    `db:"file_path"`
	UploadedAt       time.Time `db:"uploaded_at"`
	UserID           int64     `db:"user_id"`
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// insert runs an INSERT and returns the new id on either dialect.
func insert(ctx context.Context, db *sqlx.DB, q string, args ...any) (int64, error) {
	if db.DriverName() == "pgx" || db.DriverName() == "postgres" {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(q+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
