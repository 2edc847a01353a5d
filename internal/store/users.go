package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, password_hash, user_type, district_name, is_active, created_at, last_password_change`

// Users reads and writes the users table.
type Users struct{ db *sqlx.DB }

// NewUsers binds a Users repository to db.
func NewUsers(db *sqlx.DB) *Users { return &Users{db: db} }

// ByUsernameAndType returns the account matching both username and role.
func (u *Users) ByUsernameAndType(ctx context.Context, username, userType string) (*User, error) {
	var out User
	q := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND user_type = ?`
	if err := u.db.GetContext(ctx, &out, u.db.Rebind(q), username, userType); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// ByUsername returns the account with username regardless of role.
func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	var out User
	q := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	if err := u.db.GetContext(ctx, &out, u.db.Rebind(q), username); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// ByID returns the account with id.
func (u *Users) ByID(ctx context.Context, id int64) (*User, error) {
	var out User
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	if err := u.db.GetContext(ctx, &out, u.db.Rebind(q), id); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// Create inserts a new account and returns its id.
func (u *Users) Create(ctx context.Context, usr *User) (int64, error) {
	const q = `INSERT INTO users (username, password_hash, user_type, district_name, is_active, created_at, last_password_change)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := insert(ctx, u.db, q,
		usr.Username, usr.PasswordHash, usr.UserType, usr.DistrictName,
		usr.IsActive, usr.CreatedAt, usr.LastPasswordChange)
	if err != nil {
		return 0, err
	}
	usr.ID = id
	return id, nil
}

// UpdatePassword replaces the stored hash and stamps the change time.
func (u *Users) UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error {
	const q = `UPDATE users SET password_hash = ?, last_password_change = ? WHERE id = ?`
	res, err := u.db.ExecContext(ctx, u.db.Rebind(q), hash, sql.NullTime{Time: changedAt, Valid: true}, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
