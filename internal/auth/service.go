// internal/auth/service.go
//
// Credential checks and self-service password change.
//
// Context
// -------
// Authenticate looks an account up by the pair (username, claimed role).
// The role is part of the key: a valid district username and password
// submitted with the admin role finds no row and fails exactly like a wrong
// password.  Every failure returns ErrInvalidCredentials so the login page
// cannot be used to probe which usernames exist.
//
// Notes
// -----
// • A miss on the lookup still spends one bcrypt comparison.
// • is_active is stored but not consulted here; deactivation is a manual
//   database operation in the current deployment.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// Errors surfaced to users.
var (
	ErrInvalidCredentials = apperr.New(apperr.Unauthenticated, "Invalid credentials")
	ErrCurrentPassword    = apperr.New(apperr.Invalid, "Current password is incorrect")
	ErrPasswordTooShort   = apperr.New(apperr.Invalid, fmt.Sprintf("New password must be at least %d characters long", MinPasswordLen))
	ErrPasswordMismatch   = apperr.New(apperr.Invalid, "New password and confirmation do not match")
)

// UserStore is the subset of store.Users the service needs.
type UserStore interface {
	ByUsernameAndType(ctx context.Context, username, userType string) (*store.User, error)
	ByID(ctx context.Context, id int64) (*store.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error
}

// Service authenticates accounts.
type Service struct {
	users UserStore
	clock *civil.Clock
}

// NewService wires a Service.
func NewService(users UserStore, clock *civil.Clock) *Service {
	return &Service{users: users, clock: clock}
}

// Authenticate verifies username and password for the claimed role and
// returns a fresh Session.  Its timestamps are left zero for the session
// manager to stamp from the clock it measures idle time with.
func (s *Service) Authenticate(ctx context.Context, username, password, claimedRole string) (Session, error) {
	role, ok := ParseRole(claimedRole)
	label := string(role)
	if !ok {
		label = "unknown"
	}

	if !ok || username == "" || password == "" {
		burnCompare(password)
		metrics.LoginTotal.WithLabelValues(label, "rejected").Inc()
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.ByUsernameAndType(ctx, username, string(role))
	switch {
	case errors.Is(err, store.ErrNotFound):
		burnCompare(password)
		metrics.LoginTotal.WithLabelValues(label, "rejected").Inc()
		return Session{}, ErrInvalidCredentials
	case err != nil:
		metrics.LoginTotal.WithLabelValues(label, "error").Inc()
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		metrics.LoginTotal.WithLabelValues(label, "rejected").Inc()
		return Session{}, ErrInvalidCredentials
	}

	metrics.LoginTotal.WithLabelValues(label, "ok").Inc()
	zap.L().Info("login", zap.String("user", u.Username), zap.String("role", label))
	return Session{
		UserID:   u.ID,
		Username: u.Username,
		Role:     role,
		District: u.DistrictName.String,
	}, nil
}

// Profile returns the stored account behind sess.
func (s *Service) Profile(ctx context.Context, sess Session) (*store.User, error) {
	u, err := s.users.ByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrLoginNeeded
	}
	return u, err
}

// ChangePassword replaces the session user's password after checking the
// current one.  Rules are checked in the order users see messages for them.
func (s *Service) ChangePassword(ctx context.Context, sess Session, current, next, confirm string) error {
	u, err := s.Profile(ctx, sess)
	if err != nil {
		return err
	}
	if !CheckPassword(u.PasswordHash, current) {
		return ErrCurrentPassword
	}
	if len(next) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if next != confirm {
		return ErrPasswordMismatch
	}

	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, s.clock.Now()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	zap.L().Info("password changed", zap.String("user", u.Username))
	return nil
}
