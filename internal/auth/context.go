// internal/auth/context.go
//
// The authenticated session value and its request-context helpers.
//
// Usage
// -----
//     // Session guard, after verifying the cookie.
//     ctx = auth.WithSession(ctx, sess)
//
//     // Handlers read it once and pass it explicitly into services.
//     sess, ok := auth.FromContext(r.Context())
//     err := entries.Submit(ctx, sess, in)
//
// Notes
// -----
// • Services never read the context for identity.  They take Session as a
//   parameter so they can be exercised without an HTTP stack.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"time"
)

// Session is the identity carried by an authenticated request.
type Session struct {
	UserID          int64
	Username        string
	Role            Role
	District        string // empty for admin
	AuthenticatedAt time.Time
	LastActivity    time.Time
}

// sessionKey is unexported to avoid context-key collisions.
type sessionKey struct{}

// WithSession returns a new context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext extracts the Session from ctx.  ok is false when the request
// is anonymous.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// UserID extracts only the user id.  It returns (0, false) when anonymous.
func UserID(ctx context.Context) (int64, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}
