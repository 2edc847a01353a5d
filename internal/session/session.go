// internal/session/session.go
//
// Signed session cookie and idle-timeout guard.
//
// Context
//   After a successful login the identity is written to the `dsr_session`
//   cookie as an HS256 JWT signed with the configured secret.  The token
//   carries the user id, username, role, district, the login time, and
//   the time of the last accepted request.  Nothing is stored server-side.
//
//   Guard runs in front of every route.  For a non-exempt path it checks
//   how long the session has been idle.  Past the window, the cookie is
//   cleared and the caller is sent to the public landing page (401 for
//   programmatic callers).  Inside the window, the activity time is
//   re-stamped, the cookie re-issued, and the Session placed on the request
//   context for the role gate and handlers.
//
//   Cookies are browser-session cookies unless Persistent is set, in which
//   case Max-Age equals the idle window.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/metrics"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

const (
	cookieName = "dsr_session"

	// DefaultIdleTimeout is the inactivity window used when none is set.
	DefaultIdleTimeout = 60 * time.Minute

	// ExpiredMessage is flashed when the guard ends an idle session.
	ExpiredMessage = "Your session has expired due to inactivity.  Please log in again."
)

// exemptPrefixes never pass through the idle check.
var exemptPrefixes = []string{"/static/", "/auth/login", "/auth/logout"}

// exemptExact are exempt only as whole paths.
var exemptExact = map[string]bool{"/": true, "/healthz": true, "/metrics": true, "/favicon.ico": true}

// Options configures a Manager.
type Options struct {
	Secret      []byte        // HMAC key, at least 32 bytes
	IdleTimeout time.Duration // zero selects DefaultIdleTimeout
	Persistent  bool          // give the cookie a Max-Age equal to IdleTimeout
	Secure      bool          // set the Secure attribute on cookies
	Now         func() time.Time
}

// Manager issues, reads, and guards session cookies.
type Manager struct {
	secret     []byte
	idle       time.Duration
	persistent bool
	secure     bool
	now        func() time.Time
}

// NewManager validates opts and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	if len(opts.Secret) < 32 {
		return nil, errors.New("session: secret shorter than 32 bytes")
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		secret:     opts.Secret,
		idle:       opts.IdleTimeout,
		persistent: opts.Persistent,
		secure:     opts.Secure,
		now:        opts.Now,
	}, nil
}

// IdleTimeout returns the configured inactivity window.
func (m *Manager) IdleTimeout() time.Duration { return m.idle }

/*──────────────────────────── token ────────────────────────────────────────*/

type claims struct {
	UserID       int64  `json:"uid"`
	Username     string `json:"usr"`
	Role         string `json:"role"`
	District     string `json:"dst,omitempty"`
	AuthAt       int64  `json:"auth_at"`
	LastActivity int64  `json:"last"`
	jwt.RegisteredClaims
}

func (m *Manager) sign(s auth.Session) (string, error) {
	c := claims{
		UserID:       s.UserID,
		Username:     s.Username,
		Role:         string(s.Role),
		District:     s.District,
		AuthAt:       s.AuthenticatedAt.Unix(),
		LastActivity: s.LastActivity.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  fmt.Sprint(s.UserID),
			IssuedAt: jwt.NewNumericDate(m.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *Manager) parse(tok string) (auth.Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tok, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return auth.Session{}, err
	}
	role, ok := auth.ParseRole(c.Role)
	if !ok || c.UserID == 0 {
		return auth.Session{}, errors.New("session: malformed claims")
	}
	return auth.Session{
		UserID:          c.UserID,
		Username:        c.Username,
		Role:            role,
		District:        c.District,
		AuthenticatedAt: time.Unix(c.AuthAt, 0),
		LastActivity:    time.Unix(c.LastActivity, 0),
	}, nil
}

/*──────────────────────────── cookie I/O ───────────────────────────────────*/

// Issue writes s to the session cookie.  A zero LastActivity is stamped
// with the current time.
func (m *Manager) Issue(w http.ResponseWriter, s auth.Session) error {
	if s.LastActivity.IsZero() {
		s.LastActivity = m.now()
	}
	if s.AuthenticatedAt.IsZero() {
		s.AuthenticatedAt = s.LastActivity
	}
	tok, err := m.sign(s)
	if err != nil {
		return err
	}
	c := &http.Cookie{
		Name:     cookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.persistent {
		c.MaxAge = int(m.idle.Seconds())
	}
	http.SetCookie(w, c)
	return nil
}

// Clear removes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the verified session from r without touching activity.
func (m *Manager) Read(r *http.Request) (auth.Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return auth.Session{}, false
	}
	s, err := m.parse(c.Value)
	if err != nil {
		zap.L().Debug("session cookie rejected", zap.Error(err))
		return auth.Session{}, false
	}
	return s, true
}

// Expired reports whether s has been idle longer than the window at now.
func (m *Manager) Expired(s auth.Session, now time.Time) bool {
	return now.Sub(s.LastActivity) > m.idle
}

// Current returns the caller's session when it is valid and still inside
// the idle window.  Exempt pages use it since Guard attaches nothing there.
func (m *Manager) Current(r *http.Request) (auth.Session, bool) {
	s, ok := m.Read(r)
	if !ok || m.Expired(s, m.now()) {
		return auth.Session{}, false
	}
	return s, true
}

/*──────────────────────────── middleware ───────────────────────────────────*/

// Exempt reports whether path skips the idle check.
func Exempt(path string) bool {
	if exemptExact[path] {
		return true
	}
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Guard enforces the idle timeout and attaches the Session to the context.
func (m *Manager) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		s, ok := m.Read(r)
		if !ok {
			next.ServeHTTP(w, r) // anonymous; the role gate decides
			return
		}

		now := m.now()
		if m.Expired(s, now) {
			m.Clear(w)
			metrics.SessionExpiredTotal.Inc()
			zap.L().Info("session expired",
				zap.String("user", s.Username),
				zap.Duration("idle", now.Sub(s.LastActivity)))
			if respond.WantsJSON(r) {
				respond.JSON(w, http.StatusUnauthorized, map[string]any{
					"success": false,
					"message": "Session expired",
					"error":   "Session expired",
				})
				return
			}
			respond.Redirect(w, r, "/", message.Info, ExpiredMessage)
			return
		}

		s.LastActivity = now
		if err := m.Issue(w, s); err != nil {
			zap.L().Error("session reissue", zap.Error(err))
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
	})
}
