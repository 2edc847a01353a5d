// internal/form/csrf.go
//
// DSR forms subsystem: stateless CSRF tokens.
//
// Context
//   Every page with a POST form embeds a hidden `csrf_token` input, and the
//   JavaScript helpers send the same token in the X-CSRF-Token header for
//   AJAX saves and deletes.  The token is stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – keyed with the session secret from configuration.
//
//   Verification checks the signature and that the token is younger than
//   MaxAge.  No server-side state is kept, so restarts and multiple
//   instances behind a balancer need nothing extra.
//
// Workflow
//   •  NewCSRF(secret)          → *CSRF for the process.
//   •  (*CSRF).Token()          → token string for the renderer.
//   •  (*CSRF).Verify(tok)      → constant-time verify; false on any failure.
//   •  (*CSRF).Middleware       → rejects unsafe requests without a valid token.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/respond"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig

	// MaxAge is the token validity window.
	MaxAge = 2 * time.Hour

	// FieldName is the hidden input carrying the token.
	FieldName = "csrf_token"
	// HeaderName carries the token for AJAX callers.
	HeaderName = "X-CSRF-Token"

	multipartMemory = 8 << 20
)

// CSRF issues and verifies tokens under one secret.
type CSRF struct {
	secret []byte
	now    func() time.Time
}

// NewCSRF returns a token issuer.  The secret must be at least 32 bytes.
func NewCSRF(secret []byte) (*CSRF, error) {
	if len(secret) < 32 {
		return nil, errors.New("csrf: secret shorter than 32 bytes")
	}
	return &CSRF{secret: secret, now: time.Now}, nil
}

// Token creates a new CSRF token.  Call once per page render.
func (c *CSRF) Token() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok passes HMAC and age checks.
func (c *CSRF) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Older than MaxAge, or from the future beyond clock skew.
		return false
	}

	return hmac.Equal(sig, c.sign(nonce, tsBytes))
}

// Middleware rejects POST, PUT, PATCH, and DELETE requests that carry no
// valid token in the header or the form body.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		tok := r.Header.Get(HeaderName)
		if tok == "" {
			// The body limit surfaces here first, since this is where an
			// oversized upload gets read.
			err := r.ParseMultipartForm(multipartMemory)
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				respond.Fail(w, r, apperr.ErrTooLarge, r.URL.Path)
				return
			}
			tok = r.FormValue(FieldName)
		}
		if tok == "" || !c.Verify(tok) {
			zap.L().Warn("csrf rejected", zap.String("path", r.URL.Path), zap.String("method", r.Method))
			http.Error(w, "Security token invalid.  Please refresh and try again.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *CSRF) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
