package form

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	c, err := NewCSRF(testSecret)
	if err != nil {
		t.Fatalf("NewCSRF: %v", err)
	}
	tok, err := c.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !c.Verify(tok) {
		t.Fatal("fresh token rejected")
	}

	other, _ := NewCSRF([]byte("ffffffffffffffffffffffffffffffff"))
	if other.Verify(tok) {
		t.Fatal("token accepted under a different secret")
	}
	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	if c.Verify(base64.RawURLEncoding.EncodeToString(raw)) {
		t.Fatal("tampered token accepted")
	}
}

func TestTokenExpires(t *testing.T) {
	c, _ := NewCSRF(testSecret)
	issued := time.Now()
	c.now = func() time.Time { return issued }
	tok, _ := c.Token()

	c.now = func() time.Time { return issued.Add(MaxAge + time.Second) }
	if c.Verify(tok) {
		t.Fatal("expired token accepted")
	}
}

func TestShortSecretRejected(t *testing.T) {
	if _, err := NewCSRF([]byte("short")); err == nil {
		t.Fatal("expected error")
	}
}

func TestMiddleware(t *testing.T) {
	c, _ := NewCSRF(testSecret)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := c.Middleware(ok)

	// GET passes untouched.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("GET = %d", rec.Code)
	}

	// POST without token is refused.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("POST no token = %d", rec.Code)
	}

	// POST with form token passes.
	tok, _ := c.Token()
	body := url.Values{FieldName: {tok}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("POST form token = %d", rec.Code)
	}

	// DELETE with header token passes.
	req = httptest.NewRequest(http.MethodDelete, "/x", nil)
	req.Header.Set(HeaderName, tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE header token = %d", rec.Code)
	}
}

func TestMiddlewareReportsOversizedBody(t *testing.T) {
	c, _ := NewCSRF(testSecret)
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached")
	}))

	body := url.Values{"note": {strings.Repeat("x", 4096)}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/district/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 1024)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
}
