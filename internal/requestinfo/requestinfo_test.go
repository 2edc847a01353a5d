package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.6367.91 Safari/537.36"

func TestParseUA(t *testing.T) {
	ua := parseUA(chromeMac, "te-IN,te;q=0.9,en;q=0.8")
	if ua.Browser != "Chrome" {
		t.Errorf("Browser = %q", ua.Browser)
	}
	if ua.Version != "124.0.6367" {
		t.Errorf("Version = %q", ua.Version)
	}
	if ua.Device != "Desktop" {
		t.Errorf("Device = %q", ua.Device)
	}
	if ua.IsBot {
		t.Error("Chrome flagged as bot")
	}
	if ua.PrimaryLang != "te-in" {
		t.Errorf("PrimaryLang = %q", ua.PrimaryLang)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:51234"
	if got := clientIP(r).String(); got != "10.0.0.5" {
		t.Fatalf("RemoteAddr: %s", got)
	}

	r.Header.Set("X-Real-IP", "49.205.1.1")
	if got := clientIP(r).String(); got != "49.205.1.1" {
		t.Fatalf("X-Real-IP: %s", got)
	}

	r.Header.Set("X-Forwarded-For", "garbage, 103.21.4.9, 10.0.0.1")
	if got := clientIP(r).String(); got != "103.21.4.9" {
		t.Fatalf("X-Forwarded-For: %s", got)
	}

	// A public peer is not a proxy, so its headers are ignored.
	r.RemoteAddr = "49.205.7.7:40000"
	if got := clientIP(r).String(); got != "49.205.7.7" {
		t.Fatalf("public peer: %s", got)
	}
}

func TestEnrichAttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/district/dashboard", nil)
	r.Header.Set("User-Agent", chromeMac)
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil || got.UA.Browser != "Chrome" || got.URL.Path != "/district/dashboard" {
		t.Fatalf("info = %#v", got)
	}
	if got.Geo.CountryISO != "" {
		t.Fatalf("geo lookup without a database: %#v", got.Geo)
	}
}

func TestInitGeoMissingFile(t *testing.T) {
	if err := InitGeo(t.TempDir() + "/missing.mmdb"); err == nil {
		t.Fatal("expected error")
	}
}
