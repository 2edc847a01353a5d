// internal/requestinfo/requestinfo.go
//
// Lightweight types and helpers that collect per-request metadata
// (user-agent fingerprint, IP + geolocation, URL, and timestamp).
//
// Context
// -------
// Officers log in from district offices, control rooms, and the odd
// phone.  The access log records which browser and which address each
// request came from so an admin can answer "who filed this, from where"
// without a separate audit table.  These structs are inert.  They hold no
// database handles or large buffers, so they are safe to log or
// JSON-encode.
//
// Dependencies
// ------------
//   • github.com/avct/uasurfer          (UA parsing)
//   • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.
package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
)

/*──────────────────────────── types ────────────────────────────────────────*/

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string // Entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "MacOSX", "Windows", "Android", "iOS", etc.
	OSVersion   string // "14.5", "11", "10"
	Device      string // "Desktop", "Phone", "Tablet", ...
	Platform    string // "Mac", "Windows", "Linux", "iPad", ...
	IsBot       bool
	PrimaryLang string // First tag from Accept-Language ("en", "te", ...)
}

// Geo holds IP-based geolocation hints.  These are best-effort and may be
// empty if no database is loaded or it has no match.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // Pointer copy, safe to dereference read-only
	Timestamp time.Time
}

/*──────────────────────────── geo database ─────────────────────────────────*/

// geoReader is the optional MaxMind handle.  Safe for concurrent reads.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database.  Geo lookups stay empty until
// it succeeds.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the database opened by InitGeo.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		_ = r.Close()
	}
}

// lookupGeo returns best-effort Geo data.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil || ip.IsLoopback() || ip.IsPrivate() {
		return Geo{IP: ip}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

/*──────────────────────────── context ──────────────────────────────────────*/

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich, or nil if
// the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}
