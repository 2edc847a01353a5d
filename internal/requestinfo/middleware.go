// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
District offices and the control room reach the server over the state
network, usually through a reverse proxy on the same LAN.  Enrich runs
ahead of the session guard and the access log, so both can name the
officer's browser and address without parsing headers again.

Client address
--------------
Forwarding headers are only believed when the direct peer is itself a
loopback or private address, which is where the proxy sits.  X-Forwarded-For
is then walked right to left and the first public hop wins, so a client
cannot push a fake address in front of the proxy's own entry.  X-Real-IP
is the fallback, then the peer address.

Notes
-----
  • Geo lookups happen only when a GeoLite2 database was loaded.
  • Bots are logged at debug level; nothing else is.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich attaches a *RequestInfo to the request context.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		info := &RequestInfo{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(ip),
			URL:       r.URL,
			Timestamp: time.Now().UTC(),
		}
		if info.UA.IsBot {
			zap.L().Debug("bot request",
				zap.Stringer("ip", ip),
				zap.String("path", r.URL.Path),
				zap.String("agent", r.UserAgent()))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, info)))
	})
}

/*──────────────────────────── client address ───────────────────────────────*/

// clientIP returns the address of the officer's machine as described in
// the header comment.
func clientIP(r *http.Request) net.IP {
	peer := peerIP(r.RemoteAddr)
	if peer != nil && !internal(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		var last net.IP
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				continue
			}
			if !internal(ip) {
				return ip
			}
			last = ip
		}
		if last != nil {
			return last
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip
	}
	return peer
}

func peerIP(remote string) net.IP {
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(remote)
}

// internal reports addresses that belong to the proxy side of the network.
func internal(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
