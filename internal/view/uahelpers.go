// internal/view/uahelpers.go
//
// User-Agent template helpers.  They read the *requestinfo.RequestInfo the
// Enrich middleware attached, so the profile page can show where the
// current session is signed in from:
//
//	{{ browser .Client }} {{ browserVersion .Client }} on {{ os .Client }}
package view

import (
	"html/template"

	"github.com/prismappolice/control-room-dsr/internal/requestinfo"
)

// uaFuncMap returns helpers keyed off *requestinfo.RequestInfo.  A nil
// value renders as empty strings.
func uaFuncMap() template.FuncMap {
	ua := func(c *requestinfo.RequestInfo) requestinfo.UA {
		if c == nil {
			return requestinfo.UA{}
		}
		return c.UA
	}
	return template.FuncMap{
		"browser":        func(c *requestinfo.RequestInfo) string { return ua(c).Browser },
		"browserVersion": func(c *requestinfo.RequestInfo) string { return ua(c).Version },
		"os":             func(c *requestinfo.RequestInfo) string { return ua(c).OS },
		"device":         func(c *requestinfo.RequestInfo) string { return ua(c).Device },
		"clientIP": func(c *requestinfo.RequestInfo) string {
			if c == nil || c.Geo.IP == nil {
				return ""
			}
			return c.Geo.IP.String()
		},
	}
}
