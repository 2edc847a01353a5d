package view

import (
	"html/template"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
)

// Display layouts.  Dates in tables follow the dd-mm-yyyy habit of the
// users; form inputs keep ISO dates.
const (
	displayDate     = "02-01-2006"
	displayDateTime = "02-01-2006 15:04"
)

// buildFuncMap returns the helpers every page may call.
func buildFuncMap(forms *form.Registry) template.FuncMap {
	fm := template.FuncMap{
		"dict":          dict,
		"isoDate":       civil.FormatDate,
		"showDate":      func(t time.Time) string { return t.Format(displayDate) },
		"showDateTime":  func(t time.Time) string { return t.Format(displayDateTime) },
		"formName":      forms.FormName,
		"uploadLabel":   uploadLabel(forms),
		"field":         field,
		"humanSize":     upload.HumanSize,
		"add":           func(a, b int) int { return a + b },
		"pageRange":     pageRange,
		"roleIs":        roleIs,
		"hasLayout":     hasLayout,
		"districtsOf":   forms.Districts,
		"formsOf":       forms.Forms,
		"uploadTypesOf": forms.UploadTypes,
	}
	for k, v := range uaFuncMap() {
		fm[k] = v
	}
	return fm
}

//
// helpers
//

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// field returns one stored value, or "" when absent.
func field(p store.Payload, name string) string { return p[name] }

func uploadLabel(forms *form.Registry) func(string) string {
	return func(key string) string {
		for _, u := range forms.UploadTypes() {
			if u.Key == key {
				return u.Label
			}
		}
		return key
	}
}

// pageRange returns 1..n for pagination links.
func pageRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// roleIs compares a page's session role with a literal.
func roleIs(p *Page, role string) bool {
	return p != nil && p.Session != nil && string(p.Session.Role) == role
}

// hasLayout reports whether a form has section headings.
func hasLayout(fd *form.FormDef) bool {
	for _, f := range fd.Fields {
		if f.Layout() {
			return true
		}
	}
	return false
}
