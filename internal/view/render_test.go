package view

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/message"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	forms, err := form.Default()
	if err != nil {
		t.Fatal(err)
	}
	csrf, err := form.NewCSRF([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(csrf, forms)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestEveryPageParses(t *testing.T) {
	v := newRenderer(t)
	for _, name := range []string{
		"index", "login", "profile", "change_password", "error",
		"admin_dashboard", "admin_district", "admin_form", "admin_uploads",
		"district_dashboard", "district_form", "controlroom_dashboard", "controlroom_upload",
	} {
		if !v.Has(name) {
			t.Errorf("page %q missing", name)
		}
	}
}

func flashCookie(t *testing.T, f ...message.Flash) *http.Cookie {
	t.Helper()
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "dsr_flash", Value: base64.RawURLEncoding.EncodeToString(raw)}
}

func TestRenderConsumesFlashes(t *testing.T) {
	v := newRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(flashCookie(t, message.Flash{Category: message.Success, Text: "Entry updated successfully"}))
	rec := httptest.NewRecorder()

	v.Render(rec, req, "index", map[string]any{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="flash flash-success">Entry updated successfully`) {
		t.Fatalf("flash not rendered:\n%s", body)
	}
	if !strings.Contains(body, `name="csrf-token" content="`) {
		t.Fatal("csrf meta tag missing")
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dsr_flash" && c.MaxAge == -1 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie not cleared")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("Cache-Control not set")
	}
}

func TestRenderFailureKeepsFlashes(t *testing.T) {
	v := newRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(flashCookie(t, message.Flash{Category: message.Info, Text: "hi"}))
	rec := httptest.NewRecorder()

	// Overview of the wrong type makes the template fail mid-render.
	v.Render(rec, req, "admin_dashboard", map[string]any{"Overview": 42})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("failed render touched cookies")
	}
}

func TestNavFollowsRole(t *testing.T) {
	v := newRenderer(t)
	cases := []struct {
		role auth.Role
		want string
	}{
		{auth.RoleAdmin, `href="/admin/uploads"`},
		{auth.RoleDistrict, `href="/district/dashboard"`},
		{auth.RoleControlRoom, `href="/district/upload"`},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/auth/change-password", nil)
		req = req.WithContext(auth.WithSession(req.Context(), auth.Session{UserID: 1, Username: "u", Role: c.role}))
		rec := httptest.NewRecorder()
		v.Render(rec, req, "change_password", nil)
		if !strings.Contains(rec.Body.String(), c.want) {
			t.Errorf("%s: nav missing %s", c.role, c.want)
		}
	}
}

func TestDistrictFormRendersLayoutFields(t *testing.T) {
	v := newRenderer(t)
	forms, _ := form.Default()
	fd, ok := forms.Form("crime_data")
	if !ok {
		t.Fatal("crime_data missing")
	}
	req := httptest.NewRequest(http.MethodGet, "/district/form/crime_data", nil)
	rec := httptest.NewRecorder()
	v.Render(rec, req, "district_form", map[string]any{
		"Form":  fd,
		"Today": "2025-11-10",
		"Entries": []store.Entry{{
			ID: 7, Data: store.Payload{fd.StorageFields()[0].Name: "Kurnool I Town"},
			UpdatedAt: time.Date(2025, 11, 10, 9, 15, 0, 0, time.UTC),
		}},
	})
	body := rec.Body.String()
	for _, want := range []string{
		`id="f_` + fd.StorageFields()[0].Name + `"`,
		`data-delete="7"`,
		"Kurnool I Town",
		"10-11-2025 09:15",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestUploadsPager(t *testing.T) {
	v := newRenderer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/uploads", nil)
	rec := httptest.NewRecorder()
	v.Render(rec, req, "admin_uploads", map[string]any{
		"Page":   upload.Page{Page: 2, PerPage: 20, Total: 45},
		"Filter": upload.Filter{UploadType: "ps_rtm"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "<b>2</b>") {
		t.Error("current page not marked")
	}
	if !strings.Contains(body, "?page=3&date=&upload_type=ps_rtm") {
		t.Errorf("next link missing:\n%s", body)
	}
}

func TestStaticServesEmbeddedAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "X-CSRF-Token") {
		t.Fatalf("static asset: %d", rec.Code)
	}
}
