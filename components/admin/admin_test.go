package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismappolice/control-room-dsr/internal/component/componenttest"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
)

var today = time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

func get(target string, asJSON bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func seed(env *componenttest.Env) {
	for _, e := range []store.Entry{
		{DistrictName: "Kurnool", FormType: "crime_data", Date: today, Data: store.Payload{"fir_no": "214/2025"}},
		{DistrictName: "Kurnool", FormType: "nbw_status", Date: today, Data: store.Payload{}},
		{DistrictName: "Kurnool", FormType: "crime_data", Date: today.AddDate(0, 0, -1), Data: store.Payload{}},
		{DistrictName: "Guntur", FormType: "crime_data", Date: today, Data: store.Payload{}},
	} {
		e.CreatedAt, e.UpdatedAt = componenttest.Now, componenttest.Now
		env.EntryRepo.Seed(e)
	}
}

func storeUpload(t *testing.T, env *componenttest.Env, kind, name, body string) store.Upload {
	t.Helper()
	rec, err := env.Deps.Uploads.Store(t.Context(), componenttest.ControlRoom, upload.StoreInput{
		Date: "2025-11-10", UploadType: kind, Filename: name, Body: strings.NewReader(body),
	})
	require.NoError(t, err)
	return rec
}

func TestRoutesAreAdminOnly(t *testing.T) {
	env := componenttest.New(t)
	s := componenttest.Kurnool
	for _, p := range []string{
		"/admin/dashboard", "/admin/district/Kurnool", "/admin/form/crime_data",
		"/admin/search?date=2025-11-10&district=Kurnool", "/admin/uploads",
		"/admin/uploads/filter?date=2025-11-10", "/admin/upload/details/1",
		"/admin/download_dsr/Kurnool/2025-11-10", "/admin/download_upload/1", "/admin/view_upload/1",
	} {
		rec := env.Serve(t, New(env.Deps), get(p, true), &s)
		assert.Equal(t, http.StatusForbidden, rec.Code, p)
	}
}

func TestDashboard(t *testing.T) {
	env := componenttest.New(t)
	seed(env)
	storeUpload(t, env, "ps_rtm", "rtm.pdf", "x")
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/dashboard", false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<b>26</b>")
	assert.Contains(t, body, "<b>3</b>")
	assert.Contains(t, body, "rtm.pdf")
	assert.Contains(t, body, `href="/admin/district/West%20Godavari"`)
}

func TestDistrictGroupsByDate(t *testing.T) {
	env := componenttest.New(t)
	seed(env)
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/district/Kurnool", false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	first := strings.Index(body, "2025-11-10")
	second := strings.Index(body, "2025-11-09")
	require.True(t, first >= 0 && second >= 0)
	assert.Less(t, first, second)
	assert.Contains(t, body, "214/2025")

	rec = env.Serve(t, New(env.Deps), get("/admin/district/Atlantis", true), &s)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormViewFiltersByDate(t *testing.T) {
	env := componenttest.New(t)
	seed(env)
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/form/crime_data?date=2025-11-09", false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<td>Kurnool</td>"))
	assert.NotContains(t, rec.Body.String(), "<td>Guntur</td>")

	rec = env.Serve(t, New(env.Deps), get("/admin/form/crime_data?date=09-11-2025", true), &s)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	env := componenttest.New(t)
	seed(env)
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/search?date=2025-11-10&district=Kurnool", true), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["data"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "crime_data", first["form_type"])
	assert.Equal(t, "Crime Data", first["form_name"])

	rec = env.Serve(t, New(env.Deps), get("/admin/search?date=2025-11-10", true), &s)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Date and district required", decode(t, rec)["message"])
}

func TestJSONEndpointsAnswerErrorsInJSON(t *testing.T) {
	env := componenttest.New(t)
	s := componenttest.Admin

	for target, want := range map[string]int{
		"/admin/search?date=10/11/2025&district=Kurnool": http.StatusBadRequest,
		"/admin/search":                                   http.StatusBadRequest,
		"/admin/uploads/filter?date=2025-13-40":          http.StatusBadRequest,
		"/admin/uploads/filter":                           http.StatusBadRequest,
		"/admin/upload/details/abc":                       http.StatusNotFound,
		"/admin/upload/details/999":                       http.StatusNotFound,
	} {
		rec := env.Serve(t, New(env.Deps), get(target, false), &s)
		require.Equal(t, want, rec.Code, target)
		assert.Empty(t, rec.Header().Get("Location"), target)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", target)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"], target)
		assert.NotEmpty(t, body["message"], target)
		assert.Equal(t, body["message"], body["error"], target)
	}
}

func TestExport(t *testing.T) {
	env := componenttest.New(t)
	seed(env)
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/download_dsr/Kurnool/2025-11-10", false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Equal(t, `attachment; filename=DSR_Kurnool_2025-11-10.pdf`, rec.Header().Get("Content-Disposition"))

	rec = env.Serve(t, New(env.Deps), get("/admin/download_dsr/Kurnool/2025-01-01", true), &s)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No data found for the selected date", decode(t, rec)["message"])
}

func TestUploadsPageAndFilter(t *testing.T) {
	env := componenttest.New(t)
	storeUpload(t, env, "ps_rtm", "rtm.pdf", "x")
	storeUpload(t, env, "periscope", "scope.xlsx", "y")
	s := componenttest.Admin

	rec := env.Serve(t, New(env.Deps), get("/admin/uploads?upload_type=periscope", false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scope.xlsx")
	assert.NotContains(t, rec.Body.String(), "rtm.pdf")

	rec = env.Serve(t, New(env.Deps), get("/admin/uploads/filter?date=2025-11-10", true), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["uploads"].([]any)
	require.Len(t, rows, 2)
	row := rows[0].(map[string]any)
	assert.Equal(t, "10-11-2025", row["date"])
	assert.Equal(t, "10-11-2025 09:15:00", row["uploaded_at"])

	rec = env.Serve(t, New(env.Deps), get("/admin/uploads/filter", true), &s)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDetailsAndDownload(t *testing.T) {
	env := componenttest.New(t)
	up := storeUpload(t, env, "ps_rtm", "rtm.pdf", strings.Repeat("a", 2048))
	s := componenttest.Admin
	id := "/" + strconv.FormatInt(up.ID, 10)

	rec := env.Serve(t, New(env.Deps), get("/admin/upload/details"+id, true), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode(t, rec)["upload"].(map[string]any)
	assert.Equal(t, "2.0 KB", u["file_size"])
	assert.Equal(t, "Control Room", u["uploaded_by"])
	assert.Equal(t, "PS RTM", u["upload_type"])

	rec = env.Serve(t, New(env.Deps), get("/admin/download_upload"+id, false), &s)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2048, rec.Body.Len())

	require.NoError(t, env.Files.Delete(t.Context(), up.FilePath))
	rec = env.Serve(t, New(env.Deps), get("/admin/view_upload"+id, true), &s)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found on server", decode(t, rec)["message"])
}
