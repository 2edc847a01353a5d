package report

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismappolice/control-room-dsr/internal/apperr"
	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

type fakeEntries struct{ rows []store.Entry }

func (f *fakeEntries) filter(keep func(store.Entry) bool) []store.Entry {
	var out []store.Entry
	for _, e := range f.rows {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (f *fakeEntries) Recent(_ context.Context, limit int) ([]store.Entry, error) {
	return f.rows[:min(limit, len(f.rows))], nil
}

func (f *fakeEntries) ByDistrict(_ context.Context, district string) ([]store.Entry, error) {
	return f.filter(func(e store.Entry) bool { return e.DistrictName == district }), nil
}

func (f *fakeEntries) ByForm(_ context.Context, formType string, date *time.Time) ([]store.Entry, error) {
	return f.filter(func(e store.Entry) bool {
		return e.FormType == formType && (date == nil || e.Date.Equal(*date))
	}), nil
}

func (f *fakeEntries) ByDateAndDistrict(_ context.Context, date time.Time, district string) ([]store.Entry, error) {
	return f.filter(func(e store.Entry) bool { return e.DistrictName == district && e.Date.Equal(date) }), nil
}

func (f *fakeEntries) CountOnDate(_ context.Context, date time.Time) (int, error) {
	return len(f.filter(func(e store.Entry) bool { return e.Date.Equal(date) })), nil
}

type fakeUploads struct{ rows []store.Upload }

func (f *fakeUploads) List(_ context.Context, q store.UploadQuery) ([]store.Upload, error) {
	return f.rows[:min(q.Limit, len(f.rows))], nil
}

var (
	adminSess = auth.Session{UserID: 1, Username: "admin", Role: auth.RoleAdmin}
	distSess  = auth.Session{UserID: 2, Username: "kurnool", Role: auth.RoleDistrict, District: "Kurnool"}
)

func day(s string) time.Time {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) *Service {
	t.Helper()
	forms, err := form.Default()
	require.NoError(t, err)
	entries := &fakeEntries{rows: []store.Entry{
		{ID: 1, DistrictName: "Kurnool", FormType: "crime_data", Date: day("2025-11-10"), Data: store.Payload{"fir_no": "112/2025", "crime_head": "Murder"}},
		{ID: 2, DistrictName: "Kurnool", FormType: "nbw_status", Date: day("2025-11-10"), Data: store.Payload{}},
		{ID: 3, DistrictName: "Kurnool", FormType: "crime_data", Date: day("2025-11-09"), Data: store.Payload{"fir_no": "98/2025"}},
		{ID: 4, DistrictName: "Guntur", FormType: "crime_data", Date: day("2025-11-10"), Data: store.Payload{"fir_no": "7/2025"}},
	}}
	uploads := &fakeUploads{rows: make([]store.Upload, 8)}
	clock := civil.FixedClock(time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC))
	return NewService(entries, uploads, forms, clock)
}

func TestAdminOnly(t *testing.T) {
	svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, distSess)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, err = svc.ListByDistrict(ctx, distSess, "Kurnool")
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, _, err = svc.ListByForm(ctx, distSess, "crime_data", "")
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, err = svc.Search(ctx, distSess, "2025-11-10", "Kurnool")
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, err = svc.Export(ctx, distSess, "Kurnool", "2025-11-10")
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestDashboard(t *testing.T) {
	svc := newFixture(t)
	ov, err := svc.Dashboard(context.Background(), adminSess)
	require.NoError(t, err)

	assert.Equal(t, 26, ov.Stats.TotalDistricts)
	assert.Equal(t, 16, ov.Stats.TotalForms)
	assert.Equal(t, 3, ov.Stats.TodayEntries)
	assert.Len(t, ov.RecentEntries, 4)
	assert.Len(t, ov.RecentUploads, RecentUploads)
}

func TestListByDistrictGroupsByDate(t *testing.T) {
	svc := newFixture(t)
	groups, err := svc.ListByDistrict(context.Background(), adminSess, "Kurnool")
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "2025-11-10", groups[0].Date)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "2025-11-09", groups[1].Date)
}

func TestListByForm(t *testing.T) {
	svc := newFixture(t)
	ctx := context.Background()

	fd, rows, err := svc.ListByForm(ctx, adminSess, "crime_data", "")
	require.NoError(t, err)
	assert.Equal(t, "crime_data", fd.Key)
	assert.Len(t, rows, 3)

	_, rows, err = svc.ListByForm(ctx, adminSess, "crime_data", "2025-11-10")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, _, err = svc.ListByForm(ctx, adminSess, "crime_data", "10/11/2025")
	assert.ErrorIs(t, err, apperr.ErrBadDate)

	_, _, err = svc.ListByForm(ctx, adminSess, "nope", "")
	assert.ErrorIs(t, err, ErrInvalidFormType)
}

func TestSearch(t *testing.T) {
	svc := newFixture(t)
	ctx := context.Background()

	items, err := svc.Search(ctx, adminSess, "2025-11-10", "Kurnool")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.NotEqual(t, it.FormType, it.FormName, "form name must come from the registry")
	}

	_, err = svc.Search(ctx, adminSess, "", "Kurnool")
	assert.ErrorIs(t, err, ErrDateAndDistrict)
	_, err = svc.Search(ctx, adminSess, "2025-11-10", "")
	assert.ErrorIs(t, err, ErrDateAndDistrict)
	_, err = svc.Search(ctx, adminSess, "2025-13-01", "Kurnool")
	assert.ErrorIs(t, err, apperr.ErrBadDate)
}

func TestExport(t *testing.T) {
	svc := newFixture(t)
	ctx := context.Background()

	doc, err := svc.Export(ctx, adminSess, "Kurnool", "2025-11-10")
	require.NoError(t, err)
	assert.Equal(t, "DSR_Kurnool_2025-11-10.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))

	_, err = svc.Export(ctx, adminSess, "Kurnool", "2025-01-01")
	assert.ErrorIs(t, err, ErrNoData)
	_, err = svc.Export(ctx, adminSess, "Kurnool", "bad")
	assert.ErrorIs(t, err, apperr.ErrBadDate)
}

func TestExportCellsFollowFixedOrder(t *testing.T) {
	forms, err := form.Default()
	require.NoError(t, err)

	retired := store.Entry{FormType: "old_register", Data: store.Payload{
		"zeta": "6", "alpha": "1", "mike": "4", "delta": "2", "kilo": "3", "x_ray": "5",
	}}
	for range 20 {
		var got []string
		for _, c := range cells(forms, retired) {
			got = append(got, c.label)
		}
		require.Equal(t, []string{"alpha", "delta", "kilo", "mike", "x_ray", "zeta"}, got)
	}

	fd, ok := forms.Form("crime_data")
	require.True(t, ok)
	var want []string
	for _, f := range fd.Fields {
		if !f.Layout() || f.Label != "" {
			want = append(want, f.Label)
		}
	}
	var got []string
	for _, c := range cells(forms, store.Entry{FormType: "crime_data", Data: store.Payload{"fir_no": "112/2025"}}) {
		got = append(got, c.label)
	}
	assert.Equal(t, want, got)
}
