// Package componenttest builds a fully wired component.Deps over in-memory
// repositories and a temporary filestore, for handler tests.
package componenttest

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/entry"
	"github.com/prismappolice/control-room-dsr/internal/filestore"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/report"
	"github.com/prismappolice/control-room-dsr/internal/session"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
	"github.com/prismappolice/control-room-dsr/internal/view"
)

// Now is the fixed wall time every Env runs at.
var Now = time.Date(2025, 11, 10, 9, 15, 0, 0, time.UTC)

// Secret keys the session and CSRF signers.
var Secret = []byte("0123456789abcdef0123456789abcdef")

// Canned sessions.
var (
	Admin       = auth.Session{UserID: 1, Username: "admin", Role: auth.RoleAdmin}
	Kurnool     = auth.Session{UserID: 2, Username: "kurnool", Role: auth.RoleDistrict, District: "Kurnool"}
	Guntur      = auth.Session{UserID: 3, Username: "guntur", Role: auth.RoleDistrict, District: "Guntur"}
	ControlRoom = auth.Session{UserID: 4, Username: "controlroom", Role: auth.RoleControlRoom, District: "Control Room"}
)

// Env is one test's wiring.
type Env struct {
	component.Deps
	CSRF       *form.CSRF
	Users      *Users
	EntryRepo  *Entries
	UploadRepo *Uploads
	Files      filestore.Store
}

// New wires every service over fresh in-memory state.
func New(t *testing.T) *Env {
	t.Helper()
	forms, err := form.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	files, err := filestore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	csrf, err := form.NewCSRF(Secret)
	if err != nil {
		t.Fatal(err)
	}
	rnd, err := view.New(csrf, forms)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	sessions, err := session.NewManager(session.Options{Secret: Secret})
	if err != nil {
		t.Fatal(err)
	}

	clock := civil.FixedClock(Now)
	e := &Env{
		CSRF:       csrf,
		Users:      &Users{},
		EntryRepo:  &Entries{},
		UploadRepo: &Uploads{},
		Files:      files,
	}
	e.Deps = component.Deps{
		Forms:          forms,
		Clock:          clock,
		View:           rnd,
		Sessions:       sessions,
		Auth:           auth.NewService(e.Users, clock),
		Entries:        entry.NewService(e.EntryRepo, forms, clock),
		Uploads:        upload.NewService(e.UploadRepo, files, forms, clock),
		Reports:        report.NewService(e.EntryRepo, e.UploadRepo, forms, clock),
		MaxUploadBytes: 1 << 20,
	}
	return e
}

// Cookie returns a session cookie for s.
func (e *Env) Cookie(t *testing.T, s auth.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := e.Sessions.Issue(rec, s); err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return rec.Result().Cookies()[0]
}

// Serve mounts c behind the session guard and runs req.  A non-nil s signs
// the request in.
func (e *Env) Serve(t *testing.T, c component.Component, req *http.Request, s *auth.Session) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(e.Sessions.Guard)
	r.Mount(c.Prefix(), c.Routes())
	if s != nil {
		req.AddCookie(e.Cookie(t, *s))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

/*──────────────────────────── users ────────────────────────────────────────*/

// Users is an in-memory auth.UserStore.
type Users struct {
	mu   sync.Mutex
	rows []store.User
}

// Add stores an account with a bcrypt hash of password and returns its id.
func (u *Users) Add(t *testing.T, s auth.Session, password string) int64 {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	row := store.User{
		ID:           s.UserID,
		Username:     s.Username,
		PasswordHash: hash,
		UserType:     string(s.Role),
		DistrictName: sql.NullString{String: s.District, Valid: s.District != ""},
		IsActive:     true,
		CreatedAt:    Now,
	}
	u.rows = append(u.rows, row)
	return row.ID
}

func (u *Users) ByUsernameAndType(_ context.Context, username, userType string) (*store.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range u.rows {
		if r.Username == username && r.UserType == userType {
			cp := r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *Users) ByID(_ context.Context, id int64) (*store.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range u.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *Users) UpdatePassword(_ context.Context, id int64, hash string, changedAt time.Time) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.rows {
		if u.rows[i].ID == id {
			u.rows[i].PasswordHash = hash
			u.rows[i].LastPasswordChange = sql.NullTime{Time: changedAt, Valid: true}
			return nil
		}
	}
	return store.ErrNotFound
}

/*──────────────────────────── entries ──────────────────────────────────────*/

// Entries is an in-memory entry.Repository and report.Entries.
type Entries struct {
	mu     sync.Mutex
	rows   []store.Entry
	nextID int64
}

// Seed stores e as-is, assigning an id, and returns the id.
func (m *Entries) Seed(e store.Entry) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.rows = append(m.rows, e)
	return e.ID
}

// All returns a copy of every row.
func (m *Entries) All() []store.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Entry(nil), m.rows...)
}

func (m *Entries) Insert(_ context.Context, e *store.Entry) (int64, error) {
	e.ID = m.Seed(*e)
	return e.ID, nil
}

func (m *Entries) find(id int64, district, formType string) int {
	for i, r := range m.rows {
		if r.ID == id && r.DistrictName == district && r.FormType == formType {
			return i
		}
	}
	return -1
}

func (m *Entries) UpdateScoped(_ context.Context, id int64, district, formType string, data store.Payload, updatedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, district, formType)
	if i < 0 {
		return false, nil
	}
	m.rows[i].Data = data
	m.rows[i].UpdatedAt = updatedAt
	return true, nil
}

func (m *Entries) GetScoped(_ context.Context, id int64, district, formType string) (*store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, district, formType)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	cp := m.rows[i]
	return &cp, nil
}

func (m *Entries) DeleteScoped(_ context.Context, id int64, district, formType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, district, formType)
	if i < 0 {
		return false, nil
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return true, nil
}

func (m *Entries) filter(keep func(store.Entry) bool, less func(a, b store.Entry) bool, limit int) []store.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Entry
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func newestUpdated(a, b store.Entry) bool { return a.UpdatedAt.After(b.UpdatedAt) }
func newestDate(a, b store.Entry) bool    { return a.Date.After(b.Date) }

func (m *Entries) ListForDay(_ context.Context, district, formType string, date time.Time) ([]store.Entry, error) {
	return m.filter(func(e store.Entry) bool {
		return e.DistrictName == district && e.FormType == formType && e.Date.Equal(date)
	}, func(a, b store.Entry) bool { return a.CreatedAt.After(b.CreatedAt) }, 0), nil
}

func (m *Entries) RecentByDistrict(_ context.Context, district string, limit int) ([]store.Entry, error) {
	return m.filter(func(e store.Entry) bool { return e.DistrictName == district }, newestUpdated, limit), nil
}

func (m *Entries) Recent(_ context.Context, limit int) ([]store.Entry, error) {
	return m.filter(func(store.Entry) bool { return true }, newestUpdated, limit), nil
}

func (m *Entries) ByDistrict(_ context.Context, district string) ([]store.Entry, error) {
	return m.filter(func(e store.Entry) bool { return e.DistrictName == district }, newestDate, 0), nil
}

func (m *Entries) ByForm(_ context.Context, formType string, date *time.Time) ([]store.Entry, error) {
	return m.filter(func(e store.Entry) bool {
		return e.FormType == formType && (date == nil || e.Date.Equal(*date))
	}, newestDate, 0), nil
}

func (m *Entries) ByDateAndDistrict(_ context.Context, date time.Time, district string) ([]store.Entry, error) {
	return m.filter(func(e store.Entry) bool {
		return e.DistrictName == district && e.Date.Equal(date)
	}, func(a, b store.Entry) bool { return a.FormType < b.FormType }, 0), nil
}

func (m *Entries) CountOnDate(_ context.Context, date time.Time) (int, error) {
	return len(m.filter(func(e store.Entry) bool { return e.Date.Equal(date) }, newestDate, 0)), nil
}

/*──────────────────────────── uploads ──────────────────────────────────────*/

// Uploads is an in-memory upload.Repository.  Rows are kept newest first.
type Uploads struct {
	mu     sync.Mutex
	rows   []store.Upload
	nextID int64
}

func (m *Uploads) Insert(_ context.Context, u *store.Upload) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.rows = append([]store.Upload{*u}, m.rows...)
	return u.ID, nil
}

func (m *Uploads) ByID(_ context.Context, id int64) (*store.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Uploads) match(q store.UploadQuery) []store.Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Upload
	for _, r := range m.rows {
		if q.Date != nil && !r.Date.Equal(*q.Date) {
			continue
		}
		if q.UploadType != "" && r.UploadType != q.UploadType {
			continue
		}
		if q.UserID != 0 && r.UserID != q.UserID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *Uploads) List(_ context.Context, q store.UploadQuery) ([]store.Upload, error) {
	out := m.match(q)
	if q.Limit > 0 {
		lo := min(q.Offset, len(out))
		hi := min(lo+q.Limit, len(out))
		out = out[lo:hi]
	}
	return out, nil
}

func (m *Uploads) Count(_ context.Context, q store.UploadQuery) (int, error) {
	return len(m.match(q)), nil
}
