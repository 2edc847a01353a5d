// internal/store/store_test.go
//
// Repository tests using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, driver), mock
}

func TestUsersByUsernameAndType(t *testing.T) {
	db, mock := newMock(t, "mysql")
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = ? AND user_type = ?`)).
		WithArgs("kurnool", "district").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "user_type", "district_name", "is_active", "created_at", "last_password_change",
		}).AddRow(11, "kurnool", "$2a$hash", "district", "Kurnool", true, now, nil))

	u, err := NewUsers(db).ByUsernameAndType(context.Background(), "kurnool", "district")
	if err != nil {
		t.Fatalf("ByUsernameAndType: %v", err)
	}
	if u.ID != 11 || u.DistrictName.String != "Kurnool" || u.LastPasswordChange.Valid {
		t.Fatalf("unexpected user: %#v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUsersNotFound(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = ? AND user_type = ?`)).
		WithArgs("kurnool", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := NewUsers(db).ByUsernameAndType(context.Background(), "kurnool", "admin"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEntriesInsertMySQL(t *testing.T) {
	db, mock := newMock(t, "mysql")
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO dsr_entry (district_name, form_type, date, data, created_at, updated_at, user_id)`)).
		WithArgs("Kurnool", "crime_data", day, `{"fir_no":"123","unit_name":"X"}`, now, now, int64(11)).
		WillReturnResult(sqlmock.NewResult(42, 1))

	e := &Entry{
		DistrictName: "Kurnool", FormType: "crime_data", Date: day,
		Data:      Payload{"unit_name": "X", "fir_no": "123"},
		CreatedAt: now, UpdatedAt: now, UserID: 11,
	}
	id, err := NewEntries(db).Insert(context.Background(), e)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 42 || e.ID != 42 {
		t.Fatalf("id = %d, e.ID = %d", id, e.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestEntriesInsertPostgresUsesReturning(t *testing.T) {
	db, mock := newMock(t, "pgx")

	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	id, err := NewEntries(db).Insert(context.Background(), &Entry{Data: Payload{}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != 9 {
		t.Fatalf("id = %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestEntriesUpdateScopedNoMatch(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dsr_entry SET data = ?, updated_at = ? WHERE id = ? AND district_name = ? AND form_type = ?`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(5), "Guntur", "crime_data").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewEntries(db).UpdateScoped(context.Background(), 5, "Guntur", "crime_data", Payload{}, time.Now())
	if err != nil {
		t.Fatalf("UpdateScoped: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestEntriesGetScopedDecodesPayload(t *testing.T) {
	db, mock := newMock(t, "mysql")
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dsr_entry WHERE id = ? AND district_name = ? AND form_type = ?`)).
		WithArgs(int64(3), "Kurnool", "nbw_status").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "district_name", "form_type", "date", "data", "created_at", "updated_at", "user_id",
		}).AddRow(3, "Kurnool", "nbw_status", now, []byte(`{"pending":"4","remarks":""}`), now, now, 11))

	e, err := NewEntries(db).GetScoped(context.Background(), 3, "Kurnool", "nbw_status")
	if err != nil {
		t.Fatalf("GetScoped: %v", err)
	}
	if e.Data["pending"] != "4" || len(e.Data) != 2 {
		t.Fatalf("payload = %#v", e.Data)
	}
}

func TestUploadsListFilters(t *testing.T) {
	db, mock := newMock(t, "mysql")
	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM control_room_upload WHERE date = ? AND upload_type = ? AND user_id = ? ORDER BY uploaded_at DESC, id DESC LIMIT ? OFFSET ?`,
	)).
		WithArgs(day, "periscope", int64(7), 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "date", "upload_type", "filename", "original_filename", "file_path", "uploaded_at", "user_id",
		}).AddRow(1, day, "periscope", "periscope_x.pdf", "x.pdf", "controlroom/periscope_x.pdf", day, 7))

	got, err := NewUploads(db).List(context.Background(), UploadQuery{
		Date: &day, UploadType: "periscope", UserID: 7, Limit: 20, Offset: 40,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].UserID != 7 {
		t.Fatalf("unexpected rows: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUploadsCountWithoutFilters(t *testing.T) {
	db, mock := newMock(t, "mysql")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM control_room_upload`)).
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(57))

	n, err := NewUploads(db).Count(context.Background(), UploadQuery{Limit: 20})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 57 {
		t.Fatalf("n = %d", n)
	}
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	if err := p.Scan(nil); err != nil || p == nil || len(p) != 0 {
		t.Fatalf("nil scan: %v %#v", err, p)
	}
	if err := p.Scan(`{"a":"1"}`); err != nil || p["a"] != "1" {
		t.Fatalf("string scan: %v %#v", err, p)
	}
	if err := p.Scan(12); err == nil {
		t.Fatal("int scan should fail")
	}
}
