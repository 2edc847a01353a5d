package message

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddThenPop(t *testing.T) {
	rec := httptest.NewRecorder()
	Add(rec, httptest.NewRequest(http.MethodGet, "/", nil), Success, "Entry updated successfully")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d", len(cookies))
	}

	next := httptest.NewRequest(http.MethodGet, "/district/dashboard", nil)
	next.AddCookie(cookies[0])

	// A second message on the following response keeps the first one.
	rec2 := httptest.NewRecorder()
	Add(rec2, next, Info, "second")
	next2 := httptest.NewRequest(http.MethodGet, "/", nil)
	next2.AddCookie(rec2.Result().Cookies()[0])

	rec3 := httptest.NewRecorder()
	got := Pop(rec3, next2)
	if len(got) != 2 || got[0].Text != "Entry updated successfully" || got[1].Category != Info {
		t.Fatalf("Pop = %#v", got)
	}
	if c := rec3.Result().Cookies(); len(c) != 1 || c[0].MaxAge != -1 {
		t.Fatalf("cookie not cleared: %#v", c)
	}
}

func TestPopWithoutCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	if got := Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Fatalf("Pop = %#v", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("Pop without messages should not touch cookies")
	}
}
