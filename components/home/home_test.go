package home

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prismappolice/control-room-dsr/internal/component/componenttest"
)

func TestIndexLinksDashboardForSignedInUser(t *testing.T) {
	env := componenttest.New(t)
	c := New(env.Deps)

	rec := env.Serve(t, c, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/auth/login"`)

	s := componenttest.ControlRoom
	rec = env.Serve(t, c, httptest.NewRequest(http.MethodGet, "/", nil), &s)
	assert.Contains(t, rec.Body.String(), `href="/district/controlroom_dashboard"`)
}

func TestHealthz(t *testing.T) {
	env := componenttest.New(t)
	rec := env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.Ping = func(context.Context) error { return errors.New("db gone") }
	rec = env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
