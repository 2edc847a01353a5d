package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iauth "github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/component/componenttest"
)

func postForm(target string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dsr_session" {
			return c
		}
	}
	return nil
}

func TestLoginRedirectsToRoleLanding(t *testing.T) {
	env := componenttest.New(t)
	env.Users.Add(t, componenttest.Kurnool, "kurnool123")
	env.Users.Add(t, componenttest.ControlRoom, "controlroom123")
	c := New(env.Deps)

	cases := []struct {
		user, pass, role, want string
	}{
		{"kurnool", "kurnool123", "district", "/district/dashboard"},
		{"controlroom", "controlroom123", "controlroom", "/district/controlroom_dashboard"},
	}
	for _, tc := range cases {
		rec := env.Serve(t, c, postForm("/auth/login", url.Values{
			"username": {tc.user}, "password": {tc.pass}, "user_type": {tc.role},
		}), nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, tc.user)
		assert.Equal(t, tc.want, rec.Header().Get("Location"), tc.user)
		assert.NotNil(t, sessionCookie(rec), tc.user)
	}
}

func TestLoginRejectsWrongRoleAndPassword(t *testing.T) {
	env := componenttest.New(t)
	env.Users.Add(t, componenttest.Kurnool, "kurnool123")
	c := New(env.Deps)

	for _, v := range []url.Values{
		{"username": {"kurnool"}, "password": {"kurnool123"}, "user_type": {"admin"}},
		{"username": {"kurnool"}, "password": {"nope"}, "user_type": {"district"}},
		{"username": {"kurnool"}, "password": {"kurnool123"}, "user_type": {"superuser"}},
	} {
		rec := env.Serve(t, c, postForm("/auth/login", v), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
		assert.Nil(t, sessionCookie(rec))
	}
}

func TestLoginJSONFailure(t *testing.T) {
	env := componenttest.New(t)
	req := postForm("/auth/login", url.Values{"username": {"x"}, "password": {"y"}, "user_type": {"district"}})
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := env.Serve(t, New(env.Deps), req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestLoginPageForwardsSignedInUser(t *testing.T) {
	env := componenttest.New(t)
	s := componenttest.Admin
	rec := env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/auth/login", nil), &s)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/auth/login", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="user_type"`)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := componenttest.New(t)
	s := componenttest.Kurnool
	rec := env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/auth/logout", nil), &s)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	ck := sessionCookie(rec)
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestProfileRequiresLogin(t *testing.T) {
	env := componenttest.New(t)
	rec := env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/auth/profile", nil), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestProfileShowsAccount(t *testing.T) {
	env := componenttest.New(t)
	env.Users.Add(t, componenttest.Kurnool, "kurnool123")
	s := componenttest.Kurnool
	rec := env.Serve(t, New(env.Deps), httptest.NewRequest(http.MethodGet, "/auth/profile", nil), &s)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kurnool")
	assert.Contains(t, rec.Body.String(), "Never")
}

func TestChangePassword(t *testing.T) {
	env := componenttest.New(t)
	env.Users.Add(t, componenttest.Kurnool, "kurnool123")
	s := componenttest.Kurnool
	c := New(env.Deps)

	rec := env.Serve(t, c, postForm("/auth/change-password", url.Values{
		"current_password": {"wrong"}, "new_password": {"secret99"}, "confirm_password": {"secret99"},
	}), &s)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/change-password", rec.Header().Get("Location"))

	rec = env.Serve(t, c, postForm("/auth/change-password", url.Values{
		"current_password": {"kurnool123"}, "new_password": {"secret99"}, "confirm_password": {"secret99"},
	}), &s)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/district/dashboard", rec.Header().Get("Location"))

	u, err := env.Users.ByID(t.Context(), s.UserID)
	require.NoError(t, err)
	assert.True(t, iauth.CheckPassword(u.PasswordHash, "secret99"))
	assert.True(t, u.LastPasswordChange.Valid)
}
