package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/login"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/items", ok)
	e.POST("/items", ok)
	e.POST("/login", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec := serve(newEcho(), httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
}

func TestUnsafeMethod(t *testing.T) {
	e := newEcho()
	cookie := &http.Cookie{Name: "XSRF-TOKEN", Value: "tok"}

	cases := []struct {
		name   string
		origin string
		header string
		status int
	}{
		{"matching token", "http://example.com", "tok", http.StatusOK},
		{"missing token", "http://example.com", "", http.StatusForbidden},
		{"wrong token", "http://example.com", "other", http.StatusForbidden},
		{"foreign origin", "http://evil.test", "tok", http.StatusForbidden},
		{"no origin", "", "tok", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/items", nil)
			req.AddCookie(cookie)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.header != "" {
				req.Header.Set("X-CSRF-Token", tc.header)
			}
			assert.Equal(t, tc.status, serve(e, req).Code)
		})
	}
}

func TestBypass(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusOK, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}
