package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	principal middleware.Principal
	ok        bool
	called    bool
}

func gate(s *seen) http.Handler {
	return middleware.Authenticate(middleware.DefaultPublicRoutes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.principal, s.ok = middleware.PrincipalFromCtx(r.Context())
	}))
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	token, err := auth.GenerateAccessToken("alice", []string{"USER"})
	require.NoError(t, err)

	var s seen
	req := httptest.NewRequest(http.MethodGet, "/api/cart/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	gate(&s).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, s.ok)
	assert.Equal(t, "alice", s.principal.Username)
	assert.Equal(t, []string{"ROLE_USER"}, s.principal.Authorities())
	assert.True(t, s.principal.HasRole("USER"))
	assert.False(t, s.principal.HasRole("ADMIN"))
}

func TestAuthenticateNeverBlocks(t *testing.T) {
	cases := map[string]string{
		"no header":  "",
		"bad token":  "Bearer not-a-jwt",
		"basic auth": "Basic YWxpY2U6cHc=",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var s seen
			req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			gate(&s).ServeHTTP(httptest.NewRecorder(), req)

			assert.True(t, s.called)
			assert.False(t, s.ok)
		})
	}
}

func TestAuthenticateIgnoresRefreshTokens(t *testing.T) {
	token, err := auth.GenerateRefreshToken("alice")
	require.NoError(t, err)

	var s seen
	req := httptest.NewRequest(http.MethodGet, "/api/cart/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	gate(&s).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, s.called)
	assert.False(t, s.ok)
}

func TestAuthenticateQueryTokenOnlyForWebsocket(t *testing.T) {
	token, err := auth.GenerateAccessToken("root", []string{"ADMIN"})
	require.NoError(t, err)

	var s seen
	req := httptest.NewRequest(http.MethodGet, "/ws/admin/orders?token="+token, nil)
	gate(&s).ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, s.ok)

	s = seen{}
	req = httptest.NewRequest(http.MethodGet, "/ws/admin/orders?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	gate(&s).ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, s.ok)
	assert.Equal(t, "root", s.principal.Username)
	assert.True(t, s.principal.HasRole("ADMIN"))
}

func TestAuthenticateSkipsPublicRoutes(t *testing.T) {
	token, err := auth.GenerateAccessToken("alice", []string{"USER"})
	require.NoError(t, err)

	public := []struct{ method, path string }{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/auth/register"},
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/7"},
		{http.MethodPost, "/reset-password/reset"},
	}
	for _, c := range public {
		var s seen
		req := httptest.NewRequest(c.method, c.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		gate(&s).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, s.called, c.path)
		assert.False(t, s.ok, "%s %s should skip token decoding", c.method, c.path)
	}

	// Admin registration and product writes are not on the allow-list.
	for _, c := range []struct{ method, path string }{
		{http.MethodPost, "/api/auth/register/admin"},
		{http.MethodPost, "/api/products/upload"},
	} {
		var s seen
		req := httptest.NewRequest(c.method, c.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		gate(&s).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, s.ok, "%s %s should decode the token", c.method, c.path)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	var got string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.RequestIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)
}
