package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	appctx "github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, pattern, method, target, body string, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, appctx.Wrap(h))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJSONAndEnvelopes(t *testing.T) {
	rec := serve(t, "/", http.MethodGet, "/", "", func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = serve(t, "/", http.MethodGet, "/", "", func(c *appctx.Context) {
		c.Error(http.StatusConflict, "taken")
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"taken"}`, rec.Body.String())

	rec = serve(t, "/", http.MethodGet, "/", "", func(c *appctx.Context) {
		c.Message("done")
	})
	assert.JSONEq(t, `{"success":true,"message":"done"}`, rec.Body.String())
}

func TestParamUint(t *testing.T) {
	var got uint
	rec := serve(t, "/orders/{id}", http.MethodGet, "/orders/42", "", func(c *appctx.Context) {
		id, ok := c.ParamUint("id")
		require.True(t, ok)
		got = id
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 42, got)

	rec = serve(t, "/orders/{id}", http.MethodGet, "/orders/abc", "", func(c *appctx.Context) {
		_, ok := c.ParamUint("id")
		assert.False(t, ok)
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid id")
}

func TestQueryUint(t *testing.T) {
	serve(t, "/", http.MethodGet, "/?userId=7&bad=x", "", func(c *appctx.Context) {
		assert.EqualValues(t, 7, c.QueryUint("userId"))
		assert.Zero(t, c.QueryUint("bad"))
		assert.Zero(t, c.QueryUint("missing"))
	})
}

type cartLine struct {
	UserID   uint `json:"userId" validate:"required"`
	Quantity int  `json:"quantity" validate:"min=1"`
}

func TestBindJSON(t *testing.T) {
	var in cartLine
	rec := serve(t, "/", http.MethodPost, "/", `{"userId":3,"quantity":2}`, func(c *appctx.Context) {
		require.True(t, c.BindJSON(&in))
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cartLine{UserID: 3, Quantity: 2}, in)

	rec = serve(t, "/", http.MethodPost, "/", `{"quantity":0}`, func(c *appctx.Context) {
		var in cartLine
		assert.False(t, c.BindJSON(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"userId is required"`)

	rec = serve(t, "/", http.MethodPost, "/", `{not json`, func(c *appctx.Context) {
		var in cartLine
		assert.False(t, c.BindJSON(&in))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestPrincipal(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/", appctx.Wrap(func(c *appctx.Context) {
		p, ok := c.Principal()
		require.True(t, ok)
		c.Message(p.Username)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{Username: "alice"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"message":"alice"`)
}
