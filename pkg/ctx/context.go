// Package ctx gives storefront handlers a single request context instead of
// the (http.ResponseWriter, *http.Request) pair.
//
//	func (c *ProductController) Show(x *ctx.Context) {
//	    id, ok := x.ParamUint("id")
//	    if !ok {
//	        return // 400 already sent
//	    }
//	    ...
//	    x.JSON(http.StatusOK, product)
//	}
//
//	router.Get("/api/products/{id}", "products.show", ctx.Wrap(products.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ── Context ──────────────────────────────────────────────────────────────────

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path parameter. On failure it sends a 400 and
// returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.Error(http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryUint parses a numeric query parameter; 0 when absent or malformed.
func (c *Context) QueryUint(key string) uint {
	n, err := strconv.ParseUint(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated caller, if any.
func (c *Context) Principal() (middleware.Principal, bool) {
	return middleware.PrincipalFromCtx(c.R.Context())
}

// ── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On a malformed body it
// sends 400 with the decode error; on failed validation 400 with the field
// map. It returns true only when dest is ready to use.
//
//	var in loginRequest
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		logger.WithCtx(c.Context()).Debug("bind: rejected body", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// Status writes a status code with an empty body.
func (c *Context) Status(code int) {
	c.W.WriteHeader(code)
}

// JSON writes v as-is.
func (c *Context) JSON(code int, v any) {
	response.JSON(c.W, code, v)
}

// Success sends the {"success":true,"data":...} envelope.
func (c *Context) Success(data any) {
	response.Success(c.W, data)
}

// Message sends {"success":true,"message":...}.
func (c *Context) Message(message string) {
	response.Message(c.W, message)
}

// Error sends {"success":false,"message":...}.
func (c *Context) Error(code int, message string) {
	response.Error(c.W, code, message)
}

func (c *Context) Redirect(code int, url string) {
	http.Redirect(c.W, c.R, url, code)
}
