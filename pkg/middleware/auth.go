package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// PublicRoute marks a path the gate skips without looking at the token.
// Method, when set, restricts the skip to that HTTP method. Exact requires an
// exact path match instead of a prefix match.
type PublicRoute struct {
	Prefix string
	Method string
	Exact  bool
}

func (p PublicRoute) matches(r *http.Request) bool {
	if p.Method != "" && p.Method != r.Method {
		return false
	}
	if p.Exact {
		return r.URL.Path == p.Prefix
	}
	return strings.HasPrefix(r.URL.Path, p.Prefix)
}

// DefaultPublicRoutes is the canonical allow-list for the storefront API.
var DefaultPublicRoutes = []PublicRoute{
	{Prefix: "/api/auth/login"},
	{Prefix: "/api/auth/register", Exact: true},
	{Prefix: "/api/auth/refresh"},
	{Prefix: "/api/auth/failure"},
	{Prefix: "/api/auth/oauth2/"},
	{Prefix: "/oauth2/"},
	{Prefix: "/login/oauth2/code/"},
	{Prefix: "/reset-password"},
	{Prefix: "/contact"},
	{Prefix: "/favicon.ico"},
	{Prefix: "/metrics"},
	{Prefix: "/health"},
	{Prefix: "/api/products", Method: http.MethodGet},
}

// Authenticate decodes the bearer token, if any, and attaches a Principal to
// the request context. It never rejects a request: missing or bad tokens
// leave the request anonymous, and rbac decides per route.
func Authenticate(public []PublicRoute) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range public {
				if p.matches(r) {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.Parse(token)
			if err == nil && !claims.IsAccess() {
				err = auth.ErrInvalidToken
			}
			if err != nil || claims.Subject == "" {
				logger.WithCtx(r.Context()).Warn("bearer token rejected",
					"path", r.URL.Path,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{Username: claims.Subject, Roles: claims.Roles})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header. Websocket upgrades may pass
// the token as ?token= since browsers cannot set headers on them.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
