package middleware

import "context"

// Principal is the authenticated caller attached to a request context by
// Authenticate.
type Principal struct {
	Username string
	Roles    []string
}

// Authorities returns the roles in ROLE_<name> form.
func (p Principal) Authorities() []string {
	out := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		out = append(out, "ROLE_"+r)
	}
	return out
}

// HasRole reports whether the principal carries role (with or without the
// ROLE_ prefix).
func (p Principal) HasRole(role string) bool {
	for _, a := range p.Authorities() {
		if a == role || a == "ROLE_"+role {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller, or false for anonymous requests.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
