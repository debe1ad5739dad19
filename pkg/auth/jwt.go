// Package auth issues and validates the signed bearer tokens used by the API.
//
// Access tokens carry the username as subject plus the caller's roles;
// refresh tokens carry the subject only. The typ claim tells them apart, so
// a refresh token is never accepted where an access token is expected.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/storefront/config"
)

// Token types carried in the typ claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims holds the typed JWT payload.
type Claims struct {
	Type  string   `json:"typ"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IsAccess reports an access token.
func (c *Claims) IsAccess() bool { return c.Type == TypeAccess }

var ErrInvalidToken = errors.New("auth: invalid token")

func secret() []byte {
	return []byte(config.JWTSecret())
}

// Issue signs an access token for username with the given roles and
// lifetime.
func Issue(username string, roles []string, ttl time.Duration) (string, error) {
	return issue(TypeAccess, username, roles, ttl)
}

func issue(typ, username string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Type:  typ,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret())
}

// GenerateAccessToken creates a signed access token for the given user.
func GenerateAccessToken(username string, roles []string) (string, error) {
	return Issue(username, roles, config.JWTAccessTTL())
}

// GenerateRefreshToken creates a longer-lived token used to refresh access.
func GenerateRefreshToken(username string) (string, error) {
	return issue(TypeRefresh, username, nil, config.JWTRefreshTTL())
}

// Parse decodes and verifies t. Expired tokens are rejected.
func Parse(t string) (*Claims, error) {
	return parse(t)
}

// ParseRefresh is Parse restricted to refresh tokens.
func ParseRefresh(t string) (*Claims, error) {
	claims, err := parse(t)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parse(t string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))

	token, err := jwt.ParseWithClaims(t, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret(), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractUsername returns the subject of t, or "" when t cannot be verified.
func ExtractUsername(t string) string {
	claims, err := Parse(t)
	if err != nil {
		return ""
	}
	return claims.Subject
}

// ExtractRoles returns the roles carried by t, or nil when t cannot be verified.
func ExtractRoles(t string) []string {
	claims, err := Parse(t)
	if err != nil {
		return nil
	}
	return claims.Roles
}

// IsTokenExpired reports whether t is past its expiry. Tokens that cannot be
// decoded count as expired.
func IsTokenExpired(t string) bool {
	claims, err := parse(t, jwt.WithoutClaimsValidation())
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

// ValidateToken is true when t is an access token belonging to username that
// has not expired.
func ValidateToken(t, username string) bool {
	claims, err := Parse(t)
	if err != nil {
		return false
	}
	return claims.IsAccess() && claims.Subject == username
}
