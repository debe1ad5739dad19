// Package controllers adapts HTTP requests onto the services. Handlers take
// a *ctx.Context and are registered through ctx.Wrap in app/routes.
package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// statusOf maps a service error kind onto its HTTP status.
func statusOf(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindPaymentRequired:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// fail writes err as the failure envelope. Only the client-safe message
// leaves; internal causes are logged.
func fail(c *ctx.Context, err error) {
	status := statusOf(services.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
	}
	c.Error(status, services.MessageOf(err))
}

// Identifier resolves the signed-in username to its account.
type Identifier interface {
	Identify(ctx context.Context, username string) (services.Account, error)
}

// Guard restricts per-user resources to their owner. Admins pass.
type Guard struct {
	accounts Identifier
}

func NewGuard(accounts Identifier) *Guard {
	return &Guard{accounts: accounts}
}

// Owns reports whether the caller may act for userID, writing 401 or 403
// when not.
func (g *Guard) Owns(c *ctx.Context, userID uint) bool {
	p, ok := c.Principal()
	if !ok {
		c.Error(http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if p.HasRole(models.RoleAdmin) {
		return true
	}

	acct, err := g.accounts.Identify(c.Context(), p.Username)
	if err != nil {
		fail(c, err)
		return false
	}
	if acct.ID != userID {
		logger.WithCtx(c.Context()).Warn("access to another user's resource refused",
			"username", p.Username, "user_id", userID)
		c.Error(http.StatusForbidden, "Access denied")
		return false
	}
	return true
}
