package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type AuthController struct {
	auth  *services.AuthService
	oauth *services.OAuthService

	frontendURL string
}

func NewAuthController(auth *services.AuthService, oauth *services.OAuthService, frontendURL string) *AuthController {
	return &AuthController{auth: auth, oauth: oauth, frontendURL: strings.TrimRight(frontendURL, "/")}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login → POST /api/auth/login
func (a *AuthController) Login(c *ctx.Context) {
	var in loginRequest
	if !c.BindJSON(&in) {
		return
	}

	sess, err := a.auth.Login(c.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetHeader("Authorization", "Bearer "+sess.Token)
	c.JSON(http.StatusOK, sess)
}

// Register → POST /api/auth/register
func (a *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	sess, err := a.auth.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RegisterAdmin → POST /api/auth/register/admin (ADMIN)
func (a *AuthController) RegisterAdmin(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	sess, err := a.auth.RegisterAdmin(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// AdminUsers → GET /api/auth/admin/users (ADMIN)
func (a *AuthController) AdminUsers(c *ctx.Context) {
	rows, err := a.auth.AdminUsersReport(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func bearer(c *ctx.Context) string {
	h := c.R.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// Validate → GET /api/auth/validate
func (a *AuthController) Validate(c *ctx.Context) {
	acct, err := a.auth.Validate(c.Context(), bearer(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"user": acct})
}

// User → GET /api/auth/user
func (a *AuthController) User(c *ctx.Context) {
	token := bearer(c)
	if token == "" {
		c.Error(http.StatusUnauthorized, "Invalid or missing Authorization header")
		return
	}

	acct, err := a.auth.Validate(c.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"success": true, "user": acct, "isNewUser": false})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh → POST /api/auth/refresh
func (a *AuthController) Refresh(c *ctx.Context) {
	var in refreshRequest
	if !c.BindJSON(&in) {
		return
	}

	sess, err := a.auth.Refresh(c.Context(), in.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]string{"token": sess.Token, "refreshToken": sess.RefreshToken})
}

// Failure → GET /api/auth/failure
func (a *AuthController) Failure(c *ctx.Context) {
	logger.WithCtx(c.Context()).Error("auth: authentication failure handled")
	c.Error(http.StatusUnauthorized, "Authentication failed")
}

// ── OAuth2 ───────────────────────────────────────────────────────────────────

// GoogleBegin → GET /oauth2/authorization/google
func (a *AuthController) GoogleBegin(c *ctx.Context) {
	authURL, err := a.oauth.Begin(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback → GET /login/oauth2/code/google
//
// The browser lands here from Google; it is sent on to the storefront with
// the token pair, or to the failure page.
func (a *AuthController) GoogleCallback(c *ctx.Context) {
	sess, _, err := a.oauth.Complete(c.Context(), c.Query("state"), c.R.URL.Query())
	if err != nil {
		logger.WithCtx(c.Context()).Warn("auth: oauth2 callback failed", "error", err)
		c.Redirect(http.StatusFound, a.frontendURL+"/auth/failure")
		return
	}

	q := url.Values{}
	q.Set("token", sess.Token)
	q.Set("refreshToken", sess.RefreshToken)
	c.Redirect(http.StatusFound, a.frontendURL+"/auth/success?"+q.Encode())
}

type oauthSuccessRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// OAuthSuccess → POST /api/auth/oauth2/success
//
// Single-page clients that receive the callback themselves post the state
// and code here instead.
func (a *AuthController) OAuthSuccess(c *ctx.Context) {
	var in oauthSuccessRequest
	if !c.BindJSON(&in) {
		return
	}

	params := url.Values{}
	params.Set("state", in.State)
	params.Set("code", in.Code)

	sess, isNew, err := a.oauth.Complete(c.Context(), in.State, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{
		"token":        sess.Token,
		"refreshToken": sess.RefreshToken,
		"user":         sess.User,
		"isNewUser":    isNew,
	})
}
