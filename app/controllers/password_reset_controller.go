package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type PasswordResetController struct {
	resets *services.PasswordResetService
}

func NewPasswordResetController(resets *services.PasswordResetService) *PasswordResetController {
	return &PasswordResetController{resets: resets}
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirm struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Request → POST /reset-password
func (pc *PasswordResetController) Request(c *ctx.Context) {
	var in resetRequest
	if !c.BindJSON(&in) {
		return
	}
	if _, err := pc.resets.Request(c.Context(), in.Email); err != nil {
		fail(c, err)
		return
	}
	c.Message("Password reset email sent successfully")
}

// Validate → GET /reset-password/validate/{token}
func (pc *PasswordResetController) Validate(c *ctx.Context) {
	if err := pc.resets.Validate(c.Context(), c.Param("token")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Token is valid")
}

// Reset → POST /reset-password/reset
func (pc *PasswordResetController) Reset(c *ctx.Context) {
	var in resetConfirm
	if !c.BindJSON(&in) {
		return
	}
	if err := pc.resets.Reset(c.Context(), in.Token, in.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.Message("Password reset successfully")
}
