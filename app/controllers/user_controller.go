package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type UserController struct {
	users *services.UserService
	guard *Guard
}

func NewUserController(users *services.UserService, guard *Guard) *UserController {
	return &UserController{users: users, guard: guard}
}

// Show → GET /users/{id}
func (uc *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok || !uc.guard.Owns(c, id) {
		return
	}

	u, err := uc.users.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update → PUT /users/{id}
func (uc *UserController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok || !uc.guard.Owns(c, id) {
		return
	}

	var in services.ProfileUpdate
	if !c.BindJSON(&in) {
		return
	}

	u, err := uc.users.UpdateProfile(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
