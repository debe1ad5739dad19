package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type CartController struct {
	carts *services.CartService
	guard *Guard
}

func NewCartController(carts *services.CartService, guard *Guard) *CartController {
	return &CartController{carts: carts, guard: guard}
}

type cartAddRequest struct {
	UserID    uint `json:"userId"`
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type cartUpdateRequest struct {
	UserID   uint `json:"userId"`
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

// Add → POST /api/cart/add
func (cc *CartController) Add(c *ctx.Context) {
	var in cartAddRequest
	if !c.BindJSON(&in) {
		return
	}
	if in.UserID != 0 && !cc.guard.Owns(c, in.UserID) {
		return
	}

	line, err := cc.carts.Add(c.Context(), in.UserID, in.ProductID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	logger.WithCtx(c.Context()).Info("cart: item added", "user_id", in.UserID, "product_id", in.ProductID, "quantity", line.Quantity)
	c.JSON(http.StatusOK, line)
}

// Update → PUT /api/cart/update
func (cc *CartController) Update(c *ctx.Context) {
	var in cartUpdateRequest
	if !c.BindJSON(&in) {
		return
	}
	if in.UserID != 0 && !cc.guard.Owns(c, in.UserID) {
		return
	}

	line, removed, err := cc.carts.Update(c.Context(), in.UserID, in.ItemID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	if removed {
		c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Cart item removed"})
		return
	}
	c.JSON(http.StatusOK, line)
}

// Remove → DELETE /api/cart/remove/{itemId}?userId=
func (cc *CartController) Remove(c *ctx.Context) {
	itemID, ok := c.ParamUint("itemId")
	if !ok {
		return
	}
	userID := c.QueryUint("userId")
	if userID != 0 && !cc.guard.Owns(c, userID) {
		return
	}

	if err := cc.carts.Remove(c.Context(), userID, itemID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Show → GET /api/cart/{userId}
func (cc *CartController) Show(c *ctx.Context) {
	userID, ok := c.ParamUint("userId")
	if !ok || !cc.guard.Owns(c, userID) {
		return
	}

	view, err := cc.carts.View(c.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
