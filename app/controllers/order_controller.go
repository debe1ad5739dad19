package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
	guard    *Guard
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService, guard *Guard) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, guard: guard}
}

// CreatePaymentIntent → POST /orders/create-payment-intent
func (oc *OrderController) CreatePaymentIntent(c *ctx.Context) {
	var in services.PaymentIntentInput
	if !c.BindJSON(&in) {
		return
	}
	if !oc.guard.Owns(c, in.UserID) {
		return
	}

	intent, err := oc.checkout.CreatePaymentIntent(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

type confirmIntentRequest struct {
	UserID          uint   `json:"userId" validate:"required"`
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

// ConfirmPaymentIntent → POST /orders/confirm-payment-intent
func (oc *OrderController) ConfirmPaymentIntent(c *ctx.Context) {
	var in confirmIntentRequest
	if !c.BindJSON(&in) {
		return
	}
	if !oc.guard.Owns(c, in.UserID) {
		return
	}

	intent, err := oc.checkout.ConfirmPaymentIntent(c.Context(), in.UserID, in.PaymentIntentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]string{
		"paymentIntentId": intent.ID,
		"status":          intent.Status,
	})
}

// Checkout → POST /orders/checkout
func (oc *OrderController) Checkout(c *ctx.Context) {
	var in services.CheckoutInput
	if !c.BindJSON(&in) {
		return
	}
	if !oc.guard.Owns(c, in.UserID) {
		return
	}

	order, err := oc.checkout.Checkout(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"orderId": order.ID, "success": true})
}

// ForUser → GET /orders/orders/{userId}
func (oc *OrderController) ForUser(c *ctx.Context) {
	userID, ok := c.ParamUint("userId")
	if !ok || !oc.guard.Owns(c, userID) {
		return
	}

	orders, err := oc.orders.ForUser(c.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Show → GET /orders/{id}
func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}

	order, err := oc.orders.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !oc.guard.Owns(c, order.UserID) {
		return
	}
	c.JSON(http.StatusOK, order)
}

// Cancel → PUT /orders/{id}/cancel
func (oc *OrderController) Cancel(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}

	order, err := oc.orders.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !oc.guard.Owns(c, order.UserID) {
		return
	}

	if _, err := oc.orders.Cancel(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Order cancelled successfully")
}
