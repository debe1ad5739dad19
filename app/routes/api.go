// Package routes registers the storefront's HTTP surface.
package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Handlers is every controller the API routes dispatch to.
type Handlers struct {
	Auth     *controllers.AuthController
	Cart     *controllers.CartController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Users    *controllers.UserController
	Resets   *controllers.PasswordResetController
	Contact  *controllers.ContactController
}

func RegisterAPI(r *router.Router, h Handlers) {
	admin := rbac.RequireRole(models.RoleAdmin)

	// ── Auth ─────────────────────────────────────────────────────────────────
	auth := r.Group("/api/auth")
	auth.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))
	auth.Post("/register", "auth.register", ctx.Wrap(h.Auth.Register))
	auth.Post("/register/admin", "auth.register.admin", ctx.Wrap(h.Auth.RegisterAdmin), admin)
	auth.Get("/admin/users", "auth.admin.users", ctx.Wrap(h.Auth.AdminUsers), admin)
	auth.Get("/validate", "auth.validate", ctx.Wrap(h.Auth.Validate))
	auth.Post("/refresh", "auth.refresh", ctx.Wrap(h.Auth.Refresh))
	auth.Get("/user", "auth.user", ctx.Wrap(h.Auth.User))
	auth.Post("/oauth2/success", "auth.oauth2.success", ctx.Wrap(h.Auth.OAuthSuccess))
	auth.Get("/failure", "auth.failure", ctx.Wrap(h.Auth.Failure))

	r.Get("/oauth2/authorization/google", "oauth2.google", ctx.Wrap(h.Auth.GoogleBegin))
	r.Get("/login/oauth2/code/google", "oauth2.google.callback", ctx.Wrap(h.Auth.GoogleCallback))

	// ── Cart ─────────────────────────────────────────────────────────────────
	cart := r.Group("/api/cart", rbac.RequireAuth)
	cart.Post("/add", "cart.add", ctx.Wrap(h.Cart.Add))
	cart.Put("/update", "cart.update", ctx.Wrap(h.Cart.Update))
	cart.Delete("/remove/{itemId}", "cart.remove", ctx.Wrap(h.Cart.Remove))
	cart.Get("/{userId}", "cart.show", ctx.Wrap(h.Cart.Show))

	// ── Catalogue ────────────────────────────────────────────────────────────
	products := r.Group("/api/products")
	products.Get("", "products.index", ctx.Wrap(h.Products.Index))
	products.Get("/search", "products.search", ctx.Wrap(h.Products.Search))
	products.Get("/category/{category}", "products.category", ctx.Wrap(h.Products.ByCategory))
	products.Get("/{id}", "products.show", ctx.Wrap(h.Products.Show))
	products.Post("/upload", "products.upload", ctx.Wrap(h.Products.Upload), admin)
	products.Put("/{id}", "products.update", ctx.Wrap(h.Products.Update), admin)
	products.Delete("/{id}", "products.destroy", ctx.Wrap(h.Products.Destroy), admin)

	// ── Orders ───────────────────────────────────────────────────────────────
	orders := r.Group("/orders", rbac.RequireAuth)
	orders.Post("/create-payment-intent", "orders.intent.create", ctx.Wrap(h.Orders.CreatePaymentIntent))
	orders.Post("/confirm-payment-intent", "orders.intent.confirm", ctx.Wrap(h.Orders.ConfirmPaymentIntent))
	orders.Post("/checkout", "orders.checkout", ctx.Wrap(h.Orders.Checkout))
	orders.Get("/orders/{userId}", "orders.user", ctx.Wrap(h.Orders.ForUser))
	orders.Get("/{id}", "orders.show", ctx.Wrap(h.Orders.Show))
	orders.Put("/{id}/cancel", "orders.cancel", ctx.Wrap(h.Orders.Cancel))

	// ── Users ────────────────────────────────────────────────────────────────
	users := r.Group("/users", rbac.RequireAuth)
	users.Get("/{id}", "users.show", ctx.Wrap(h.Users.Show))
	users.Put("/{id}", "users.update", ctx.Wrap(h.Users.Update))

	// ── Password reset ───────────────────────────────────────────────────────
	reset := r.Group("/reset-password")
	reset.Post("", "reset.request", ctx.Wrap(h.Resets.Request))
	reset.Get("/validate/{token}", "reset.validate", ctx.Wrap(h.Resets.Validate))
	reset.Post("/reset", "reset.reset", ctx.Wrap(h.Resets.Reset))

	// ── Contact ──────────────────────────────────────────────────────────────
	r.Post("/contact", "contact.submit", ctx.Wrap(h.Contact.Submit))
	r.Get("/api/admin/contact", "contact.index", ctx.Wrap(h.Contact.Index), admin)
}
