// Package kernel assembles the storefront's HTTP handler: global middleware,
// infrastructure endpoints and the API routes, all bound to one set of
// services.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
	"gorm.io/gorm"
)

// Deps are the outside collaborators the kernel binds services to. Any of
// Gateway, OAuth, Images, Notifier, Pool and Hub may be nil; the features
// that need them then report themselves unavailable.
type Deps struct {
	DB       *gorm.DB
	Gateway  payment.Gateway
	OAuth    oauth.Provider
	States   cache.StateStore
	Images   storage.ImageStore
	Notifier services.Notifier
	Pool     *workerpool.Pool
	Hub      *ws.Hub

	// Polling overrides the checkout settlement poll; zero keeps 3 × 1s.
	PollAttempts int
	PollInterval time.Duration
}

// Services is the service layer the kernel built, exposed for the CLI and
// scheduled jobs.
type Services struct {
	Auth     *services.AuthService
	OAuth    *services.OAuthService
	Cart     *services.CartService
	Products *services.ProductService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Users    *services.UserService
	Resets   *services.PasswordResetService
	Contact  *services.ContactService
}

type HTTPKernel struct {
	router   *router.Router
	services Services
}

// NewServices binds the service layer to d.
func NewServices(d Deps) Services {
	store := repositories.New(d.DB)
	states := d.States
	if states == nil {
		states = cache.NewStateStore()
	}

	authSvc := services.NewAuthService(store)
	checkout := services.NewCheckoutService(store, d.Gateway, d.Notifier, d.Pool)
	if d.PollAttempts > 0 {
		checkout.WithPolling(d.PollAttempts, d.PollInterval)
	}

	return Services{
		Auth:     authSvc,
		OAuth:    services.NewOAuthService(d.OAuth, states, config.OAuthStateTTL(), authSvc),
		Cart:     services.NewCartService(store),
		Products: services.NewProductService(store, d.Images),
		Checkout: checkout,
		Orders:   services.NewOrderService(store),
		Users:    services.NewUserService(store),
		Resets:   services.NewPasswordResetService(store, d.Notifier, config.ResetTokenTTL(), config.FrontendURL()),
		Contact:  services.NewContactService(store),
	}
}

func NewHTTPKernel(d Deps) *HTTPKernel {
	svc := NewServices(d)
	guard := controllers.NewGuard(svc.Auth)

	r := router.New()

	// Global middleware (outermost → innermost):
	//  1. metrics    total latency including everything below
	//  2. recovery   panics become 500 envelopes
	//  3. request id before anything logs
	//  4. logger     access log with request_id
	//  5. CORS
	//  6. rate limit reject abusers before auth work
	//  7. auth gate  attaches the principal, never rejects
	corsOpts := middleware.DefaultCORSOptions(config.CORSOrigins())
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOpts))
	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute))
	r.Use(middleware.Authenticate(middleware.DefaultPublicRoutes))

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", health(d.DB))
	r.Handle(http.MethodGet, "/storage/*", "storage.files",
		http.StripPrefix("/storage/", http.FileServer(http.Dir(config.StorageLocalRoot()))))

	if d.Hub != nil {
		r.Handle(http.MethodGet, "/ws/admin/orders", "ws.orders", d.Hub, rbac.RequireRole(models.RoleAdmin))
	}

	routes.RegisterAPI(r, routes.Handlers{
		Auth:     controllers.NewAuthController(svc.Auth, svc.OAuth, config.FrontendURL()),
		Cart:     controllers.NewCartController(svc.Cart, guard),
		Products: controllers.NewProductController(svc.Products),
		Orders:   controllers.NewOrderController(svc.Checkout, svc.Orders, guard),
		Users:    controllers.NewUserController(svc.Users, guard),
		Resets:   controllers.NewPasswordResetController(svc.Resets),
		Contact:  controllers.NewContactController(svc.Contact),
	})

	return &HTTPKernel{router: r, services: svc}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }
func (k *HTTPKernel) Router() *router.Router { return k.router }
func (k *HTTPKernel) Services() Services     { return k.services }

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if cache.RDB != nil {
			status["cache"] = "ok"
			if err := cache.RDB.Ping(r.Context()).Err(); err != nil {
				status["cache"] = "unreachable"
			}
		}
		response.JSON(w, code, status)
	}
}

// ── Live order feed ──────────────────────────────────────────────────────────

// FeedMessage is one frame on the admin order feed.
type FeedMessage struct {
	Type    string `json:"type"`
	OrderID uint   `json:"orderId"`
	UserID  uint   `json:"userId"`
	Status  string `json:"status"`
	Total   string `json:"total"`
}

// ListenOrderFeed publishes order events to hub. Call it once per process.
func ListenOrderFeed(hub *ws.Hub) {
	for _, name := range []string{event.OrderPlaced, event.OrderCancelled} {
		event.Listen(name, func(_ context.Context, payload any) {
			o, ok := payload.(models.CustomerOrder)
			if !ok {
				return
			}
			hub.Publish(FeedMessage{
				Type:    name,
				OrderID: o.ID,
				UserID:  o.UserID,
				Status:  o.Status,
				Total:   o.Total.StringFixed(2),
			})
		})
	}
}
