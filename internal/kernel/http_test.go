package kernel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settledGateway struct{}

func (settledGateway) CreateIntent(_ context.Context, amount int64, currency string, _ map[string]string) (payment.Intent, error) {
	return payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: payment.StatusRequiresConfirmation, Amount: amount, Currency: currency}, nil
}

func (settledGateway) RetrieveIntent(_ context.Context, id string) (payment.Intent, error) {
	return payment.Intent{ID: id, Status: payment.StatusSucceeded}, nil
}

func (settledGateway) ConfirmIntent(_ context.Context, id string) (payment.Intent, error) {
	return payment.Intent{ID: id, Status: payment.StatusSucceeded}, nil
}

type fixture struct {
	handler http.Handler
	store   *repositories.Store
	alice   models.User
	bob     models.User
	mug     models.Product
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	store := repositories.New(db)
	ctx := context.Background()

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	f := &fixture{store: store}
	f.alice = models.User{Username: "alice", Email: "alice@example.com", Password: hash}
	f.bob = models.User{Username: "bob", Email: "bob@example.com", Password: hash}
	require.NoError(t, store.Users.Create(ctx, &f.alice))
	require.NoError(t, store.Users.Create(ctx, &f.bob))

	admin := models.Admin{Username: "root", Email: "root@example.com", Password: hash, Roles: models.NewRoleSet(models.RoleAdmin)}
	require.NoError(t, store.Admins.Create(ctx, &admin))

	f.mug = models.Product{Name: "Mug", Description: "Stoneware", Price: decimal.RequireFromString("10.00"), Category: "kitchen"}
	require.NoError(t, store.Products.Create(ctx, &f.mug))

	k := kernel.NewHTTPKernel(kernel.Deps{DB: db, Gateway: settledGateway{}, PollAttempts: 1})
	f.handler = k.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, username string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "Bearer "+out.Token, rec.Header().Get("Authorization"))
	return out.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestPublicCatalogue(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mug")

	rec = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", f.alice.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, err := auth.GenerateRefreshToken("alice")
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", f.alice.ID), refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRefuseUsers(t *testing.T) {
	f := setup(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", f.mug.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := f.login(t, "root")
	rec = f.do(t, http.MethodGet, "/api/auth/admin/users", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartOwnership(t *testing.T) {
	f := setup(t)
	alice := f.login(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/cart/add", alice, map[string]any{
		"userId": f.alice.ID, "productId": f.mug.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", f.alice.ID), alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Mug")

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", f.bob.ID), alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := f.login(t, "root")
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/cart/%d", f.alice.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutEndToEnd(t *testing.T) {
	f := setup(t)
	alice := f.login(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/cart/add", alice, map[string]any{
		"userId": f.alice.ID, "productId": f.mug.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/orders/checkout", alice, map[string]any{
		"userId":          f.alice.ID,
		"paymentIntentId": "pi_test",
		"shippingAddress": map[string]string{"fullName": "Alice", "streetAddress": "1 Main St", "city": "Springfield", "postalCode": "12345"},
		"cartItems":       []map[string]any{{"productId": f.mug.ID, "quantity": 3, "price": 1000}},
		"amount":          3000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var placed struct {
		OrderID uint `json:"orderId"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.True(t, placed.Success)
	require.NotZero(t, placed.OrderID)

	order, err := f.store.Orders.FindByID(context.Background(), placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", order.Total.StringFixed(2))
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	cart, err := f.store.Carts.ForUser(context.Background(), f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	// Another customer may not read or cancel it.
	bob := f.login(t, "bob")
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", placed.OrderID), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/orders/%d/cancel", placed.OrderID), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	for _, userID := range []uint{f.bob.ID, f.alice.ID} {
		rec = f.do(t, http.MethodPost, "/orders/confirm-payment-intent", bob, map[string]any{
			"userId": userID, "paymentIntentId": "pi_test",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/orders/confirm-payment-intent", alice, map[string]any{
		"userId": f.alice.ID, "paymentIntentId": "pi_test",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/orders/%d/cancel", placed.OrderID), alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Order cancelled successfully")

	// A sold product stays in the catalogue.
	root := f.login(t, "root")
	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", f.mug.ID), root, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Product has existing orders and cannot be deleted")
}

func TestRouteTableNamesEveryRoute(t *testing.T) {
	db := testdb.New(t)
	k := kernel.NewHTTPKernel(kernel.Deps{DB: db})

	seen := map[string]bool{}
	for _, r := range k.Router().Routes() {
		assert.NotEmpty(t, r.Name, "%s %s", r.Method, r.Path)
		seen[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/auth/login",
		"GET /api/products/search",
		"POST /orders/checkout",
		"GET /orders/orders/{userId}",
		"POST /reset-password",
		"POST /contact",
		"GET /metrics",
	} {
		assert.True(t, seen[want], want)
	}
}
