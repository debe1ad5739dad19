package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAuthService(newStore(t))

	sess, err := svc.Register(ctx, services.RegisterInput{Username: "Alice", Password: "pw", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "alice", sess.User.Username)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, []string{models.RoleUser}, sess.User.Roles)

	login, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", auth.ExtractUsername(login.Token))
	assert.Equal(t, []string{models.RoleUser}, auth.ExtractRoles(login.Token))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedAdmin(t, store, "root", "root@example.com")
	svc := services.NewAuthService(store)
	_, err := svc.Register(ctx, services.RegisterInput{Username: "bob", Password: "pw", Email: "bob@example.com"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   services.RegisterInput
		kind services.Kind
		msg  string
	}{
		{"missing username", services.RegisterInput{Password: "pw", Email: "x@example.com"}, services.KindValidation, "Username is required"},
		{"missing password", services.RegisterInput{Username: "x", Email: "x@example.com"}, services.KindValidation, "Password is required"},
		{"bad email", services.RegisterInput{Username: "x", Password: "pw", Email: "not-an-email"}, services.KindValidation, "Valid email is required"},
		{"taken username", services.RegisterInput{Username: "BOB", Password: "pw", Email: "new@example.com"}, services.KindValidation, "Username already exists"},
		{"taken email", services.RegisterInput{Username: "new", Password: "pw", Email: "bob@example.com"}, services.KindValidation, "Email already exists"},
		{"admin username", services.RegisterInput{Username: "root", Password: "pw", Email: "new@example.com"}, services.KindValidation, "Username already exists"},
		{"admin role", services.RegisterInput{Username: "sneaky", Password: "pw", Email: "sneaky@example.com", Role: "admin"}, services.KindForbidden, "Admin registration is restricted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			requireKind(t, err, tc.kind)
			assert.Equal(t, tc.msg, services.MessageOf(err))
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	svc := services.NewAuthService(store)

	_, err := svc.Login(ctx, "alice", "wrong")
	requireKind(t, err, services.KindUnauthorized)
	assert.Equal(t, "Invalid username or password", services.MessageOf(err))

	_, err = svc.Login(ctx, "ghost", "secret")
	requireKind(t, err, services.KindUnauthorized)

	_, err = svc.Login(ctx, "", "secret")
	requireKind(t, err, services.KindValidation)
}

func TestAdminLoginCarriesRoles(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedAdmin(t, store, "root", "root@example.com")
	svc := services.NewAuthService(store)

	sess, err := svc.Login(ctx, "root", "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, sess.User.Roles)
	assert.Contains(t, auth.ExtractRoles(sess.Token), models.RoleAdmin)

	reg, err := svc.RegisterAdmin(ctx, services.RegisterInput{Username: "ops", Password: "pw", Email: "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, reg.User.Roles)
}

func TestValidateAndRefresh(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	svc := services.NewAuthService(store)

	sess, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	acct, err := svc.Validate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Username)

	_, err = svc.Validate(ctx, "garbage")
	requireKind(t, err, services.KindUnauthorized)
	assert.Equal(t, "Invalid or expired token", services.MessageOf(err))

	refreshed, err := svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", auth.ExtractUsername(refreshed.Token))
	assert.Equal(t, []string{models.RoleUser}, auth.ExtractRoles(refreshed.Token))

	_, err = svc.Refresh(ctx, "garbage")
	requireKind(t, err, services.KindUnauthorized)
	assert.Equal(t, "Invalid refresh token", services.MessageOf(err))

	_, err = svc.Refresh(ctx, sess.Token)
	requireKind(t, err, services.KindUnauthorized)
	_, err = svc.Validate(ctx, sess.RefreshToken)
	requireKind(t, err, services.KindUnauthorized)
}

func TestValidateUnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := services.NewAuthService(newStore(t))

	token, err := auth.GenerateAccessToken("vanished", []string{models.RoleUser})
	require.NoError(t, err)

	_, err = svc.Validate(ctx, token)
	requireKind(t, err, services.KindNotFound)
	assert.Equal(t, "User not found", services.MessageOf(err))
}

func TestAdminUsersReport(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	alice := seedUser(t, store, "alice", "alice@example.com")
	seedUser(t, store, "bob", "bob@example.com")
	mug := seedProduct(t, store, "Mug", "5.00")

	checkout := services.NewCheckoutService(store, settled(), nil, nil).WithPolling(1, 0)
	order, err := checkout.Checkout(ctx, services.CheckoutInput{
		UserID:          alice.ID,
		PaymentIntentID: "pi_report",
		ShippingAddress: models.ShippingAddress{FullName: "Alice A", StreetAddress: "1 Main St", City: "Springfield", PostalCode: "12345"},
		CartItems:       []services.CheckoutItem{{ProductID: mug.ID, Quantity: 1, Price: cents(500)}},
	})
	require.NoError(t, err)

	rows, err := services.NewAuthService(store).AdminUsersReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byEmail := map[string]services.UserReport{}
	for _, r := range rows {
		byEmail[r.Email] = r
	}
	assert.Equal(t, []string{fmt.Sprintf("%d: PAID", order.ID)}, byEmail["alice@example.com"].Orders)
	assert.Equal(t, "Alice A, 1 Main St, Springfield, 12345", byEmail["alice@example.com"].ShippingAddress)
	assert.Empty(t, byEmail["bob@example.com"].Orders)
	assert.Equal(t, "N/A", byEmail["bob@example.com"].ShippingAddress)
}

func TestProvisionOAuthUser(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "janedoe", "taken@example.com")
	svc := services.NewAuthService(store)

	sess, isNew, err := svc.ProvisionOAuthUser(ctx, oauth.Identity{Provider: "google", Email: "Jane@Example.com", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "janedoe1", sess.User.Username)
	assert.Equal(t, "jane@example.com", sess.User.Email)

	again, isNew, err := svc.ProvisionOAuthUser(ctx, oauth.Identity{Provider: "google", Email: "jane@example.com", Name: "Jane Doe"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, sess.User.ID, again.User.ID)

	_, _, err = svc.ProvisionOAuthUser(ctx, oauth.Identity{Provider: "google"})
	requireKind(t, err, services.KindValidation)
}

func TestUniqueUsername(t *testing.T) {
	ctx := context.Background()
	used := map[string]bool{"jose": true, "jose1": true}
	taken := func(_ context.Context, name string) (bool, error) { return used[name], nil }

	name, err := services.UniqueUsername(ctx, taken, "José!")
	require.NoError(t, err)
	assert.Equal(t, "jos", name)

	name, err = services.UniqueUsername(ctx, taken, "Jose")
	require.NoError(t, err)
	assert.Equal(t, "jose2", name)

	name, err = services.UniqueUsername(ctx, taken, "***")
	require.NoError(t, err)
	assert.Equal(t, "user", name)

	boom := errors.New("db down")
	_, err = services.UniqueUsername(ctx, func(context.Context, string) (bool, error) { return false, boom }, "x")
	assert.ErrorIs(t, err, boom)
}
