package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordReset_NewRequestReplacesPendingToken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	notifier := &fakeNotifier{}
	svc := services.NewPasswordResetService(store, notifier, time.Hour, "http://shop.test/")

	t1, err := svc.Request(ctx, "alice@example.com")
	require.NoError(t, err)
	t2, err := svc.Request(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	err = svc.Validate(ctx, t1)
	requireKind(t, err, services.KindValidation)
	assert.Equal(t, "Invalid token", services.MessageOf(err))
	assert.NoError(t, svc.Validate(ctx, t2))

	require.Equal(t, 2, notifier.count())
	assert.Equal(t, "http://shop.test/auth/reset/"+t2, notifier.sent[1].link)
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc := services.NewPasswordResetService(newStore(t), &fakeNotifier{}, time.Hour, "http://shop.test")

	_, err := svc.Request(ctx, "nobody@example.com")
	requireKind(t, err, services.KindNotFound)
	assert.Equal(t, "User not found with email: nobody@example.com", services.MessageOf(err))

	_, err = svc.Request(ctx, "  ")
	requireKind(t, err, services.KindValidation)
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")

	now := time.Now()
	clock := func() time.Time { return now }
	svc := services.NewPasswordResetService(store, &fakeNotifier{}, time.Hour, "http://shop.test").WithClock(clock)

	token, err := svc.Request(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Validate(ctx, token))

	now = now.Add(time.Hour + time.Second)
	err = svc.Validate(ctx, token)
	requireKind(t, err, services.KindValidation)
	assert.Equal(t, "Token has expired", services.MessageOf(err))

	err = svc.Reset(ctx, token, "new-secret")
	assert.Equal(t, "Token has expired", services.MessageOf(err))
}

func TestPasswordReset_ResetChangesPasswordAndConsumesToken(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store, "alice", "alice@example.com")
	svc := services.NewPasswordResetService(store, &fakeNotifier{}, time.Hour, "http://shop.test")

	token, err := svc.Request(ctx, "alice@example.com")
	require.NoError(t, err)

	err = svc.Reset(ctx, token, "")
	requireKind(t, err, services.KindValidation)
	assert.Equal(t, "Token and new password are required", services.MessageOf(err))

	require.NoError(t, svc.Reset(ctx, token, "n3w-pass"))

	reloaded, err := store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(reloaded.Password, "n3w-pass"))
	assert.False(t, auth.CheckPassword(reloaded.Password, "secret"))

	err = svc.Reset(ctx, token, "again")
	assert.Equal(t, "Invalid token", services.MessageOf(err))
}

func TestPasswordReset_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	seedUser(t, store, "bob", "bob@example.com")

	now := time.Now()
	svc := services.NewPasswordResetService(store, &fakeNotifier{}, time.Hour, "http://shop.test").
		WithClock(func() time.Time { return now })

	stale, err := svc.Request(ctx, "alice@example.com")
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)
	fresh, err := svc.Request(ctx, "bob@example.com")
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, "Invalid token", services.MessageOf(svc.Validate(ctx, stale)))
	assert.NoError(t, svc.Validate(ctx, fresh))
}

func TestPasswordReset_MailFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store, "alice", "alice@example.com")
	svc := services.NewPasswordResetService(store, &fakeNotifier{err: assert.AnError}, time.Hour, "http://shop.test")

	_, err := svc.Request(ctx, "alice@example.com")
	requireKind(t, err, services.KindInternal)
	assert.True(t, strings.HasPrefix(services.MessageOf(err), "Failed to send"))
}
