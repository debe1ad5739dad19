package seeders_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllIsRepeatable(t *testing.T) {
	config.Set("ADMIN_USERNAME", "boss")
	config.Set("ADMIN_EMAIL", "boss@example.com")
	config.Set("ADMIN_PASSWORD", "hunter2")
	t.Cleanup(func() { config.Set("ADMIN_PASSWORD", "") })

	db := testdb.New(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, db, &out))
	require.NoError(t, seeders.RunAll(ctx, db, &out))
	assert.Contains(t, out.String(), "Running seeder: admin")

	store := repositories.New(db)
	admin, err := store.Admins.FindByUsername(ctx, "boss")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(admin.Password, "hunter2"))
	assert.True(t, admin.Roles.Has("ADMIN"))

	products, err := store.Products.All(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestAdminSkippedWithoutPassword(t *testing.T) {
	config.Set("ADMIN_USERNAME", "nobody")
	config.Set("ADMIN_PASSWORD", "")

	db := testdb.New(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, db, &out))

	_, err := repositories.New(db).Admins.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
