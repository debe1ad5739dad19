package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSet_NormalisesAndRoundTrips(t *testing.T) {
	set := models.NewRoleSet("admin", " ADMIN", "support", "")
	assert.Equal(t, models.RoleSet{"ADMIN", "SUPPORT"}, set)
	assert.True(t, set.Has("admin"))
	assert.False(t, set.Has("USER"))

	v, err := set.Value()
	require.NoError(t, err)
	assert.Equal(t, "ADMIN,SUPPORT", v)

	var scanned models.RoleSet
	require.NoError(t, scanned.Scan([]byte("SUPPORT,ADMIN")))
	assert.Equal(t, set, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestProduct_PriceIsJSONNumber(t *testing.T) {
	p := models.Product{Name: "Mug", Price: decimal.RequireFromString("12.50")}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":12.5`)
}

func TestLineTotals(t *testing.T) {
	item := models.OrderItem{Price: decimal.RequireFromString("4.99"), Quantity: 3}
	assert.Equal(t, "14.97", item.LineTotal().StringFixed(2))

	line := models.Cart{Quantity: 2, Product: models.Product{Price: decimal.NewFromInt(5)}}
	assert.Equal(t, "10.00", line.LineTotal().StringFixed(2))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "alice", models.User{Username: "alice"}.DisplayName())
	assert.Equal(t, "Alice A", models.User{Username: "alice", Name: "Alice A"}.DisplayName())
}
