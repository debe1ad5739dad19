package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Email      string `json:"email" validate:"required,email"`
	PostalCode string `json:"postalCode" validate:"postal"`
	Quantity   int    `json:"quantity" validate:"min=1"`
}

func TestJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.io","postalCode":"560 001","quantity":2}`))

	var p profile
	errs, err := bind.JSON(req, &p)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, 2, p.Quantity)
}

func TestJSONFieldErrorsUseJSONNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","postalCode":"AB1","quantity":0}`))

	var p profile
	errs, err := bind.JSON(req, &p)
	require.NoError(t, err)
	assert.Equal(t, "Valid email is required", errs["email"])
	assert.Contains(t, errs, "postalCode")
	assert.Equal(t, "quantity must be at least 1", errs["quantity"])
}

func TestJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	var p profile
	errs, err := bind.JSON(req, &p)
	assert.Error(t, err)
	assert.Nil(t, errs)
}
