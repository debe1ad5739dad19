package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() services.ProductInput {
	return services.ProductInput{
		Name:             "Teapot",
		Description:      "Cast iron",
		Price:            decimal.RequireFromString("29.999"),
		Category:         "kitchen",
		ImageName:        "my teapot.png",
		ImageContentType: "image/png",
		Image:            []byte("\x89PNG"),
	}
}

func TestProduct_CreateUploadsImage(t *testing.T) {
	ctx := context.Background()
	images := &fakeImages{}
	svc := services.NewProductService(newStore(t), images)

	p, err := svc.Create(ctx, validProduct())
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "30.00", p.Price.StringFixed(2))

	require.Len(t, images.keys, 1)
	assert.True(t, strings.HasPrefix(images.keys[0], "products/"))
	assert.True(t, strings.HasSuffix(images.keys[0], "_my_teapot.png"))
	assert.Equal(t, "https://cdn.example.com/"+images.keys[0], p.ImageURL)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Teapot", got.Name)
}

func TestProduct_CreateValidation(t *testing.T) {
	ctx := context.Background()
	images := &fakeImages{}
	svc := services.NewProductService(newStore(t), images)

	cases := []struct {
		name   string
		mutate func(*services.ProductInput)
		msg    string
	}{
		{"no file", func(in *services.ProductInput) { in.Image = nil }, "Please select a file to upload."},
		{"no name", func(in *services.ProductInput) { in.Name = " " }, "Product name is required."},
		{"no description", func(in *services.ProductInput) { in.Description = "" }, "Description is required."},
		{"zero price", func(in *services.ProductInput) { in.Price = decimal.Zero }, "Price must be greater than 0."},
		{"no category", func(in *services.ProductInput) { in.Category = "" }, "Category is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProduct()
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			requireKind(t, err, services.KindValidation)
			assert.Equal(t, tc.msg, services.MessageOf(err))
		})
	}
	assert.Empty(t, images.keys)
}

func TestProduct_UploadFailure(t *testing.T) {
	svc := services.NewProductService(newStore(t), &fakeImages{err: assert.AnError})
	_, err := svc.Create(context.Background(), validProduct())
	requireKind(t, err, services.KindInternal)
	assert.Equal(t, "Failed to upload file", services.MessageOf(err))
}

func TestProduct_UpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewProductService(store, &fakeImages{})
	p := seedProduct(t, store, "Mug", "5.00")

	price := decimal.RequireFromString("6.25")
	updated, err := svc.Update(ctx, p.ID, services.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Mug", updated.Name)
	assert.Equal(t, "6.25", updated.Price.StringFixed(2))

	empty := ""
	_, err = svc.Update(ctx, p.ID, services.ProductPatch{Name: &empty})
	requireKind(t, err, services.KindValidation)

	_, err = svc.Update(ctx, 999, services.ProductPatch{Price: &price})
	requireKind(t, err, services.KindNotFound)
	assert.Equal(t, "Product not found with id: 999", services.MessageOf(err))
}

func TestProduct_DeleteAndLookups(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewProductService(store, &fakeImages{})
	mug := seedProduct(t, store, "Blue Mug", "5.00")
	seedProduct(t, store, "Teapot", "20.00")

	found, err := svc.Search(ctx, "MUG")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mug.ID, found[0].ID)

	byCat, err := svc.ByCategory(ctx, "general")
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	require.NoError(t, svc.Delete(ctx, mug.ID))
	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = svc.Delete(ctx, mug.ID)
	requireKind(t, err, services.KindNotFound)
}

func TestProduct_DeleteRefusedOnceOrdered(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewProductService(store, &fakeImages{})
	alice := seedUser(t, store, "alice", "alice@example.com")
	mug := seedProduct(t, store, "Blue Mug", "5.00")

	order := models.CustomerOrder{
		UserID:          alice.ID,
		OrderDate:       time.Now(),
		Status:          models.OrderStatusPaid,
		Total:           decimal.RequireFromString("5.00"),
		PaymentIntentID: "pi_sold",
		Items:           []models.OrderItem{{ProductID: mug.ID, Price: mug.Price, Quantity: 1}},
	}
	require.NoError(t, store.Orders.Save(ctx, &order))

	err := svc.Delete(ctx, mug.ID)
	requireKind(t, err, services.KindConflict)
	assert.Equal(t, "Product has existing orders and cannot be deleted", services.MessageOf(err))

	kept, err := svc.Get(ctx, mug.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Mug", kept.Name)
}
