package seeders

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("products", seedProducts)
}

var demoProducts = []models.Product{
	{Name: "Classic Tee", Description: "Soft cotton crew neck", Price: decimal.RequireFromString("19.99"), Category: "clothing"},
	{Name: "Denim Jacket", Description: "Stonewashed, relaxed fit", Price: decimal.RequireFromString("79.00"), Category: "clothing"},
	{Name: "Ceramic Mug", Description: "350ml, dishwasher safe", Price: decimal.RequireFromString("12.50"), Category: "kitchen"},
	{Name: "Chef's Knife", Description: "20cm stainless steel blade", Price: decimal.RequireFromString("45.00"), Category: "kitchen"},
	{Name: "Wireless Earbuds", Description: "24h battery with charging case", Price: decimal.RequireFromString("59.99"), Category: "electronics"},
	{Name: "USB-C Charger", Description: "65W fast charging", Price: decimal.RequireFromString("29.00"), Category: "electronics"},
}

// seedProducts inserts the demo catalogue into an empty product table.
func seedProducts(ctx context.Context, db *gorm.DB) error {
	products := repositories.NewProductRepository(db)

	existing, err := products.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range demoProducts {
		p := p
		if err := products.Create(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
