package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is one line of a user's cart. A user holds at most one line per
// product; adding the same product again bumps Quantity.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_carts_user_product" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_carts_user_product" json:"productId"`
	Product   Product   `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineTotal is the current catalogue price times quantity.
func (c Cart) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
