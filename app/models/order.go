package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "Cancelled"

	ShipmentPacking   = "Packing"
	ShipmentCancelled = "Cancelled"
)

// ShippingAddress is stored inline on the order with a shipping_ prefix.
type ShippingAddress struct {
	FullName      string `gorm:"size:255" json:"fullName"`
	StreetAddress string `gorm:"size:255" json:"streetAddress"`
	City          string `gorm:"size:100" json:"city"`
	State         string `gorm:"size:100" json:"state"`
	PostalCode    string `gorm:"size:20" json:"postalCode"`
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// CustomerOrder is created by a settled checkout. PaymentIntentID is unique:
// one payment intent never produces two orders.
type CustomerOrder struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"userId"`
	User            *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	OrderDate       time.Time       `gorm:"not null" json:"orderDate"`
	Status          string          `gorm:"size:50;not null" json:"status"`
	ShipmentStatus  string          `gorm:"size:50" json:"shipmentStatus"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentIntentID string          `gorm:"size:255;uniqueIndex;not null" json:"paymentIntentId"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem snapshots the unit price at checkout; later catalogue edits do
// not change it.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Product   Product         `json:"product"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
