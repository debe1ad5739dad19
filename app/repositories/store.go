// Package repositories holds the gorm data access for every model. Each
// repository is a small struct over a *gorm.DB; Store groups them so a
// service can run several in one transaction.
package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = orm.ErrNotFound
	ErrDuplicate  = orm.ErrDuplicate
	ErrReferenced = orm.ErrReferenced
)

type Store struct {
	db *gorm.DB

	Users       *UserRepository
	Admins      *AdminRepository
	Products    *ProductRepository
	Carts       *CartRepository
	Orders      *OrderRepository
	ResetTokens *PasswordResetTokenRepository
	Contacts    *ContactMessageRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Admins:      NewAdminRepository(db),
		Products:    NewProductRepository(db),
		Carts:       NewCartRepository(db),
		Orders:      NewOrderRepository(db),
		ResetTokens: NewPasswordResetTokenRepository(db),
		Contacts:    NewContactMessageRepository(db),
	}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn with a Store whose repositories share one
// transaction. Returning an error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
