package migrations

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_admins_table", &CreateAdminsTable{})
	migration.Register("20260101000002_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000003_create_carts_table", &CreateCartsTable{})
	migration.Register("20260101000004_create_orders_tables", &CreateOrdersTables{})
	migration.Register("20260101000005_create_password_reset_tokens_table", &CreatePasswordResetTokensTable{})
	migration.Register("20260101000006_create_contact_messages_table", &CreateContactMessagesTable{})
}

// -------- 0000: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}

// -------- 0001: admins --------

type CreateAdminsTable struct{}

func (m *CreateAdminsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Admin{})
}

func (m *CreateAdminsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Admin{})
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}

// -------- 0003: carts --------

type CreateCartsTable struct{}

func (m *CreateCartsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Cart{})
}

func (m *CreateCartsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Cart{})
}

// -------- 0004: customer_orders + order_items --------

type CreateOrdersTables struct{}

func (m *CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.CustomerOrder{}, &models.OrderItem{})
}

func (m *CreateOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderItem{}, &models.CustomerOrder{})
}

// -------- 0005: password_reset_tokens --------

type CreatePasswordResetTokensTable struct{}

func (m *CreatePasswordResetTokensTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.PasswordResetToken{})
}

func (m *CreatePasswordResetTokensTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.PasswordResetToken{})
}

// -------- 0006: contact_messages --------

type CreateContactMessagesTable struct{}

func (m *CreateContactMessagesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.ContactMessage{})
}

func (m *CreateContactMessagesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.ContactMessage{})
}
