package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"gorm.io/gorm"
)

func init() {
	Register("admin", seedAdmin)
}

// seedAdmin creates the bootstrap administrator. Admin registration over
// HTTP needs an existing admin, so this is how the first one appears.
func seedAdmin(ctx context.Context, db *gorm.DB) error {
	password := config.AdminPassword()
	if password == "" {
		logger.Warn("seed: ADMIN_PASSWORD not set, skipping bootstrap admin")
		return nil
	}

	admins := repositories.NewAdminRepository(db)
	username := config.AdminUsername()

	_, err := admins.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, repositories.ErrNotFound):
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.Admin{
		Username: username,
		Email:    config.AdminEmail(),
		Password: hash,
		Roles:    models.NewRoleSet(models.RoleAdmin),
	}
	if err := admins.Create(ctx, &admin); err != nil {
		return err
	}
	logger.Info("seed: bootstrap admin created", "username", username)
	return nil
}
