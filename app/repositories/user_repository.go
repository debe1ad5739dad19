package repositories

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.From(ctx, r.db).Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// FindByUsername matches the stored (lower-case) username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := orm.From(ctx, r.db).Model(&models.User{}).
		Where("username = ?", strings.ToLower(username)).
		First(&user)
	return user, err
}

// FindByEmail matches the stored (lower-case) email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.From(ctx, r.db).Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		First(&user)
	return user, err
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return orm.From(ctx, r.db).Model(&models.User{}).Where("username = ?", strings.ToLower(username)).Exists()
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return orm.From(ctx, r.db).Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Exists()
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return orm.Translate(r.db.WithContext(ctx).Create(user).Error)
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return orm.Translate(r.db.WithContext(ctx).Save(user).Error)
}

// All returns every user ordered by id.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := orm.From(ctx, r.db).Model(&models.User{}).Order("id").Get(&users)
	return users, err
}
