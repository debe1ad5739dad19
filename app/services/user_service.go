package services

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

// ProfileUpdate holds the editable profile fields; nil leaves a field as
// it is.
type ProfileUpdate struct {
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode" validate:"omitempty,postal"`
}

type UserService struct {
	store *repositories.Store
}

func NewUserService(store *repositories.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Get(ctx context.Context, id uint) (models.User, error) {
	u, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, lookup(err, "User not found with ID: %d", id)
	}
	return u, nil
}

// UpdateProfile changes the address fields present in p.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, p ProfileUpdate) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.PostalCode != nil {
		u.PostalCode = *p.PostalCode
	}

	if err := s.store.Users.Update(ctx, &u); err != nil {
		return models.User{}, internal("Failed to update user", err)
	}
	return u, nil
}
