package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

type ContactService struct {
	store *repositories.Store
}

func NewContactService(store *repositories.Store) *ContactService {
	return &ContactService{store: store}
}

// Submit stores a contact-form message.
func (s *ContactService) Submit(ctx context.Context, m models.ContactMessage) (models.ContactMessage, error) {
	m.ID = 0
	m.Email = strings.TrimSpace(m.Email)
	if err := s.store.Contacts.Create(ctx, &m); err != nil {
		return models.ContactMessage{}, validation("Failed to submit message: %s", err.Error())
	}
	return m, nil
}

// Recent returns the newest messages first.
func (s *ContactService) Recent(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	msgs, err := s.store.Contacts.Recent(ctx, limit)
	if err != nil {
		return nil, internal("Internal server error", err)
	}
	return msgs, nil
}
