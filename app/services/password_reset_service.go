package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// PasswordResetService runs the reset-token lifecycle. A user holds at most
// one pending token; requesting again replaces it.
type PasswordResetService struct {
	store       *repositories.Store
	notifier    Notifier
	ttl         time.Duration
	frontendURL string
	now         func() time.Time
}

func NewPasswordResetService(store *repositories.Store, notifier Notifier, ttl time.Duration, frontendURL string) *PasswordResetService {
	return &PasswordResetService{
		store:       store,
		notifier:    notifier,
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// WithClock replaces time.Now.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// Request issues a new token for the account with email, deleting any
// pending one, and mails the reset link. It returns the new token.
func (s *PasswordResetService) Request(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validation("Email is required")
	}

	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", lookup(err, "User not found with email: %s", email)
	}

	token := models.PasswordResetToken{
		Token:      uuid.NewString(),
		UserID:     user.ID,
		ExpiryDate: s.now().Add(s.ttl),
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		n, err := tx.ResetTokens.DeleteByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.WithCtx(ctx).Info("password reset: replaced pending token", "user_id", user.ID)
		}
		return tx.ResetTokens.Create(ctx, &token)
	})
	if err != nil {
		return "", internal("Failed to process password reset request", err)
	}

	link := s.frontendURL + "/auth/reset/" + token.Token
	if s.notifier != nil {
		if err := s.notifier.PasswordReset(ctx, user, link, s.ttl); err != nil {
			return "", internal("Failed to send password reset email", err)
		}
	}

	logger.WithCtx(ctx).Info("password reset: token issued", "user_id", user.ID)
	return token.Token, nil
}

// Validate reports whether token exists and has not expired.
func (s *PasswordResetService) Validate(ctx context.Context, token string) error {
	_, err := s.live(ctx, token)
	return err
}

// Reset sets a new password with a live token and consumes the token.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return validation("Token and new password are required")
	}

	rt, err := s.live(ctx, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return internal("Failed to reset password", err)
	}

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		user := rt.User
		user.Password = hash
		if err := tx.Users.Update(ctx, &user); err != nil {
			return err
		}
		return tx.ResetTokens.Delete(ctx, rt.ID)
	})
	if err != nil {
		return internal("Failed to reset password", err)
	}

	logger.WithCtx(ctx).Info("password reset: completed", "user_id", rt.UserID)
	return nil
}

// PurgeExpired deletes every token past its expiry and returns the count.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.ResetTokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internal("Failed to purge reset tokens", err)
	}
	metrics.ResetTokensPurged.Add(float64(n))
	logger.WithCtx(ctx).Info("password reset: expired tokens purged", "count", n)
	return n, nil
}

func (s *PasswordResetService) live(ctx context.Context, token string) (models.PasswordResetToken, error) {
	rt, err := s.store.ResetTokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PasswordResetToken{}, validation("Invalid token")
		}
		return models.PasswordResetToken{}, internal("Failed to validate token", err)
	}
	if rt.Expired(s.now()) {
		logger.WithCtx(ctx).Warn("password reset: token expired", "user_id", rt.UserID)
		return models.PasswordResetToken{}, validation("Token has expired")
	}
	return rt, nil
}
