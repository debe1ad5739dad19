package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
)

const oauthStatePrefix = "oauth2:"

// OAuthService runs the Google sign-in round trip. The provider session is
// parked in the state store under the state parameter and taken exactly
// once by the callback.
type OAuthService struct {
	provider oauth.Provider
	states   cache.StateStore
	ttl      time.Duration
	auth     *AuthService
}

// NewOAuthService accepts a nil provider; every call then fails with a
// not-found error.
func NewOAuthService(provider oauth.Provider, states cache.StateStore, ttl time.Duration, auth *AuthService) *OAuthService {
	return &OAuthService{provider: provider, states: states, ttl: ttl, auth: auth}
}

func (s *OAuthService) configured() error {
	if s.provider == nil {
		return notFound("OAuth2 sign-in is not configured")
	}
	return nil
}

// Begin returns the provider's consent URL for a fresh state.
func (s *OAuthService) Begin(ctx context.Context) (string, error) {
	if err := s.configured(); err != nil {
		return "", err
	}

	state := uuid.NewString()
	authURL, session, err := s.provider.AuthURL(state)
	if err != nil {
		return "", internal("OAuth2 authentication failed", err)
	}
	if err := s.states.Put(ctx, oauthStatePrefix+state, session, s.ttl); err != nil {
		return "", internal("OAuth2 authentication failed", err)
	}
	return authURL, nil
}

// Complete consumes state, exchanges the callback parameters for the
// user's identity and signs them in.
func (s *OAuthService) Complete(ctx context.Context, state string, params url.Values) (Session, bool, error) {
	if err := s.configured(); err != nil {
		return Session{}, false, err
	}
	if state == "" {
		return Session{}, false, unauthorized("Authentication failed")
	}

	session, err := s.states.Take(ctx, oauthStatePrefix+state)
	if err != nil {
		if errors.Is(err, cache.ErrStateNotFound) {
			logger.WithCtx(ctx).Warn("oauth: unknown or reused state")
			return Session{}, false, unauthorized("Authentication failed")
		}
		return Session{}, false, internal("OAuth2 authentication failed", err)
	}

	id, err := s.provider.Complete(ctx, session, params)
	if err != nil {
		logger.WithCtx(ctx).Warn("oauth: exchange failed", "provider", s.provider.Name(), "error", err)
		return Session{}, false, unauthorized("OAuth2 authentication failed")
	}
	return s.auth.ProvisionOAuthUser(ctx, id)
}
