// Package oauth runs the server side of the OAuth2 authorization-code flow.
// Services depend on Provider; GoogleProvider is backed by goth.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

var ErrNotConfigured = errors.New("oauth: provider is not configured")

// Identity is the user profile returned by the provider.
type Identity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}

// Provider starts and completes one provider's authorization flow.
type Provider interface {
	Name() string
	// AuthURL returns the consent-screen URL for state plus the opaque
	// session that Complete needs later.
	AuthURL(state string) (authURL string, session []byte, err error)
	// Complete exchanges the callback parameters for the user's identity.
	Complete(ctx context.Context, session []byte, params url.Values) (Identity, error)
}

// GoogleProvider signs users in with Google.
type GoogleProvider struct {
	provider *google.Provider
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrNotConfigured
	}
	return &GoogleProvider{
		provider: google.New(clientID, clientSecret, redirectURL, "email", "profile"),
	}, nil
}

func (g *GoogleProvider) Name() string { return "google" }

func (g *GoogleProvider) AuthURL(state string) (string, []byte, error) {
	sess, err := g.provider.BeginAuth(state)
	if err != nil {
		return "", nil, fmt.Errorf("oauth: begin auth: %w", err)
	}
	u, err := sess.GetAuthURL()
	if err != nil {
		return "", nil, fmt.Errorf("oauth: auth url: %w", err)
	}
	return u, []byte(sess.Marshal()), nil
}

func (g *GoogleProvider) Complete(ctx context.Context, session []byte, params url.Values) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	sess, err := g.provider.UnmarshalSession(string(session))
	if err != nil {
		return Identity{}, fmt.Errorf("oauth: restore session: %w", err)
	}
	if _, err := sess.Authorize(g.provider, params); err != nil {
		return Identity{}, fmt.Errorf("oauth: exchange code: %w", err)
	}

	user, err := g.provider.FetchUser(sess)
	if err != nil {
		return Identity{}, fmt.Errorf("oauth: fetch user: %w", err)
	}
	return toIdentity(g.Name(), user), nil
}

func toIdentity(provider string, u goth.User) Identity {
	return Identity{
		Provider:       provider,
		ProviderUserID: u.UserID,
		Email:          u.Email,
		Name:           u.Name,
	}
}
