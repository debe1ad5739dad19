package services_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.New(testdb.New(t))
}

func seedUser(t *testing.T, store *repositories.Store, username, email string) models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	u := models.User{Username: username, Email: email, Password: hash}
	require.NoError(t, store.Users.Create(context.Background(), &u))
	return u
}

func seedAdmin(t *testing.T, store *repositories.Store, username, email string) models.Admin {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	a := models.Admin{Username: username, Email: email, Password: hash, Roles: models.NewRoleSet(models.RoleAdmin)}
	require.NoError(t, store.Admins.Create(context.Background(), &a))
	return a
}

func seedProduct(t *testing.T, store *repositories.Store, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    "general",
	}
	require.NoError(t, store.Products.Create(context.Background(), &p))
	return p
}

func cents(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func requireKind(t *testing.T, err error, kind services.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, services.KindOf(err), "error: %v", err)
}

// ── Fakes ────────────────────────────────────────────────────────────────────

// fakeGateway returns statuses in order from RetrieveIntent; the last one
// repeats.
type fakeGateway struct {
	mu        sync.Mutex
	statuses  []string
	retrieves int
	confirms  int
	created   []int64
	meta      map[string]string
	err       error
}

func settled() *fakeGateway { return &fakeGateway{statuses: []string{payment.StatusSucceeded}} }

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return payment.Intent{}, g.err
	}
	g.created = append(g.created, amount)
	g.meta = metadata
	return payment.Intent{ID: "pi_new", ClientSecret: "pi_new_secret", Status: payment.StatusRequiresConfirmation, Amount: amount, Currency: currency, Metadata: metadata}, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return payment.Intent{}, g.err
	}
	i := g.retrieves
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	g.retrieves++
	return payment.Intent{ID: id, Status: g.statuses[i], Metadata: g.meta}, nil
}

func (g *fakeGateway) ConfirmIntent(_ context.Context, id string) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirms++
	return payment.Intent{ID: id, Status: payment.StatusSucceeded, Metadata: g.meta}, nil
}

type sentMail struct {
	to    string
	order models.CustomerOrder
	link  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) OrderConfirmation(_ context.Context, user models.User, order models.CustomerOrder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: user.Email, order: order})
	return n.err
}

func (n *fakeNotifier) PasswordReset(_ context.Context, user models.User, link string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: user.Email, link: link})
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeProvider struct {
	identity oauth.Identity
	fail     bool
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) AuthURL(state string) (string, []byte, error) {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state), []byte("session:" + state), nil
}

func (p *fakeProvider) Complete(_ context.Context, session []byte, params url.Values) (oauth.Identity, error) {
	if p.fail || params.Get("code") == "" {
		return oauth.Identity{}, errors.New("exchange refused")
	}
	return p.identity, nil
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) Store(_ context.Context, name, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, name)
	return "https://cdn.example.com/" + name, nil
}
