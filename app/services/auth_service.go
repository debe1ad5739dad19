package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/oauth"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// Account is the identity returned to clients after sign-in.
type Account struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Session is a freshly issued token pair for an account.
type Session struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	User         Account `json:"user"`
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserReport is one row of the admin users report.
type UserReport struct {
	UserID          uint     `json:"userId"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Orders          []string `json:"order"`
	ShippingAddress string   `json:"shippingAddress"`
}

// AuthService signs users and admins in and manages registration.
type AuthService struct {
	store *repositories.Store
}

func NewAuthService(store *repositories.Store) *AuthService {
	return &AuthService{store: store}
}

func userAccount(u models.User) Account {
	return Account{ID: u.ID, Username: u.Username, Name: u.DisplayName(), Email: u.Email, Roles: []string{models.RoleUser}}
}

func adminAccount(a models.Admin) Account {
	return Account{ID: a.ID, Username: a.Username, Email: a.Email, Roles: []string(a.Roles)}
}

// issue mints an access/refresh pair for acct.
func issue(acct Account) (Session, error) {
	access, err := auth.GenerateAccessToken(acct.Username, acct.Roles)
	if err != nil {
		return Session{}, internal("Failed to issue token", err)
	}
	refresh, err := auth.GenerateRefreshToken(acct.Username)
	if err != nil {
		return Session{}, internal("Failed to issue token", err)
	}
	return Session{Token: access, RefreshToken: refresh, User: acct}, nil
}

// ── Login ────────────────────────────────────────────────────────────────────

// Login checks the password against users first, then admins.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return Session{}, validation("Username and password are required")
	}

	user, err := s.store.Users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if auth.CheckPassword(user.Password, password) {
			return issue(userAccount(user))
		}
		return Session{}, s.badCredentials(ctx, username)
	case !errors.Is(err, repositories.ErrNotFound):
		return Session{}, internal("Internal server error", err)
	}

	admin, err := s.store.Admins.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if auth.CheckPassword(admin.Password, password) {
			return issue(adminAccount(admin))
		}
	case !errors.Is(err, repositories.ErrNotFound):
		return Session{}, internal("Internal server error", err)
	}
	return Session{}, s.badCredentials(ctx, username)
}

func (s *AuthService) badCredentials(ctx context.Context, username string) error {
	logger.WithCtx(ctx).Warn("auth: login failed", "username", username)
	return unauthorized("Invalid username or password")
}

// ── Registration ─────────────────────────────────────────────────────────────

func (s *AuthService) checkRegistration(ctx context.Context, in *RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return validation("Username is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return validation("Password is required")
	}
	if strings.TrimSpace(in.Email) == "" || !emailRe.MatchString(in.Email) {
		return validation("Valid email is required")
	}
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.usernameTaken(ctx, in.Username)
	if err != nil {
		return internal("Failed to register user", err)
	}
	if taken {
		return validation("Username already exists")
	}

	taken, err = s.emailTaken(ctx, in.Email)
	if err != nil {
		return internal("Failed to register user", err)
	}
	if taken {
		return validation("Email already exists")
	}
	return nil
}

// Register creates a customer account and signs it in. Asking for the
// ADMIN role is refused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := s.checkRegistration(ctx, &in); err != nil {
		return Session{}, err
	}
	if strings.EqualFold(in.Role, models.RoleAdmin) {
		logger.WithCtx(ctx).Warn("auth: refused admin self-registration", "username", in.Username)
		return Session{}, forbidden("Admin registration is restricted")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, internal("Failed to register user", err)
	}

	user := models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.store.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return Session{}, conflict("Email or username already exists", err)
		}
		return Session{}, internal("Failed to register user", err)
	}

	logger.WithCtx(ctx).Info("auth: user registered", "user_id", user.ID, "username", user.Username)
	return issue(userAccount(user))
}

// RegisterAdmin creates an admin with the ADMIN role.
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (Session, error) {
	if err := s.checkRegistration(ctx, &in); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, internal("Failed to register admin", err)
	}

	admin := models.Admin{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Roles:    models.NewRoleSet(models.RoleAdmin),
	}
	if err := s.store.Admins.Create(ctx, &admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return Session{}, conflict("Email or username already exists", err)
		}
		return Session{}, internal("Failed to register admin", err)
	}

	logger.WithCtx(ctx).Info("auth: admin registered", "admin_id", admin.ID, "username", admin.Username)
	return issue(adminAccount(admin))
}

func (s *AuthService) usernameTaken(ctx context.Context, username string) (bool, error) {
	if ok, err := s.store.Users.UsernameExists(ctx, username); err != nil || ok {
		return ok, err
	}
	return s.store.Admins.UsernameExists(ctx, username)
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	if ok, err := s.store.Users.EmailExists(ctx, email); err != nil || ok {
		return ok, err
	}
	return s.store.Admins.EmailExists(ctx, email)
}

// ── Tokens ───────────────────────────────────────────────────────────────────

// Identify loads the account behind a username from users, then admins.
func (s *AuthService) Identify(ctx context.Context, username string) (Account, error) {
	user, err := s.store.Users.FindByUsername(ctx, username)
	if err == nil {
		return userAccount(user), nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return Account{}, internal("Internal server error", err)
	}

	admin, err := s.store.Admins.FindByUsername(ctx, username)
	if err != nil {
		return Account{}, lookup(err, "User not found")
	}
	return adminAccount(admin), nil
}

// Validate checks an access token and returns its account.
func (s *AuthService) Validate(ctx context.Context, token string) (Account, error) {
	username := auth.ExtractUsername(token)
	if username == "" || !auth.ValidateToken(token, username) {
		return Account{}, unauthorized("Invalid or expired token")
	}
	return s.Identify(ctx, username)
}

// Refresh trades a live refresh token for a new pair. The account's
// current roles are re-read, not copied from the old token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := auth.ParseRefresh(refreshToken)
	if err != nil || claims.Subject == "" {
		return Session{}, unauthorized("Invalid refresh token")
	}

	acct, err := s.Identify(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, unauthorized("Invalid refresh token")
		}
		return Session{}, err
	}
	return issue(acct)
}

// ── Admin report ─────────────────────────────────────────────────────────────

// AdminUsersReport lists every user with their orders as "<id>: <status>"
// and the first shipping address on file, or "N/A".
func (s *AuthService) AdminUsersReport(ctx context.Context) ([]UserReport, error) {
	users, err := s.store.Users.All(ctx)
	if err != nil {
		return nil, internal("Internal server error", err)
	}

	out := make([]UserReport, 0, len(users))
	for _, u := range users {
		orders, err := s.store.Orders.ForUser(ctx, u.ID)
		if err != nil {
			return nil, internal("Internal server error", err)
		}

		row := UserReport{
			UserID:          u.ID,
			Name:            u.DisplayName(),
			Email:           u.Email,
			Orders:          make([]string, 0, len(orders)),
			ShippingAddress: "N/A",
		}
		for _, o := range orders {
			row.Orders = append(row.Orders, fmt.Sprintf("%d: %s", o.ID, o.Status))
		}
		for _, o := range orders {
			if a := o.ShippingAddress; !a.IsZero() {
				row.ShippingAddress = strings.Join([]string{a.FullName, a.StreetAddress, a.City, a.PostalCode}, ", ")
				break
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// ── Social sign-in ───────────────────────────────────────────────────────────

// ProvisionOAuthUser signs in the user with the identity's email, creating
// one with a derived unique username and a random password on first
// sight. isNew reports whether an account was created.
func (s *AuthService) ProvisionOAuthUser(ctx context.Context, id oauth.Identity) (sess Session, isNew bool, err error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" || !emailRe.MatchString(email) {
		return Session{}, false, validation("Valid email not provided by OAuth2 provider")
	}

	user, err := s.store.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		base := id.Name
		if strings.TrimSpace(base) == "" {
			base = strings.SplitN(email, "@", 2)[0]
		}
		username, err := UniqueUsername(ctx, s.usernameTaken, base)
		if err != nil {
			return Session{}, false, internal("OAuth2 authentication failed", err)
		}

		hash, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			return Session{}, false, internal("OAuth2 authentication failed", err)
		}
		user = models.User{Username: username, Email: email, Name: id.Name, Password: hash}
		if err := s.store.Users.Create(ctx, &user); err != nil {
			return Session{}, false, internal("OAuth2 authentication failed", err)
		}
		isNew = true
		logger.WithCtx(ctx).Info("auth: provisioned user from OAuth2",
			"provider", id.Provider, "user_id", user.ID, "username", user.Username)
	default:
		return Session{}, false, internal("OAuth2 authentication failed", err)
	}

	sess, err = issue(userAccount(user))
	return sess, isNew, err
}
