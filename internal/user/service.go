package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"leadflow/internal/identity"
	dErrors "leadflow/pkg/domain-errors"
	"leadflow/pkg/platform/sentinel"
)

// TokenIssuer signs access tokens for a verified identity.
type TokenIssuer interface {
	GenerateAccessToken(id identity.Identity, expiresIn time.Duration) (token string, jti string, err error)
	ParseClaims(credential string) (*identity.Claims, error)
}

// Revoker invalidates a token's JTI until its natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Service owns account registration, credential exchange, and the user admin
// surface. It also resolves role fan-out targets for the dispatcher.
type Service struct {
	store       Store
	issuer      TokenIssuer
	revocations Revoker
	tokenTTL    time.Duration
	logger      *slog.Logger
}

func NewService(store Store, issuer TokenIssuer, revocations Revoker, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		issuer:      issuer,
		revocations: revocations,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

const bcryptCost = 10

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// Register creates an account and returns it with a fresh access token.
// Role defaults to SALES when absent.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (Profile, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Profile{}, "", dErrors.New(dErrors.CodeValidation, "name, email and password are required")
	}

	parsedRole := identity.RoleSales
	if role != "" {
		var err error
		parsedRole, err = identity.ParseRole(role)
		if err != nil {
			return Profile{}, "", dErrors.New(dErrors.CodeValidation, "unknown role")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         parsedRole,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Profile{}, "", dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create user")
	}

	token, _, err := s.issuer.GenerateAccessToken(u.Identity(), s.tokenTTL)
	if err != nil {
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return u.ToProfile(), token, nil
}

// Login exchanges email+password for an access token. Unknown email and wrong
// password collapse to the same error.
func (s *Service) Login(ctx context.Context, email, password string) (Profile, string, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Profile{}, "", errInvalidCredentials
		}
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to look up user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Profile{}, "", errInvalidCredentials
	}

	token, _, err := s.issuer.GenerateAccessToken(u.Identity(), s.tokenTTL)
	if err != nil {
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return u.ToProfile(), token, nil
}

// Logout revokes the presented credential's JTI for the remainder of its
// lifetime. A nil revoker makes logout purely client-side.
func (s *Service) Logout(ctx context.Context, credential string) error {
	if s.revocations == nil {
		return nil
	}
	claims, err := s.issuer.ParseClaims(credential)
	if err != nil {
		return err
	}
	ttl := s.tokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke token")
	}
	return nil
}

// Get returns a single user's profile.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Profile{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return Profile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to look up user")
	}
	return u.ToProfile(), nil
}

// List returns every account's profile.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list users")
	}
	profiles := make([]Profile, len(users))
	for i, u := range users {
		profiles[i] = u.ToProfile()
	}
	return profiles, nil
}

// IdentityIDsByRole resolves the ids of every account holding one of the
// given roles. The notification dispatcher uses this for role fan-out.
func (s *Service) IdentityIDsByRole(ctx context.Context, roles ...identity.Role) ([]string, error) {
	users, err := s.store.ListByRoles(ctx, roles...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}
