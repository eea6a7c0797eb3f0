// Package service holds the business rules: identity, projects, the
// relation ledger, comments and profiles.
//
// AuthService is the identity layer between the HTTP handlers and storage:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt), TokenService (JWT)
//
// The service never touches cookies. Handlers call auth.Sessions.Issue with
// the returned user's ID after a successful call.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository"
)

// AuthService handles registration, login and session resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

var _ auth.SessionResolver = (*AuthService)(nil)

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// NormalizeEmail trims and lower-cases an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local account.
//
// The email pre-check avoids paying for a bcrypt hash on an obvious
// duplicate; the UNIQUE constraint in the store still decides races.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	switch {
	case username == "":
		return nil, apperror.ValidationFailed("username", "Username is Required")
	case email == "":
		return nil, apperror.ValidationFailed("email", "Email is Required")
	case password == "":
		return nil, apperror.ValidationFailed("password", "Password is Required")
	case len(password) > auth.MaxPasswordBytes:
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user", "email", email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Provider:     model.ProviderLocal,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return user, nil
}

// Authenticate checks an email and password.
//
// Unknown email, wrong password and federated-only accounts all produce the
// same AuthError. The unknown-email path still runs one bcrypt comparison so
// response time does not reveal whether the account exists.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is Required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password is Required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyNothing(password)
			return nil, apperror.Unauthenticated(apperror.InvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !user.HasPassword() {
		s.passwords.VerifyNothing(password)
		return nil, apperror.Unauthenticated(apperror.InvalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthenticated(apperror.InvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, nil
}

// FederatedAuth finds the account for a Google-verified email or creates a
// google-provider account for it.
//
// The last argument is the generated secret older clients send as a
// "password". It is accepted and ignored: federated accounts have no local
// credential, so password login for them always fails.
func (s *AuthService) FederatedAuth(ctx context.Context, displayName, email, _ string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "Email is Required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	user = &model.User{
		Username: displayName,
		Email:    email,
		Provider: model.ProviderGoogle,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent first login for the same email.
		if errors.Is(err, apperror.ErrConflict) {
			return s.users.GetUserByEmail(ctx, email)
		}
		return nil, fmt.Errorf("service/auth: creating federated user: %w", err)
	}

	s.logger.Info("federated user created", slog.String("userID", user.ID))
	return user, nil
}

// ResolveSession validates a session token and loads the caller's identity.
// Invalid or expired tokens and tokens for deleted users are AuthErrors.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.Identity, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthenticated("Token not Valid")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("Token not Valid")
		}
		return nil, fmt.Errorf("service/auth: loading session user %s: %w", userID, err)
	}

	return user.Identity(), nil
}
