// This file implements authentication services including registration,
// credential verification and password hashing using bcrypt.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/repository"
)

// AuthService handles account creation and credential verification.
// Provides a layer of abstraction between HTTP handlers and the repository.
//
// Security Notes:
//   - Passwords are hashed with bcrypt; the cost factor is configurable
//     so tests can run at bcrypt.MinCost.
//   - Constant-time password comparison prevents timing attacks.
//   - Never stores or logs plaintext passwords.
type AuthService struct {
	userRepo   *repository.UserRepository
	bcryptCost int
}

// NewAuthService creates and returns a new AuthService instance.
// A cost of 0 falls back to bcrypt.DefaultCost.
func NewAuthService(bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   repository.NewUserRepository(),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account with a hashed password.
//
// Error Cases:
//   - ErrEmailExists: the email is already registered
//   - Database errors: returned wrapped
//
// The email is lowercased before storage so lookups are case-insensitive.
func (s *AuthService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(form.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies user credentials and returns the user record on success.
// Performs two-step validation: email lookup followed by password verification.
//
// Security Notes:
//   - bcrypt.CompareHashAndPassword is constant-time to prevent timing attacks.
//   - Returns ErrInvalidCredentials for both "user not found" and "wrong
//     password" to avoid revealing which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return user, nil
}

// GetUser loads a user by id, mapping missing rows to ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
