// Package repository implements the database access layer for Migoculto.
// Repositories are thin structs over the global database pool; the handful
// of operations that must be atomic across rows take an explicit pgx.Tx.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
)

// ErrNoRows is re-exported so callers outside this package do not need to
// import pgx to distinguish "not found" from real failures.
var ErrNoRows = pgx.ErrNoRows

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UserRepository handles user account persistence.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create inserts a new user.
// Side Effects: populates user.ID and user.CreatedAt with database values.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return database.DB.QueryRow(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

// GetByEmail retrieves a user by email address. Used for login.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := database.DB.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := database.DB.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
