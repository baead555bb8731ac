// Package repository_test provides unit tests for the repository layer.
// Tests use pgxmock v4 for database mocking and follow table-driven testing
// patterns; the mock pool is injected into the global database.DB.
package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/repository"
)

// newMockDB creates a pgxmock pool and swaps it into the global database
// handle, restoring the previous one on cleanup.
func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() {
		database.DB = oldDB
		mock.Close()
	})
	return mock
}

// TestUserRepository_GetByEmail verifies user lookup by email address.
// Critical for the login flow: finds the record whose password hash is
// compared against the submitted password.
func TestUserRepository_GetByEmail(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		email         string
		mockSetup     func(pgxmock.PgxPoolIface)
		expectedUser  *models.User
		expectedError bool
	}{
		{
			name:  "successful user lookup",
			email: "vera@example.com",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "password_hash", "created_at"}).
					AddRow(1, "vera@example.com", "Vera", "Lima", "hashed_password", testTime)
				mock.ExpectQuery("SELECT id, email, first_name, last_name, password_hash, created_at").
					WithArgs("vera@example.com").
					WillReturnRows(rows)
			},
			expectedUser: &models.User{
				ID:        1,
				Email:     "vera@example.com",
				FirstName: "Vera",
				LastName:  "Lima",
			},
			expectedError: false,
		},
		{
			name:  "user not found",
			email: "nonexistent@example.com",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT id, email, first_name, last_name, password_hash, created_at").
					WithArgs("nonexistent@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			expectedUser:  nil,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			tt.mockSetup(mock)
			repo := repository.NewUserRepository()

			user, err := repo.GetByEmail(context.Background(), tt.email)

			if tt.expectedError {
				assert.Error(t, err, "Should return error when user not found")
				assert.True(t, repository.IsNotFound(err), "Error should classify as not found")
				assert.Nil(t, user, "User should be nil on error")
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.expectedUser.Email, user.Email)
				assert.Equal(t, tt.expectedUser.FirstName, user.FirstName)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestUserRepository_Create verifies account creation and that the
// database-generated fields land back on the struct.
func TestUserRepository_Create(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	mock := newMockDB(t)

	user := &models.User{
		Email:        "novo@example.com",
		FirstName:    "Caio",
		LastName:     "Souza",
		PasswordHash: "hashed", // hashed by the auth service before reaching here
	}

	rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(7, testTime)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("novo@example.com", "Caio", "Souza", "hashed").
		WillReturnRows(rows)

	repo := repository.NewUserRepository()
	err := repo.Create(context.Background(), user)

	assert.NoError(t, err, "Creation should succeed")
	assert.Equal(t, 7, user.ID, "User ID should be set after creation")
	assert.Equal(t, testTime, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetByID verifies lookup by primary key, used when the
// worker resolves notification recipients.
func TestUserRepository_GetByID(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	mock := newMockDB(t)

	rows := pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "password_hash", "created_at"}).
		AddRow(3, "ana@example.com", "Ana", "Prado", "hash", testTime)
	mock.ExpectQuery("SELECT id, email, first_name, last_name, password_hash, created_at").
		WithArgs(3).
		WillReturnRows(rows)

	repo := repository.NewUserRepository()
	user, err := repo.GetByID(context.Background(), 3)

	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana Prado", user.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
