package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/repository"
)

// TestGroupRepository_Create verifies that creating a group inserts the
// group row and the owner's membership in one transaction.
func TestGroupRepository_Create(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	mock := newMockDB(t)

	group := &models.Group{
		Name:     "Natal 2025",
		JoinCode: "code-123",
		Password: "segredo",
		OwnerID:  1,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("Natal 2025", "", "", "", pgxmock.AnyArg(), "code-123", "segredo", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow(10, models.StatusOpen, testTime, testTime))
	mock.ExpectExec("INSERT INTO members").
		WithArgs(10, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := repository.NewGroupRepository()
	err := repo.Create(context.Background(), group)

	assert.NoError(t, err)
	assert.Equal(t, 10, group.ID)
	assert.Equal(t, models.StatusOpen, group.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGroupRepository_GetByID verifies group lookup and not-found mapping.
func TestGroupRepository_GetByID(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock := newMockDB(t)
		rows := pgxmock.NewRows([]string{
			"id", "name", "description", "location", "additional_info", "event_date",
			"join_code", "password", "owner_id", "status", "created_at", "updated_at",
		}).AddRow(10, "Natal 2025", "", "", "", nil, "code-123", "segredo", 1,
			models.StatusOpen, testTime, testTime)
		mock.ExpectQuery("SELECT (.+) FROM groups WHERE id").
			WithArgs(10).
			WillReturnRows(rows)

		repo := repository.NewGroupRepository()
		group, err := repo.GetByID(context.Background(), 10)

		assert.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "Natal 2025", group.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM groups WHERE id").
			WithArgs(99).
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewGroupRepository()
		group, err := repo.GetByID(context.Background(), 99)

		assert.True(t, repository.IsNotFound(err))
		assert.Nil(t, group)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestGroupRepository_ApplyDrawTx verifies the multi-row draw write: all
// member assignments, the status flip and the purge of private messages run
// in the caller's transaction, and any failed member update aborts it.
func TestGroupRepository_ApplyDrawTx(t *testing.T) {
	// Members are updated in ascending id order, so the statement
	// sequence is deterministic regardless of map iteration.
	assignments := map[int]int{3: 102, 1: 103, 2: 101}

	t.Run("applies all assignments in one transaction", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE members SET assigned_user_id").
			WithArgs(103, 1, 10).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE members SET assigned_user_id").
			WithArgs(101, 2, 10).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE members SET assigned_user_id").
			WithArgs(102, 3, 10).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE groups SET status").
			WithArgs(models.StatusDrawn, 10).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("DELETE FROM messages").
			WithArgs(10).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectCommit()

		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		repo := repository.NewGroupRepository()
		err = repo.ApplyDrawTx(context.Background(), tx, 10, assignments)

		assert.NoError(t, err)
		assert.NoError(t, tx.Commit(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when a member row is missing", func(t *testing.T) {
		mock := newMockDB(t)

		mock.ExpectBegin()
		// First member vanished between the snapshot and the draw.
		mock.ExpectExec("UPDATE members SET assigned_user_id").
			WithArgs(103, 1, 10).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		repo := repository.NewGroupRepository()
		err = repo.ApplyDrawTx(context.Background(), tx, 10, assignments)

		assert.Error(t, err)
		assert.NoError(t, tx.Rollback(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
