package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiofrota/migoculto/internal/repository"
)

var memberCols = []string{
	"id", "group_id", "user_id", "assigned_user_id",
	"is_confirmed", "joined_at", "last_read_at", "archived_at",
}

// TestMemberRepository_GetByGroupAndUser verifies active-membership lookup.
// Archived rows must not come back: a member who left is not a member.
func TestMemberRepository_GetByGroupAndUser(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	t.Run("active member", func(t *testing.T) {
		mock := newMockDB(t)
		rows := pgxmock.NewRows(memberCols).
			AddRow(5, 10, 101, nil, true, testTime, nil, nil)
		mock.ExpectQuery("SELECT (.+) FROM members m").
			WithArgs(10, 101).
			WillReturnRows(rows)

		repo := repository.NewMemberRepository()
		member, err := repo.GetByGroupAndUser(context.Background(), 10, 101)

		assert.NoError(t, err)
		require.NotNil(t, member)
		assert.Equal(t, 5, member.ID)
		assert.Nil(t, member.AssignedUserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no active row", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM members m").
			WithArgs(10, 999).
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewMemberRepository()
		member, err := repo.GetByGroupAndUser(context.Background(), 10, 999)

		assert.True(t, repository.IsNotFound(err))
		assert.Nil(t, member)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestMemberRepository_ListActiveByGroup verifies the joined member+user
// snapshot the draw and the projector operate on, ordered by join time.
func TestMemberRepository_ListActiveByGroup(t *testing.T) {
	testTime := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	mock := newMockDB(t)

	cols := append(append([]string{}, memberCols...), "first_name", "last_name")
	assigned1, assigned2 := 102, 101
	rows := pgxmock.NewRows(cols).
		AddRow(1, 10, 101, &assigned1, true, testTime, nil, nil, "Vera", "Lima").
		AddRow(2, 10, 102, &assigned2, true, testTime.Add(time.Minute), nil, nil, "Caio", "Souza")
	mock.ExpectQuery("SELECT (.+) FROM members m").
		WithArgs(10).
		WillReturnRows(rows)

	repo := repository.NewMemberRepository()
	members, err := repo.ListActiveByGroup(context.Background(), 10)

	assert.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Vera Lima", members[0].FullName())
	require.NotNil(t, members[0].AssignedUserID)
	assert.Equal(t, 102, *members[0].AssignedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestMemberRepository_UpdateLastRead verifies the read high-water mark
// update, including the no-row case for non-members and archived members.
func TestMemberRepository_UpdateLastRead(t *testing.T) {
	readAt := time.Date(2025, 11, 10, 15, 0, 0, 0, time.UTC)

	t.Run("updates the mark", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec("UPDATE members SET last_read_at").
			WithArgs(readAt, 10, 101).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewMemberRepository()
		err := repo.UpdateLastRead(context.Background(), 10, 101, readAt)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing membership", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectExec("UPDATE members SET last_read_at").
			WithArgs(readAt, 10, 999).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewMemberRepository()
		err := repo.UpdateLastRead(context.Background(), 10, 999, readAt)

		assert.True(t, repository.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestMemberRepository_ReactivateTx verifies that rejoin revives an archived
// row with fresh-join fields instead of inserting a duplicate.
func TestMemberRepository_ReactivateTx(t *testing.T) {
	t.Run("revives an archived row", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE members").
			WithArgs(10, 101).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		repo := repository.NewMemberRepository()
		revived, err := repo.ReactivateTx(context.Background(), tx, 10, 101)

		assert.NoError(t, err)
		assert.True(t, revived)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports no archived row", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE members").
			WithArgs(10, 101).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		tx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		repo := repository.NewMemberRepository()
		revived, err := repo.ReactivateTx(context.Background(), tx, 10, 101)

		assert.NoError(t, err)
		assert.False(t, revived)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
