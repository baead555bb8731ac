package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
)

const memberColumns = `m.id, m.group_id, m.user_id, m.assigned_user_id,
		m.is_confirmed, m.joined_at, m.last_read_at, m.archived_at`

// MemberRepository handles membership persistence.
type MemberRepository struct{}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID, &m.GroupID, &m.UserID, &m.AssignedUserID,
		&m.IsConfirmed, &m.JoinedAt, &m.LastReadAt, &m.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateTx inserts a membership inside an ongoing transaction (joins run
// under the group row lock so the status check and the insert see the same
// snapshot).
// Side Effects: populates member.ID and member.JoinedAt.
func (r *MemberRepository) CreateTx(ctx context.Context, tx pgx.Tx, member *models.Member) error {
	query := `
		INSERT INTO members (group_id, user_id, is_confirmed)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	return tx.QueryRow(ctx, query,
		member.GroupID, member.UserID, member.IsConfirmed,
	).Scan(&member.ID, &member.JoinedAt)
}

// GetByGroupAndUser retrieves the active membership of a user in a group.
// Archived rows are not returned; a member who left is no longer a member.
func (r *MemberRepository) GetByGroupAndUser(ctx context.Context, groupID, userID int) (*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members m
		WHERE m.group_id = $1 AND m.user_id = $2 AND m.archived_at IS NULL
	`
	return scanMember(database.DB.QueryRow(ctx, query, groupID, userID))
}

// GetByID retrieves a member row by primary key, archived or not.
func (r *MemberRepository) GetByID(ctx context.Context, memberID int) (*models.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members m
		WHERE m.id = $1
	`
	return scanMember(database.DB.QueryRow(ctx, query, memberID))
}

// queryer is the subset of DBInterface and pgx.Tx the listings need, so the
// same scan code serves reads on the pool and reads inside a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// ListActiveByGroup retrieves all active members of a group joined with
// their user names, ordered by join time. This is the snapshot the
// projector operates on.
func (r *MemberRepository) ListActiveByGroup(ctx context.Context, groupID int) ([]models.MemberWithUser, error) {
	return listActiveByGroup(ctx, database.DB, groupID)
}

// ListActiveByGroupTx is ListActiveByGroup inside an ongoing transaction.
// The draw reads its member snapshot through this, after taking the group
// row lock, so a join or leave committing mid-draw can never desync the
// pairing from the membership.
func (r *MemberRepository) ListActiveByGroupTx(ctx context.Context, tx pgx.Tx, groupID int) ([]models.MemberWithUser, error) {
	return listActiveByGroup(ctx, tx, groupID)
}

func listActiveByGroup(ctx context.Context, q queryer, groupID int) ([]models.MemberWithUser, error) {
	query := `
		SELECT ` + memberColumns + `, u.first_name, u.last_name
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1 AND m.archived_at IS NULL
		ORDER BY m.joined_at
	`
	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.MemberWithUser
	for rows.Next() {
		var m models.MemberWithUser
		err := rows.Scan(
			&m.ID, &m.GroupID, &m.UserID, &m.AssignedUserID,
			&m.IsConfirmed, &m.JoinedAt, &m.LastReadAt, &m.ArchivedAt,
			&m.FirstName, &m.LastName,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListGroupIDsByUser returns the ids of all groups the user is an active
// member of, most recently joined first.
func (r *MemberRepository) ListGroupIDsByUser(ctx context.Context, userID int) ([]int, error) {
	query := `
		SELECT m.group_id
		FROM members m
		WHERE m.user_id = $1 AND m.archived_at IS NULL
		ORDER BY m.joined_at DESC
	`
	rows, err := database.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groupIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, id)
	}
	return groupIDs, rows.Err()
}

// ReactivateTx revives an archived membership inside an ongoing transaction,
// resetting the fields a fresh join would have. Returns false when no
// archived row exists, in which case the caller inserts a new one.
func (r *MemberRepository) ReactivateTx(ctx context.Context, tx pgx.Tx, groupID, userID int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE members
		SET archived_at = NULL, assigned_user_id = NULL, last_read_at = NULL, joined_at = now()
		WHERE group_id = $1 AND user_id = $2 AND archived_at IS NOT NULL`,
		groupID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ArchiveTx soft-removes a member inside an ongoing transaction: the row is
// kept for history but stops counting as membership.
func (r *MemberRepository) ArchiveTx(ctx context.Context, tx pgx.Tx, memberID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE members SET archived_at = now() WHERE id = $1 AND archived_at IS NULL`,
		memberID,
	)
	return err
}

// DeleteTx hard-removes a member inside an ongoing transaction. Used by the
// owner's remove action only.
func (r *MemberRepository) DeleteTx(ctx context.Context, tx pgx.Tx, memberID int) error {
	_, err := tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	return err
}

// UpdateLastRead sets the member's read high-water mark. Messages created
// after this instant stay unread; the projector never writes this itself.
func (r *MemberRepository) UpdateLastRead(ctx context.Context, groupID, userID int, readAt time.Time) error {
	tag, err := database.DB.Exec(ctx,
		`UPDATE members SET last_read_at = $1 WHERE group_id = $2 AND user_id = $3 AND archived_at IS NULL`,
		readAt, groupID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
