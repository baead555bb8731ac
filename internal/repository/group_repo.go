package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
)

const groupColumns = `id, name, description, location, additional_info, event_date,
		join_code, password, owner_id, status, created_at, updated_at`

// GroupRepository handles group persistence, including the one multi-row
// atomic write in the system: applying a draw.
type GroupRepository struct{}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var g models.Group
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Location, &g.AdditionalInfo, &g.EventDate,
		&g.JoinCode, &g.Password, &g.OwnerID, &g.Status, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new group and its owner as the first, confirmed member,
// in a single transaction.
// Side Effects: populates group.ID, group.CreatedAt and group.UpdatedAt.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO groups (name, description, location, additional_info, event_date,
			join_code, password, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		group.Name, group.Description, group.Location, group.AdditionalInfo,
		group.EventDate, group.JoinCode, group.Password, group.OwnerID,
	).Scan(&group.ID, &group.Status, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO members (group_id, user_id, is_confirmed) VALUES ($1, $2, TRUE)`,
		group.ID, group.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner member: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a group by primary key.
func (r *GroupRepository) GetByID(ctx context.Context, groupID int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return scanGroup(database.DB.QueryRow(ctx, query, groupID))
}

// GetByJoinCode retrieves a group by its opaque invite code.
func (r *GroupRepository) GetByJoinCode(ctx context.Context, joinCode string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE join_code = $1`
	return scanGroup(database.DB.QueryRow(ctx, query, joinCode))
}

// GetForUpdate retrieves a group inside a transaction with a row lock.
// Membership changes and draws take this lock first, so concurrent
// operations on the same group serialize instead of interleaving.
func (r *GroupRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, groupID int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 FOR UPDATE`
	return scanGroup(tx.QueryRow(ctx, query, groupID))
}

// TouchTx bumps the group's updated_at inside an ongoing transaction.
func (r *GroupRepository) TouchTx(ctx context.Context, tx pgx.Tx, groupID int) error {
	_, err := tx.Exec(ctx, `UPDATE groups SET updated_at = now() WHERE id = $1`, groupID)
	return err
}

// SetStatusTx updates the group status inside an ongoing transaction.
func (r *GroupRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, groupID int, status models.GroupStatus) error {
	_, err := tx.Exec(ctx,
		`UPDATE groups SET status = $1, updated_at = now() WHERE id = $2`,
		status, groupID,
	)
	return err
}

// ApplyDrawTx applies a computed pairing inside an ongoing transaction:
// every member's assigned_user_id, the group status flip to DRAWN, the
// updated_at bump and the purge of private messages. A torn write here would
// corrupt the single-cycle invariant, so any failure makes the caller abort
// the whole transaction.
//
// assignments maps member id to the user id that member gives to. The caller
// must hold the group row lock and must have read the member snapshot the
// pairing was computed from inside the same transaction, so the pairing can
// never desync from the membership.
func (r *GroupRepository) ApplyDrawTx(ctx context.Context, tx pgx.Tx, groupID int, assignments map[int]int) error {
	// Deterministic order keeps the statement sequence reproducible.
	memberIDs := make([]int, 0, len(assignments))
	for memberID := range assignments {
		memberIDs = append(memberIDs, memberID)
	}
	sort.Ints(memberIDs)

	for _, memberID := range memberIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE members SET assigned_user_id = $1 WHERE id = $2 AND group_id = $3`,
			assignments[memberID], memberID, groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to update member %d: %w", memberID, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("member %d not found in group %d", memberID, groupID)
		}
	}

	_, err := tx.Exec(ctx,
		`UPDATE groups SET status = $1, updated_at = now() WHERE id = $2`,
		models.StatusDrawn, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}

	// Private conversations were scoped to the previous pairing; they do
	// not survive a draw or re-draw.
	_, err = tx.Exec(ctx,
		`DELETE FROM messages WHERE group_id = $1 AND receiver_id IS NOT NULL`,
		groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to purge private messages: %w", err)
	}
	return nil
}
