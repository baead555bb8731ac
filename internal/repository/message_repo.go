package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
)

// MessageRepository handles message persistence. Visibility filtering beyond
// "rows this user could ever see" lives in the projector, not in SQL.
type MessageRepository struct{}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

// CreateTx inserts a new message inside an ongoing transaction. Posts run
// under the group row lock so a private message can never slip past a
// concurrent re-draw's purge.
// Side Effects: populates message.ID and message.CreatedAt.
func (r *MessageRepository) CreateTx(ctx context.Context, tx pgx.Tx, message *models.Message) error {
	query := `
		INSERT INTO messages (group_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return tx.QueryRow(ctx, query,
		message.GroupID, message.SenderID, message.ReceiverID, message.Content,
	).Scan(&message.ID, &message.CreatedAt)
}

// ListForUser retrieves every message in a group the given user could ever
// see: all public messages plus private ones they sent or received, oldest
// first. Join-date and scope rules are applied by the projector.
func (r *MessageRepository) ListForUser(ctx context.Context, groupID, userID int) ([]models.Message, error) {
	query := `
		SELECT id, group_id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE group_id = $1
		  AND (receiver_id IS NULL OR sender_id = $2 OR receiver_id = $2)
		ORDER BY created_at
	`
	rows, err := database.DB.Query(ctx, query, groupID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountPrivateByGroup returns how many private messages a group still has.
// After a draw this must be zero; exposed mainly for tests and diagnostics.
func (r *MessageRepository) CountPrivateByGroup(ctx context.Context, groupID int) (int, error) {
	var count int
	err := database.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE group_id = $1 AND receiver_id IS NOT NULL`,
		groupID,
	).Scan(&count)
	return count, err
}
