package repository

import (
	"context"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
)

// WishlistRepository handles wishlist item persistence.
type WishlistRepository struct{}

// NewWishlistRepository creates a new instance of WishlistRepository.
func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{}
}

// Create inserts a new wishlist item.
// Side Effects: populates item.ID and item.CreatedAt.
func (r *WishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (group_id, user_id, name, url, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return database.DB.QueryRow(ctx, query,
		item.GroupID, item.UserID, item.Name, item.URL, item.Description,
	).Scan(&item.ID, &item.CreatedAt)
}

// ListByGroup retrieves all wishlist items of a group, oldest first.
func (r *WishlistRepository) ListByGroup(ctx context.Context, groupID int) ([]models.WishlistItem, error) {
	query := `
		SELECT id, group_id, user_id, name, url, description, created_at
		FROM wishlist_items
		WHERE group_id = $1
		ORDER BY created_at
	`
	rows, err := database.DB.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var it models.WishlistItem
		err := rows.Scan(&it.ID, &it.GroupID, &it.UserID, &it.Name, &it.URL, &it.Description, &it.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete removes a wishlist item owned by the given user. Ownership is part
// of the predicate so members cannot delete each other's wishes.
func (r *WishlistRepository) Delete(ctx context.Context, itemID, userID int) error {
	tag, err := database.DB.Exec(ctx,
		`DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
