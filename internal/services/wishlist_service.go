package services

import (
	"context"
	"fmt"

	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/repository"
)

// AddWishlistItem publishes a gift suggestion for whoever drew the member.
// Any active member may add wishes in any status; wishes are not secret.
func (s *GroupService) AddWishlistItem(ctx context.Context, userID, groupID int, form models.WishlistItemForm) (*models.WishlistItem, error) {
	if _, err := s.memberRepo.GetByGroupAndUser(ctx, groupID, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	item := &models.WishlistItem{
		GroupID:     groupID,
		UserID:      userID,
		Name:        form.Name,
		URL:         form.URL,
		Description: form.Description,
	}
	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create wishlist item: %w", err)
	}
	s.refresher.GroupChanged(ctx, groupID)
	return item, nil
}

// RemoveWishlistItem deletes one of the member's own wishes.
func (s *GroupService) RemoveWishlistItem(ctx context.Context, userID, groupID, itemID int) error {
	if _, err := s.memberRepo.GetByGroupAndUser(ctx, groupID, userID); err != nil {
		if repository.IsNotFound(err) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if err := s.wishlistRepo.Delete(ctx, itemID, userID); err != nil {
		if repository.IsNotFound(err) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	s.refresher.GroupChanged(ctx, groupID)
	return nil
}
