package services

import (
	"context"
	"fmt"

	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/repository"
)

// GetGroupView assembles the full per-viewer group detail: membership with
// identity redaction, the three projected message views, unread accounting
// and the group wishlist. Viewers who are not active members get
// ErrGroupNotFound - they are not told the group exists.
func (s *GroupService) GetGroupView(ctx context.Context, viewerID, groupID int) (*models.GroupView, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	members, err := s.memberRepo.ListActiveByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	viewer := findMemberByUser(members, viewerID)
	if viewer == nil {
		return nil, ErrGroupNotFound
	}

	messages, err := s.messageRepo.ListForUser(ctx, groupID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	wishlist, err := s.wishlistRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	proj := ProjectMessages(viewerID, group, members, messages)

	wishCounts := make(map[int]int)
	for _, item := range wishlist {
		wishCounts[item.UserID]++
	}

	// assignedOf is derived, never stored: the member whose assignment
	// points back at the viewer.
	var assignedOfUserID *int
	for _, m := range members {
		if m.AssignedUserID != nil && *m.AssignedUserID == viewerID {
			id := m.UserID
			assignedOfUserID = &id
			break
		}
	}

	revealed := group.Status == models.StatusClosed
	memberViews := make([]models.MemberView, 0, len(members))
	for _, m := range members {
		mv := models.MemberView{
			ID:            m.ID,
			UserID:        m.UserID,
			FirstName:     m.FirstName,
			LastName:      m.LastName,
			IsConfirmed:   m.IsConfirmed,
			ArchivedAt:    m.ArchivedAt,
			WishlistCount: wishCounts[m.UserID],
		}
		// Assignments stay secret until the group closes; a member
		// always sees their own.
		if revealed || m.UserID == viewerID {
			mv.AssignedUserID = m.AssignedUserID
		}
		memberViews = append(memberViews, mv)
	}

	view := &models.GroupView{
		ID:               group.ID,
		Name:             group.Name,
		Description:      group.Description,
		Location:         group.Location,
		AdditionalInfo:   group.AdditionalInfo,
		EventDate:        group.EventDate,
		JoinCode:         group.JoinCode,
		OwnerID:          group.OwnerID,
		Status:           group.Status,
		IsOwner:          group.OwnerID == viewerID,
		IsConfirmed:      viewer.IsConfirmed,
		MyMemberID:       viewer.ID,
		MyAssignedUserID: viewer.AssignedUserID,
		AssignedOfUserID: assignedOfUserID,
		LastRead:         viewer.LastReadAt,
		UnreadCount:      proj.UnreadCount,
		LastMessage:      proj.LastMessage,
		LastUpdate:       group.UpdatedAt,
		CreatedAt:        group.CreatedAt,
		UpdatedAt:        group.UpdatedAt,
		Members:          memberViews,
		GroupMessages:    proj.Public,
		ToAssignee:       proj.ToAssignee,
		ToAssignedOf:     proj.ToAssignedOf,
		Wishlist:         wishlist,
	}
	if proj.LastMessage != nil && proj.LastMessage.CreatedAt.After(view.LastUpdate) {
		view.LastUpdate = proj.LastMessage.CreatedAt
	}
	return view, nil
}

// ListGroupViews returns the viewer's groups, each with its full per-viewer
// view, most recently joined first.
func (s *GroupService) ListGroupViews(ctx context.Context, viewerID int) ([]*models.GroupView, error) {
	groupIDs, err := s.memberRepo.ListGroupIDsByUser(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	views := make([]*models.GroupView, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		view, err := s.GetGroupView(ctx, viewerID, groupID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
