package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/notify"
	"github.com/caiofrota/migoculto/internal/realtime"
	"github.com/caiofrota/migoculto/internal/repository"
)

// GroupService owns the group lifecycle: which operations are legal in
// which status, and the one multi-record transition (the draw). All writes
// that depend on the group's status run under the group row lock so
// concurrent requests serialize per group.
//
// Notification and refresh collaborators are invoked only after the core
// write committed, and their failures never propagate back.
type GroupService struct {
	groupRepo    *repository.GroupRepository
	memberRepo   *repository.MemberRepository
	messageRepo  *repository.MessageRepository
	wishlistRepo *repository.WishlistRepository
	drawer       *Drawer
	notifier     notify.Notifier
	refresher    realtime.Refresher
}

// NewGroupService creates a GroupService with initialized repositories.
func NewGroupService(drawer *Drawer, notifier notify.Notifier, refresher realtime.Refresher) *GroupService {
	return &GroupService{
		groupRepo:    repository.NewGroupRepository(),
		memberRepo:   repository.NewMemberRepository(),
		messageRepo:  repository.NewMessageRepository(),
		wishlistRepo: repository.NewWishlistRepository(),
		drawer:       drawer,
		notifier:     notifier,
		refresher:    refresher,
	}
}

// CreateGroup creates an OPEN group with the creator as its first,
// confirmed member.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID int, form models.CreateGroupForm) (*models.Group, error) {
	group := &models.Group{
		Name:           form.Name,
		Description:    form.Description,
		Location:       form.Location,
		AdditionalInfo: form.AdditionalInfo,
		EventDate:      form.EventDate,
		JoinCode:       uuid.NewString(),
		Password:       form.Password,
		OwnerID:        ownerID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"group_id": group.ID,
		"owner_id": ownerID,
	}).Info("Group created")
	return group, nil
}

// Join adds the user to an OPEN group after checking the shared password.
// A member who previously left is reactivated instead of duplicated.
func (s *GroupService) Join(ctx context.Context, userID, groupID int, password string) (*models.Group, error) {
	return s.join(ctx, userID, groupID, func(g *models.Group) error {
		if g.Password != password {
			return ErrWrongPassword
		}
		return nil
	})
}

// JoinByCode adds the user via the opaque invite code (QR flow). The code
// itself is the credential; no password check.
func (s *GroupService) JoinByCode(ctx context.Context, userID int, joinCode string) (*models.Group, error) {
	group, err := s.groupRepo.GetByJoinCode(ctx, joinCode)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return s.join(ctx, userID, group.ID, func(*models.Group) error { return nil })
}

func (s *GroupService) join(ctx context.Context, userID, groupID int, credential func(*models.Group) error) (*models.Group, error) {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := s.groupRepo.GetForUpdate(ctx, tx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}
	if err := credential(group); err != nil {
		return nil, err
	}
	if group.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: cannot join a %s group", ErrStateConflict, group.Status)
	}
	if _, err := s.memberRepo.GetByGroupAndUser(ctx, groupID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	revived, err := s.memberRepo.ReactivateTx(ctx, tx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate member: %w", err)
	}
	if !revived {
		member := &models.Member{GroupID: groupID, UserID: userID, IsConfirmed: true}
		if err := s.memberRepo.CreateTx(ctx, tx, member); err != nil {
			return nil, fmt.Errorf("failed to create member: %w", err)
		}
	}
	if err := s.groupRepo.TouchTx(ctx, tx, groupID); err != nil {
		return nil, fmt.Errorf("failed to touch group: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "user_id": userID}).Info("Member joined")
	s.afterChange(ctx, group, notify.TypeMemberJoined, s.recipientsExcept(ctx, groupID, userID), "")
	return group, nil
}

// Leave soft-removes the acting member from an OPEN group. The owner cannot
// leave their own group.
func (s *GroupService) Leave(ctx context.Context, userID, groupID int) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := s.groupRepo.GetForUpdate(ctx, tx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to lock group: %w", err)
	}
	member, err := s.memberRepo.GetByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to load member: %w", err)
	}
	if group.Status != models.StatusOpen {
		return fmt.Errorf("%w: cannot leave a %s group", ErrStateConflict, group.Status)
	}
	if group.OwnerID == userID {
		return fmt.Errorf("%w: the owner cannot leave the group", ErrStateConflict)
	}

	if err := s.memberRepo.ArchiveTx(ctx, tx, member.ID); err != nil {
		return fmt.Errorf("failed to archive member: %w", err)
	}
	if err := s.groupRepo.TouchTx(ctx, tx, groupID); err != nil {
		return fmt.Errorf("failed to touch group: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leave: %w", err)
	}

	logrus.WithFields(logrus.Fields{"group_id": groupID, "user_id": userID}).Info("Member left")
	s.afterChange(ctx, group, notify.TypeMemberLeft, s.recipientsExcept(ctx, groupID, userID), "")
	return nil
}

// RemoveMember hard-removes a member from an OPEN group. Owner-only; the
// owner member itself can never be removed.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, memberID int) error {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := s.groupRepo.GetForUpdate(ctx, tx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to lock group: %w", err)
	}
	if group.OwnerID != actorID {
		return ErrForbidden
	}
	target, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil || target.GroupID != groupID {
		if err != nil && !repository.IsNotFound(err) {
			return fmt.Errorf("failed to load member: %w", err)
		}
		return ErrMemberNotFound
	}
	if group.Status != models.StatusOpen {
		return fmt.Errorf("%w: cannot remove members from a %s group", ErrStateConflict, group.Status)
	}
	if target.UserID == group.OwnerID {
		return fmt.Errorf("%w: the owner cannot be removed", ErrStateConflict)
	}

	if err := s.memberRepo.DeleteTx(ctx, tx, memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if err := s.groupRepo.TouchTx(ctx, tx, groupID); err != nil {
		return fmt.Errorf("failed to touch group: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"group_id":  groupID,
		"member_id": memberID,
		"actor_id":  actorID,
	}).Info("Member removed")
	s.afterChange(ctx, group, notify.TypeMemberRemoved, []int{target.UserID}, "")
	return nil
}

// Draw computes and persists the secret pairing. Owner-only. Legal while
// OPEN (first draw) and while DRAWN (re-draw, replacing every assignment);
// a CLOSED group can never be drawn again.
//
// The whole operation runs in one transaction under the group row lock: the
// member snapshot the pairing is computed from, every member's assignment,
// the status flip and the purge of private messages. A join or leave racing
// the draw waits on the lock, so the pairing always covers exactly the
// membership it committed against.
func (s *GroupService) Draw(ctx context.Context, actorID, groupID int) (*models.Group, error) {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := s.groupRepo.GetForUpdate(ctx, tx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}
	if group.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if group.Status == models.StatusClosed {
		return nil, fmt.Errorf("%w: cannot draw a CLOSED group", ErrStateConflict)
	}

	members, err := s.memberRepo.ListActiveByGroupTx(ctx, tx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	memberIDs := make([]int, len(members))
	userByMember := make(map[int]int, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
		userByMember[m.ID] = m.UserID
	}

	pairing, err := s.drawer.Draw(memberIDs)
	if err != nil {
		return nil, err
	}

	// The engine pairs member ids; storage keeps the receiving *user* id
	// on each member row.
	assignments := make(map[int]int, len(pairing))
	for giverMemberID, receiverMemberID := range pairing {
		assignments[giverMemberID] = userByMember[receiverMemberID]
	}

	if err := s.groupRepo.ApplyDrawTx(ctx, tx, groupID, assignments); err != nil {
		return nil, fmt.Errorf("failed to apply draw: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit draw: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"group_id":  groupID,
		"members":   len(members),
		"owner_id":  actorID,
		"was_drawn": group.Status == models.StatusDrawn,
	}).Info("Group drawn")

	group.Status = models.StatusDrawn
	s.afterChange(ctx, group, notify.TypeGroupDrawn, s.recipientsExcept(ctx, groupID, actorID), "")
	return group, nil
}

// Close moves a DRAWN group to its terminal CLOSED state, lifting the
// anonymity of every pairing. Owner-only.
func (s *GroupService) Close(ctx context.Context, actorID, groupID int) (*models.Group, error) {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	group, err := s.groupRepo.GetForUpdate(ctx, tx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to lock group: %w", err)
	}
	if group.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if group.Status != models.StatusDrawn {
		return nil, fmt.Errorf("%w: only a DRAWN group can be closed", ErrStateConflict)
	}

	if err := s.groupRepo.SetStatusTx(ctx, tx, groupID, models.StatusClosed); err != nil {
		return nil, fmt.Errorf("failed to close group: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit close: %w", err)
	}

	logrus.WithField("group_id", groupID).Info("Group closed")
	group.Status = models.StatusClosed
	s.refresher.GroupChanged(ctx, groupID)
	return group, nil
}

// MarkAsRead sets the member's last-read mark to now. Messages created
// after this call remain unread.
func (s *GroupService) MarkAsRead(ctx context.Context, userID, groupID int) (time.Time, error) {
	readAt := time.Now()
	if err := s.memberRepo.UpdateLastRead(ctx, groupID, userID, readAt); err != nil {
		if repository.IsNotFound(err) {
			return time.Time{}, ErrMemberNotFound
		}
		return time.Time{}, fmt.Errorf("failed to update last read: %w", err)
	}
	return readAt, nil
}

// recipientsExcept lists the user ids of all active members except one.
// Used to pick notification audiences; failures degrade to an empty list.
func (s *GroupService) recipientsExcept(ctx context.Context, groupID, exceptUserID int) []int {
	members, err := s.memberRepo.ListActiveByGroup(ctx, groupID)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to list notification recipients")
		return nil
	}
	var recipients []int
	for _, m := range members {
		if m.UserID != exceptUserID {
			recipients = append(recipients, m.UserID)
		}
	}
	return recipients
}

// afterChange dispatches the best-effort collaborators once the core write
// has committed.
func (s *GroupService) afterChange(ctx context.Context, group *models.Group, taskType string, recipients []int, actorName string) {
	s.notifier.Notify(ctx, taskType, notify.EventPayload{
		GroupID:      group.ID,
		GroupName:    group.Name,
		ActorName:    actorName,
		RecipientIDs: recipients,
	})
	s.refresher.GroupChanged(ctx, group.ID)
}
