package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/notify"
	"github.com/caiofrota/migoculto/internal/realtime"
	"github.com/caiofrota/migoculto/internal/repository"
)

// MessageService posts messages into a group's public or private scopes.
type MessageService struct {
	groupRepo   *repository.GroupRepository
	memberRepo  *repository.MemberRepository
	messageRepo *repository.MessageRepository
	notifier    notify.Notifier
	refresher   realtime.Refresher
}

// NewMessageService creates a MessageService with initialized repositories.
func NewMessageService(notifier notify.Notifier, refresher realtime.Refresher) *MessageService {
	return &MessageService{
		groupRepo:   repository.NewGroupRepository(),
		memberRepo:  repository.NewMemberRepository(),
		messageRepo: repository.NewMessageRepository(),
		notifier:    notifier,
		refresher:   refresher,
	}
}

// Post creates a message. A nil receiver means public. A private message is
// only constructible once a pairing exists (status is not OPEN) and only
// towards the sender's two counterparts: their assignee or whoever drew
// them - any other private recipient would fall outside every visibility
// scope and silently vanish.
//
// The status check, the pairing check and the insert run in one transaction
// under the group row lock; a re-draw racing the post waits on the lock, so
// its purge can never leave behind a private message scoped to a pairing
// that no longer exists.
//
// Posting also bumps the sender's last-read mark: writing into a
// conversation implies having seen it.
func (s *MessageService) Post(ctx context.Context, senderID, groupID int, form models.PostMessageForm) (*models.Message, error) {
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
	sender, err := s.memberRepo.GetByGroupAndUser(ctx, groupID, senderID)
	if err != nil {
		if repository.IsNotFound(err) {
			// Non-members are not told the group exists.
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	receiverID := form.ReceiverID
	if receiverID != nil && *receiverID == 0 {
		receiverID = nil
	}
	if receiverID != nil {
		if group.Status == models.StatusOpen {
			return nil, fmt.Errorf("%w: no pairing exists yet for private messages", ErrStateConflict)
		}
		if err := s.checkCounterpart(ctx, group, sender, *receiverID); err != nil {
			return nil, err
		}
	}

	message := &models.Message{
		GroupID:    groupID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    form.Content,
	}
	if err := s.messageRepo.CreateTx(ctx, tx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	if err := s.memberRepo.UpdateLastRead(ctx, groupID, senderID, time.Now()); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"group_id": groupID,
			"user_id":  senderID,
		}).Warn("Failed to bump sender last read")
	}

	s.dispatch(ctx, group, message, senderID)
	return message, nil
}

// checkCounterpart verifies the private recipient is the sender's assignee
// or the member who drew the sender.
func (s *MessageService) checkCounterpart(ctx context.Context, group *models.Group, sender *models.Member, receiverID int) error {
	if receiverID == sender.UserID {
		return fmt.Errorf("%w: cannot message yourself", ErrStateConflict)
	}
	if sender.AssignedUserID != nil && *sender.AssignedUserID == receiverID {
		return nil
	}
	members, err := s.memberRepo.ListActiveByGroup(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.UserID == receiverID {
			if m.AssignedUserID != nil && *m.AssignedUserID == sender.UserID {
				return nil
			}
			return fmt.Errorf("%w: recipient is not a counterpart in your pairing", ErrForbidden)
		}
	}
	return ErrMemberNotFound
}

func (s *MessageService) dispatch(ctx context.Context, group *models.Group, message *models.Message, senderID int) {
	if message.ReceiverID == nil {
		members, err := s.memberRepo.ListActiveByGroup(ctx, group.ID)
		if err != nil {
			logrus.WithError(err).WithField("group_id", group.ID).Warn("Failed to list notification recipients")
		} else {
			var recipients []int
			for _, m := range members {
				if m.UserID != senderID {
					recipients = append(recipients, m.UserID)
				}
			}
			s.notifier.Notify(ctx, notify.TypeGroupMessage, notify.EventPayload{
				GroupID:      group.ID,
				GroupName:    group.Name,
				RecipientIDs: recipients,
			})
		}
	} else {
		s.notifier.Notify(ctx, notify.TypeInboxMessage, notify.EventPayload{
			GroupID:      group.ID,
			GroupName:    group.Name,
			RecipientIDs: []int{*message.ReceiverID},
		})
	}
	s.refresher.GroupChanged(ctx, group.ID)
}
