package services

import (
	"sort"
	"time"

	"github.com/caiofrota/migoculto/internal/models"
)

// Display labels used when a counterpart's identity is still secret, plus
// the first-person labels. The masks only apply while the group is DRAWN;
// closing the group reveals real names.
const (
	labelYou           = "You"
	labelMe            = "Me"
	labelWhoeverIDrew  = "Whoever I drew"
	labelWhoeverDrewMe = "Whoever drew me"
	labelFormerMember  = "Former member"
)

// Projection is everything one viewer may see of a group's message log,
// split into the three visibility scopes.
type Projection struct {
	// Public holds group-wide messages, oldest first.
	Public []models.MessageView
	// ToAssignee holds the private conversation with the member the
	// viewer drew. Empty while the group is OPEN.
	ToAssignee []models.MessageView
	// ToAssignedOf holds the private conversation with whoever drew the
	// viewer. Empty while the group is OPEN.
	ToAssignedOf []models.MessageView
	// UnreadCount counts visible messages newer than the viewer's
	// last-read mark.
	UnreadCount int
	// LastMessage is the newest visible message across all scopes.
	LastMessage *models.MessageView
}

// ProjectMessages computes the per-viewer projection of a group's raw
// message log. It is a pure function of its inputs: persistence of the
// last-read mark is a separate write the caller triggers, never a side
// effect of projecting.
//
// Rules:
//   - messages created at or before the viewer's joinedAt are invisible in
//     every scope (members do not see history predating their membership);
//   - private messages are only visible inside the two conversations the
//     viewer takes part in (with their assignee and with whoever drew them);
//   - counterpart identities are masked while the group is DRAWN and
//     revealed once it is CLOSED;
//   - unread accounting treats a missing last-read mark as the epoch.
func ProjectMessages(viewerUserID int, group *models.Group, members []models.MemberWithUser, messages []models.Message) Projection {
	var proj Projection

	viewer := findMemberByUser(members, viewerUserID)
	if viewer == nil {
		return proj
	}

	// Derived relations: who the viewer gives to, and who gives to the
	// viewer. assignedOf is a lookup, never stored.
	var assignee, assignedOf *models.MemberWithUser
	if viewer.AssignedUserID != nil {
		assignee = findMemberByUser(members, *viewer.AssignedUserID)
	}
	for i := range members {
		m := &members[i]
		if m.ArchivedAt == nil && m.AssignedUserID != nil && *m.AssignedUserID == viewerUserID {
			assignedOf = m
			break
		}
	}

	names := make(map[int]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.FullName()
	}

	visible := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		if !msg.CreatedAt.After(viewer.JoinedAt) {
			continue
		}
		if msg.ReceiverID == nil || msg.SenderID == viewerUserID || *msg.ReceiverID == viewerUserID {
			visible = append(visible, msg)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})

	proj.UnreadCount = CountUnread(visible, viewer.LastReadAt)

	revealed := group.Status == models.StatusClosed

	for _, msg := range visible {
		switch {
		case msg.ReceiverID == nil:
			proj.Public = append(proj.Public, models.MessageView{
				ID:        msg.ID,
				Sender:    publicLabel(msg.SenderID, viewerUserID, names),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
				IsMine:    msg.SenderID == viewerUserID,
			})

		case assignee != nil && betweenUsers(msg, viewerUserID, assignee.UserID):
			proj.ToAssignee = append(proj.ToAssignee, models.MessageView{
				ID:        msg.ID,
				Sender:    privateLabel(msg.SenderID, viewerUserID, labelYou, labelWhoeverIDrew, assignee.FullName(), revealed),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
				IsMine:    msg.SenderID == viewerUserID,
			})

		case assignedOf != nil && betweenUsers(msg, viewerUserID, assignedOf.UserID):
			proj.ToAssignedOf = append(proj.ToAssignedOf, models.MessageView{
				ID:        msg.ID,
				Sender:    privateLabel(msg.SenderID, viewerUserID, labelMe, labelWhoeverDrewMe, assignedOf.FullName(), revealed),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
				IsMine:    msg.SenderID == viewerUserID,
			})
		}
	}

	proj.LastMessage = lastMessageView(&proj)
	return proj
}

// betweenUsers reports whether a private message belongs to the two-party
// conversation between a and b.
func betweenUsers(msg models.Message, a, b int) bool {
	if msg.ReceiverID == nil {
		return false
	}
	return (msg.SenderID == a && *msg.ReceiverID == b) ||
		(msg.SenderID == b && *msg.ReceiverID == a)
}

func publicLabel(senderID, viewerID int, names map[int]string) string {
	if senderID == viewerID {
		return labelYou
	}
	if name, ok := names[senderID]; ok {
		return name
	}
	return labelFormerMember
}

func privateLabel(senderID, viewerID int, ownLabel, mask, realName string, revealed bool) string {
	if senderID == viewerID {
		return ownLabel
	}
	if revealed {
		return realName
	}
	return mask
}

// lastMessageView picks the newest view across the three scopes. The scope
// views already carry the right label for this viewer.
func lastMessageView(proj *Projection) *models.MessageView {
	var last *models.MessageView
	for _, scope := range [][]models.MessageView{proj.Public, proj.ToAssignee, proj.ToAssignedOf} {
		if len(scope) == 0 {
			continue
		}
		candidate := scope[len(scope)-1]
		if last == nil || candidate.CreatedAt.After(last.CreatedAt) {
			c := candidate
			last = &c
		}
	}
	return last
}

// findMemberByUser returns the active member row for a user, or nil.
func findMemberByUser(members []models.MemberWithUser, userID int) *models.MemberWithUser {
	for i := range members {
		if members[i].UserID == userID && members[i].ArchivedAt == nil {
			return &members[i]
		}
	}
	return nil
}

// CountUnread reports how many of the given messages are unread for a
// last-read mark, treating nil as the epoch. A message created exactly at
// the mark is read; marking as read never retroactively covers messages
// created after the mark was set.
func CountUnread(messages []models.Message, lastReadAt *time.Time) int {
	lastRead := time.Time{}
	if lastReadAt != nil {
		lastRead = *lastReadAt
	}
	count := 0
	for _, msg := range messages {
		if msg.CreatedAt.After(lastRead) {
			count++
		}
	}
	return count
}
