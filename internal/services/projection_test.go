package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiofrota/migoculto/internal/models"
)

var projBase = time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

// drawnGroup builds a four-member DRAWN group with the cycle
// V(1) -> B(2) -> C(3) -> D(4) -> V(1), so viewer 1 drew user 2 and was
// drawn by user 4.
func drawnGroup(status models.GroupStatus) (*models.Group, []models.MemberWithUser) {
	group := &models.Group{
		ID:      1,
		Name:    "Office Exchange",
		OwnerID: 1,
		Status:  status,
	}
	joined := projBase.Add(-24 * time.Hour)
	cycle := map[int]int{1: 2, 2: 3, 3: 4, 4: 1}
	names := map[int][2]string{
		1: {"Vera", "Lima"},
		2: {"Bruno", "Costa"},
		3: {"Carla", "Souza"},
		4: {"Diego", "Alves"},
	}

	var members []models.MemberWithUser
	for userID := 1; userID <= 4; userID++ {
		m := models.MemberWithUser{
			Member: models.Member{
				ID:          userID * 10,
				GroupID:     1,
				UserID:      userID,
				IsConfirmed: true,
				JoinedAt:    joined,
			},
			FirstName: names[userID][0],
			LastName:  names[userID][1],
		}
		if status != models.StatusOpen {
			m.AssignedUserID = intPtr(cycle[userID])
		}
		members = append(members, m)
	}
	return group, members
}

func msg(id, sender int, receiver *int, at time.Time) models.Message {
	return models.Message{
		ID:         id,
		GroupID:    1,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    "hello",
		CreatedAt:  at,
	}
}

func TestProjectMessages_PublicScope(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	messages := []models.Message{
		msg(1, 2, nil, projBase.Add(1*time.Minute)),
		msg(2, 1, nil, projBase.Add(2*time.Minute)),
		msg(3, 3, nil, projBase.Add(3*time.Minute)),
	}

	proj := ProjectMessages(1, group, members, messages)

	require.Len(t, proj.Public, 3)
	assert.Equal(t, "Bruno Costa", proj.Public[0].Sender, "public senders keep their real name")
	assert.False(t, proj.Public[0].IsMine)
	assert.Equal(t, "You", proj.Public[1].Sender)
	assert.True(t, proj.Public[1].IsMine)
	assert.Equal(t, "Carla Souza", proj.Public[2].Sender)

	// Ordered ascending by creation time.
	assert.True(t, proj.Public[0].CreatedAt.Before(proj.Public[1].CreatedAt))
	assert.True(t, proj.Public[1].CreatedAt.Before(proj.Public[2].CreatedAt))
}

// Viewer 1 drew user 2 and was drawn by user 4. A private message from 2 must
// land in the assignee conversation, masked while DRAWN, and must never leak
// into the drew-me conversation or to unrelated members.
func TestProjectMessages_PrivateScopes_Drawn(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	messages := []models.Message{
		msg(1, 2, intPtr(1), projBase.Add(1*time.Minute)), // from my assignee
		msg(2, 1, intPtr(2), projBase.Add(2*time.Minute)), // to my assignee
		msg(3, 4, intPtr(1), projBase.Add(3*time.Minute)), // from whoever drew me
		msg(4, 1, intPtr(4), projBase.Add(4*time.Minute)), // to whoever drew me
	}

	proj := ProjectMessages(1, group, members, messages)

	require.Len(t, proj.ToAssignee, 2)
	assert.Equal(t, "Whoever I drew", proj.ToAssignee[0].Sender)
	assert.False(t, proj.ToAssignee[0].IsMine)
	assert.Equal(t, "You", proj.ToAssignee[1].Sender)
	assert.True(t, proj.ToAssignee[1].IsMine)

	require.Len(t, proj.ToAssignedOf, 2)
	assert.Equal(t, "Whoever drew me", proj.ToAssignedOf[0].Sender)
	assert.Equal(t, "Me", proj.ToAssignedOf[1].Sender)

	// Message 1 must not appear in the drew-me view.
	for _, v := range proj.ToAssignedOf {
		assert.NotEqual(t, 1, v.ID)
	}

	// An unrelated member (user 3) sees none of these private messages.
	other := ProjectMessages(3, group, members, messages)
	assert.Empty(t, other.ToAssignee)
	assert.Empty(t, other.ToAssignedOf)
	assert.Empty(t, other.Public)
}

func TestProjectMessages_RevealOnClose(t *testing.T) {
	messages := []models.Message{
		msg(1, 2, intPtr(1), projBase.Add(1*time.Minute)),
		msg(2, 4, intPtr(1), projBase.Add(2*time.Minute)),
	}

	group, members := drawnGroup(models.StatusDrawn)
	masked := ProjectMessages(1, group, members, messages)
	require.Len(t, masked.ToAssignee, 1)
	assert.Equal(t, "Whoever I drew", masked.ToAssignee[0].Sender)

	group, members = drawnGroup(models.StatusClosed)
	revealed := ProjectMessages(1, group, members, messages)
	require.Len(t, revealed.ToAssignee, 1)
	assert.Equal(t, "Bruno Costa", revealed.ToAssignee[0].Sender, "closing the group lifts anonymity")
	require.Len(t, revealed.ToAssignedOf, 1)
	assert.Equal(t, "Diego Alves", revealed.ToAssignedOf[0].Sender)
}

func TestProjectMessages_OpenGroupHasNoPrivateScopes(t *testing.T) {
	group, members := drawnGroup(models.StatusOpen)
	messages := []models.Message{
		msg(1, 2, nil, projBase.Add(1*time.Minute)),
		msg(2, 2, intPtr(1), projBase.Add(2*time.Minute)),
	}

	proj := ProjectMessages(1, group, members, messages)

	assert.Len(t, proj.Public, 1)
	assert.Empty(t, proj.ToAssignee, "no assignee exists while OPEN")
	assert.Empty(t, proj.ToAssignedOf)
}

func TestProjectMessages_ExcludesHistoryBeforeJoin(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)

	// Viewer joined a day before projBase; these all predate that.
	old := projBase.Add(-48 * time.Hour)
	messages := []models.Message{
		msg(1, 2, nil, old),
		msg(2, 2, intPtr(1), old.Add(time.Minute)),
		msg(3, 4, intPtr(1), members[0].JoinedAt), // exactly at joinedAt is still history
	}

	proj := ProjectMessages(1, group, members, messages)

	assert.Empty(t, proj.Public)
	assert.Empty(t, proj.ToAssignee)
	assert.Empty(t, proj.ToAssignedOf)
	assert.Zero(t, proj.UnreadCount)
	assert.Nil(t, proj.LastMessage)
}

func TestProjectMessages_UnreadCount(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	markedAt := projBase.Add(2 * time.Minute)
	members[0].LastReadAt = timePtr(markedAt)

	messages := []models.Message{
		msg(1, 2, nil, projBase.Add(1*time.Minute)), // read
		msg(2, 3, nil, markedAt),                    // exactly at the mark: read
		msg(3, 2, nil, projBase.Add(3*time.Minute)), // unread
		msg(4, 4, intPtr(1), projBase.Add(4*time.Minute)), // unread, private
	}

	proj := ProjectMessages(1, group, members, messages)
	assert.Equal(t, 2, proj.UnreadCount)
}

func TestProjectMessages_NilLastReadCountsEverything(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	messages := []models.Message{
		msg(1, 2, nil, projBase.Add(1*time.Minute)),
		msg(2, 3, nil, projBase.Add(2*time.Minute)),
	}

	proj := ProjectMessages(1, group, members, messages)
	assert.Equal(t, 2, proj.UnreadCount)
}

func TestProjectMessages_LastMessage(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	messages := []models.Message{
		msg(1, 3, nil, projBase.Add(1*time.Minute)),
		msg(2, 4, intPtr(1), projBase.Add(5*time.Minute)),
	}

	proj := ProjectMessages(1, group, members, messages)
	require.NotNil(t, proj.LastMessage)
	assert.Equal(t, 2, proj.LastMessage.ID)
	assert.Equal(t, "Whoever drew me", proj.LastMessage.Sender)
}

func TestProjectMessages_NonMemberSeesNothing(t *testing.T) {
	group, members := drawnGroup(models.StatusDrawn)
	messages := []models.Message{msg(1, 2, nil, projBase.Add(time.Minute))}

	proj := ProjectMessages(99, group, members, messages)
	assert.Empty(t, proj.Public)
	assert.Nil(t, proj.LastMessage)
}

func TestCountUnread(t *testing.T) {
	t2 := projBase
	messages := []models.Message{
		{ID: 1, CreatedAt: t2.Add(-time.Hour)},
		{ID: 2, CreatedAt: t2.Add(time.Hour)},
	}

	assert.Equal(t, 1, CountUnread(messages, &t2), "only the later message is unread")
	assert.Equal(t, 2, CountUnread(messages, nil), "nil mark means everything is unread")
}
