// Package models defines the domain entities and data transfer objects for
// Migoculto. It includes database models mapped to PostgreSQL tables, form
// DTOs for request input, and view models for API responses.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// GroupStatus is the lifecycle state of a group.
//
// A group only ever advances OPEN -> DRAWN -> CLOSED; the single exception is
// DRAWN -> DRAWN (re-draw). There is no way back to OPEN once drawn.
type GroupStatus string

const (
	// StatusOpen allows membership changes; no assignments exist yet.
	StatusOpen GroupStatus = "OPEN"
	// StatusDrawn means assignments exist and membership is frozen.
	// Re-drawing is allowed and replaces every assignment.
	StatusDrawn GroupStatus = "DRAWN"
	// StatusClosed is terminal: reads only, anonymity lifted.
	StatusClosed GroupStatus = "CLOSED"
)

// User represents a registered account.
//
// Database Table: users
// Security Note: PasswordHash must never be exposed in API responses or logs.
type User struct {
	ID           int       `db:"id"`            // Primary key, auto-increment
	Email        string    `db:"email"`         // Unique, used for login
	FirstName    string    `db:"first_name"`    // Display first name
	LastName     string    `db:"last_name"`     // Display last name
	PasswordHash string    `db:"password_hash"` // bcrypt hashed password
	CreatedAt    time.Time `db:"created_at"`    // Account creation timestamp
}

// FullName returns the display name used in message labels.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Group represents one secret gift-exchange event. Groups are serialized
// directly in lifecycle responses, so fields carry json tags; the shared
// join password never leaves the server.
//
// Database Table: groups
// Related: Member (one-to-many), Message (one-to-many)
type Group struct {
	ID             int         `db:"id" json:"id"`                          // Primary key
	Name           string      `db:"name" json:"name"`                      // Display name
	Description    string      `db:"description" json:"description"`        // Optional description
	Location       string      `db:"location" json:"location"`              // Optional event location
	AdditionalInfo string      `db:"additional_info" json:"additionalInfo"` // Optional free-form notes
	EventDate      *time.Time  `db:"event_date" json:"eventDate"`           // When the exchange happens
	JoinCode       string      `db:"join_code" json:"joinCode"`             // Opaque code embedded in invite links / QR
	Password       string      `db:"password" json:"-"`                     // Shared join password chosen by the owner
	OwnerID        int         `db:"owner_id" json:"ownerId"`               // Foreign key to users.id
	Status         GroupStatus `db:"status" json:"status"`                  // OPEN, DRAWN or CLOSED
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`           // Creation timestamp
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`           // Bumped on every state change
}

// Member represents a user's membership in a group.
//
// AssignedUserID is NULL while the group is OPEN. After a draw it points to
// the user this member secretly gives to - never to the member's own user.
// The set of assignment edges over a group's active members always forms a
// single cycle covering all of them.
//
// Database Table: members
type Member struct {
	ID             int        `db:"id"`               // Primary key
	GroupID        int        `db:"group_id"`         // Foreign key to groups.id
	UserID         int        `db:"user_id"`          // Foreign key to users.id
	AssignedUserID *int       `db:"assigned_user_id"` // User this member gives to (nil while OPEN)
	IsConfirmed    bool       `db:"is_confirmed"`     // Membership confirmation flag
	JoinedAt       time.Time  `db:"joined_at"`        // Membership start; gates message visibility
	LastReadAt     *time.Time `db:"last_read_at"`     // High-water mark for unread accounting
	ArchivedAt     *time.Time `db:"archived_at"`      // Set when the member left; history retained
}

// Message represents a chat message inside a group.
//
// ReceiverID NULL means public (visible to the whole group). A non-NULL
// receiver makes the message private between sender and receiver; private
// messages are purged whenever the group is drawn or re-drawn, since the
// pairing they were scoped to no longer exists.
//
// Database Table: messages
type Message struct {
	ID         int       `db:"id" json:"id"`                  // Primary key
	GroupID    int       `db:"group_id" json:"groupId"`       // Foreign key to groups.id
	SenderID   int       `db:"sender_id" json:"senderId"`     // Foreign key to users.id
	ReceiverID *int      `db:"receiver_id" json:"receiverId"` // nil = public, otherwise private recipient
	Content    string    `db:"content" json:"content"`        // Message body
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`   // Creation timestamp, orders all views
}

// WishlistItem represents one gift suggestion a member published for
// whoever drew them.
//
// Database Table: wishlist_items
type WishlistItem struct {
	ID          int       `db:"id" json:"id"`                   // Primary key
	GroupID     int       `db:"group_id" json:"groupId"`        // Foreign key to groups.id
	UserID      int       `db:"user_id" json:"userId"`          // Owner of the wish
	Name        string    `db:"name" json:"name"`               // Item name
	URL         string    `db:"url" json:"url"`                 // Optional store link
	Description string    `db:"description" json:"description"` // Optional details
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`    // Creation timestamp
}

// ============================================================================
// Joined rows
// ============================================================================

// MemberWithUser is a member row joined with the user's public identity.
// The projector and the member listings need names without extra lookups.
type MemberWithUser struct {
	Member
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// FullName returns the member's display name.
func (m MemberWithUser) FullName() string {
	return m.FirstName + " " + m.LastName
}

// ============================================================================
// Data Transfer Objects (DTOs) - Request Input
// ============================================================================

// RegisterForm is the payload for account creation.
type RegisterForm struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// LoginForm is the payload for authentication.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateGroupForm is the payload for creating a group.
type CreateGroupForm struct {
	Name           string     `json:"name"`
	Password       string     `json:"password"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	AdditionalInfo string     `json:"additionalInfo"`
	EventDate      *time.Time `json:"eventDate"`
}

// JoinGroupForm carries the shared password for joining a group.
type JoinGroupForm struct {
	Password string `json:"password"`
}

// PostMessageForm is the payload for sending a message.
// ReceiverID nil or zero means public.
type PostMessageForm struct {
	Content    string `json:"content"`
	ReceiverID *int   `json:"receiverId"`
}

// WishlistItemForm is the payload for adding a wishlist item.
type WishlistItemForm struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ============================================================================
// View Models - API responses
// ============================================================================

// MessageView is a message as one specific viewer sees it: the sender is a
// display label, not an id, because identity redaction depends on who is
// looking and on the group status.
type MessageView struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsMine    bool      `json:"isMine"`
}

// MemberView is a member as shown in group detail responses. AssignedUserID
// is only populated for the viewer's own row, or for everyone once the group
// is CLOSED.
type MemberView struct {
	ID             int        `json:"id"`
	UserID         int        `json:"userId"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	AssignedUserID *int       `json:"assignedUserId"`
	IsConfirmed    bool       `json:"isConfirmed"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	WishlistCount  int        `json:"wishlistCount"`
}

// GroupView is the full per-viewer group detail response.
type GroupView struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Location         string         `json:"location"`
	AdditionalInfo   string         `json:"additionalInfo"`
	EventDate        *time.Time     `json:"eventDate"`
	JoinCode         string         `json:"joinCode,omitempty"`
	OwnerID          int            `json:"ownerId"`
	Status           GroupStatus    `json:"status"`
	IsOwner          bool           `json:"isOwner"`
	IsConfirmed      bool           `json:"isConfirmed"`
	MyMemberID       int            `json:"myMemberId"`
	MyAssignedUserID *int           `json:"myAssignedUserId"`
	AssignedOfUserID *int           `json:"assignedOfUserId"`
	LastRead         *time.Time     `json:"lastRead"`
	UnreadCount      int            `json:"unreadCount"`
	LastMessage      *MessageView   `json:"lastMessage"`
	LastUpdate       time.Time      `json:"lastUpdate"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Members          []MemberView   `json:"members"`
	GroupMessages    []MessageView  `json:"groupMessages"`
	ToAssignee       []MessageView  `json:"messagesAsGiftSender"`
	ToAssignedOf     []MessageView  `json:"messagesAsGiftReceiver"`
	Wishlist         []WishlistItem `json:"wishlist,omitempty"`
}
