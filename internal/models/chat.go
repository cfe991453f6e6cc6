package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom is the per-project room created when a team resolves. A partial
// acceptance leaves the rejecting role's column nil. ProjectID is unique so the
// resolution check can never create a second room for the same project.
type ChatRoom struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"project_id"`

	BusinessID  uuid.UUID  `gorm:"type:uuid;index" json:"business_id"`
	DesignerID  *uuid.UUID `gorm:"type:uuid;index" json:"designer_id,omitempty"`
	DeveloperID *uuid.UUID `gorm:"type:uuid;index" json:"developer_id,omitempty"`

	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Business  *User     `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Designer  *User     `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	Developer *User     `gorm:"foreignKey:DeveloperID" json:"developer,omitempty"`
	Messages  []Message `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

// MemberIDs returns every participant of the room.
func (r *ChatRoom) MemberIDs() []uuid.UUID {
	ids := []uuid.UUID{r.BusinessID}
	if r.DesignerID != nil {
		ids = append(ids, *r.DesignerID)
	}
	if r.DeveloperID != nil {
		ids = append(ids, *r.DeveloperID)
	}
	return ids
}

// IsMember reports whether userID participates in the room.
func (r *ChatRoom) IsMember(userID uuid.UUID) bool {
	for _, id := range r.MemberIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is a chat message in a room. Type distinguishes system notices
// (team resolution, replacement) from ordinary text.
type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoomID   uuid.UUID `gorm:"type:uuid;index" json:"room_id"`
	SenderID uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Type     string    `gorm:"default:'text'" json:"type"` // text, system
	Text     string    `json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// RoomMemberRead tracks per-member read position; with three participants a
// single is_read flag on the message would be ambiguous.
type RoomMemberRead struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID     uuid.UUID `gorm:"type:uuid;index" json:"room_id"`
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	LastReadAt time.Time `json:"last_read_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
