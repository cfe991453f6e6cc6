package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifTeamInvitation        NotificationType = "team_invitation"
	NotifReplacementInvitation NotificationType = "replacement_invitation"
	NotifTeamAccepted          NotificationType = "team_accepted"
	NotifTeamRejected          NotificationType = "team_rejected"
	NotifPartialAcceptance     NotificationType = "partial_acceptance"
	NotifInvitationExpired     NotificationType = "invitation_expired"
)

// Notification is a one-way message about a project event. Read state is
// mutated only by the recipient.
type Notification struct {
	ID     uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type   NotificationType `gorm:"type:varchar(40);not null" json:"type"`

	Title string `gorm:"type:varchar(200)" json:"title"`
	Body  string `gorm:"type:text" json:"body"`

	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
