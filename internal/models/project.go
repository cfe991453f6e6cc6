package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	ProjectStatusIntake             ProjectStatus = "intake"
	ProjectStatusOffersPresented    ProjectStatus = "offers_presented"
	ProjectStatusAwaitingAcceptance ProjectStatus = "awaiting_acceptance"
	ProjectStatusTeamAccepted       ProjectStatus = "team_accepted"
)

type TeamTier string

const (
	TierPremium  TeamTier = "premium"
	TierPro      TeamTier = "pro"
	TierFreemium TeamTier = "freemium"
)

// ValidTier reports whether s names one of the three offer tiers.
func ValidTier(s string) bool {
	switch TeamTier(s) {
	case TierPremium, TierPro, TierFreemium:
		return true
	}
	return false
}

// Project is a unit of work requested by a business. Requirement fields are
// filled incrementally by the intake script; the selected-team columns are only
// ever written by the team service so status and flags stay consistent.
type Project struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`

	// Requirements gathered by intake
	WebsiteType      string         `gorm:"type:varchar(120)" json:"website_type"`
	DesignComplexity string         `gorm:"type:varchar(20)" json:"design_complexity"` // simple | moderate | advanced
	Features         datatypes.JSON `json:"features"`                                  // free-form tags, e.g. ["online payments", "user login"]
	PageCount        int            `json:"page_count"`
	Timeline         string         `gorm:"type:varchar(120)" json:"timeline"`
	BudgetRange      string         `gorm:"type:varchar(120)" json:"budget_range"`
	IntakeStep       int            `gorm:"default:0" json:"intake_step"`

	Status ProjectStatus `gorm:"type:varchar(30);default:'intake';index" json:"status"`

	// Selected team; nil designer/developer means no team is chosen
	SelectedDesignerID  *uuid.UUID `gorm:"type:uuid" json:"selected_designer_id,omitempty"`
	SelectedDeveloperID *uuid.UUID `gorm:"type:uuid" json:"selected_developer_id,omitempty"`
	SelectedTier        TeamTier   `gorm:"type:varchar(20)" json:"selected_tier,omitempty"`
	DesignerAccepted    bool       `gorm:"default:false" json:"designer_accepted"`
	DesignerRejected    bool       `gorm:"default:false" json:"designer_rejected"`
	DeveloperAccepted   bool       `gorm:"default:false" json:"developer_accepted"`
	DeveloperRejected   bool       `gorm:"default:false" json:"developer_rejected"`
	InvitationSentAt    *time.Time `json:"invitation_sent_at,omitempty"`

	ChatRoomID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"chat_room_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Business          *User `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	SelectedDesigner  *User `gorm:"foreignKey:SelectedDesignerID" json:"selected_designer,omitempty"`
	SelectedDeveloper *User `gorm:"foreignKey:SelectedDeveloperID" json:"selected_developer,omitempty"`
}

// FeatureList decodes the JSON features column.
func (p *Project) FeatureList() []string {
	var out []string
	if len(p.Features) == 0 {
		return out
	}
	_ = json.Unmarshal(p.Features, &out)
	return out
}

// TeamRoleOf returns the selected-team role held by userID, or "" if the user
// is not on the selected team.
func (p *Project) TeamRoleOf(userID uuid.UUID) FreelancerRole {
	if p.SelectedDesignerID != nil && *p.SelectedDesignerID == userID {
		return FreelancerDesigner
	}
	if p.SelectedDeveloperID != nil && *p.SelectedDeveloperID == userID {
		return FreelancerDeveloper
	}
	return ""
}

// ClearSelectedTeam wipes the selected-team sub-record after a double rejection.
func (p *Project) ClearSelectedTeam() {
	p.SelectedDesignerID = nil
	p.SelectedDeveloperID = nil
	p.SelectedTier = ""
	p.DesignerAccepted = false
	p.DesignerRejected = false
	p.DeveloperAccepted = false
	p.DeveloperRejected = false
	p.InvitationSentAt = nil
}
