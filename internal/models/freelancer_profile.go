package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type FreelancerRole string

const (
	FreelancerDesigner  FreelancerRole = "designer"
	FreelancerDeveloper FreelancerRole = "developer"
)

type ExperienceTier string

const (
	ExperienceJunior ExperienceTier = "junior"
	ExperienceMid    ExperienceTier = "mid"
	ExperienceSenior ExperienceTier = "senior"
)

// FreelancerProfile is the directory record consulted by the matcher.
// Rating and CompletedProjects are never writable through profile edits;
// rating moves only through the reputation penalty in the team service.
type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Role           FreelancerRole `gorm:"type:varchar(20);index" json:"role"`
	ExperienceTier ExperienceTier `gorm:"type:varchar(20)" json:"experience_tier"`
	Skills         datatypes.JSON `json:"skills"` // ["React", "Stripe", ...]

	HourlyRate   int64  `json:"hourly_rate"`
	Bio          string `gorm:"type:text" json:"bio"`
	PortfolioURL string `gorm:"type:text" json:"portfolio_url"`

	Rating            float64 `gorm:"default:5.0" json:"rating"`
	CompletedProjects int     `gorm:"default:0" json:"completed_projects"`
	Available         bool    `gorm:"default:true;index" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// SkillList decodes the JSON skills column. A broken column reads as no skills.
func (p *FreelancerProfile) SkillList() []string {
	var out []string
	if len(p.Skills) == 0 {
		return out
	}
	_ = json.Unmarshal(p.Skills, &out)
	return out
}
