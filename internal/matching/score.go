package matching

import (
	"strings"

	"github.com/webteam-dev/webteam_be/internal/models"
)

const (
	experienceWeight  = 15
	ratingWeight      = 10
	trackRecordPoints = 2
	trackRecordCap    = 20
	designMatchBonus  = 15
	featureSkillBonus = 10
)

// Score computes the fitness of one freelancer for one role on a project.
// Pure and deterministic; a higher score is strictly better.
func Score(p *models.FreelancerProfile, req Requirements, role models.FreelancerRole) float64 {
	s := float64(experiencePoints(p.ExperienceTier)*experienceWeight)
	s += p.Rating * ratingWeight
	s += trackRecord(p.CompletedProjects)

	switch role {
	case models.FreelancerDesigner:
		if complexityAccepts(req.DesignComplexity, p.ExperienceTier) {
			s += designMatchBonus
		}
	case models.FreelancerDeveloper:
		for _, tag := range req.Tags {
			if hasSkillFor(p, tag) {
				s += featureSkillBonus
			}
		}
	}
	return s
}

// PairScore is the sum of the two individual scores; there is no cross term.
func PairScore(designer, developer *models.FreelancerProfile, req Requirements) float64 {
	return Score(designer, req, models.FreelancerDesigner) +
		Score(developer, req, models.FreelancerDeveloper)
}

func experiencePoints(t models.ExperienceTier) int {
	switch t {
	case models.ExperienceJunior:
		return 1
	case models.ExperienceMid:
		return 2
	case models.ExperienceSenior:
		return 3
	}
	return 0
}

func trackRecord(completed int) float64 {
	pts := float64(completed * trackRecordPoints)
	if pts > trackRecordCap {
		return trackRecordCap
	}
	return pts
}

// complexityAccepts is the compatibility policy between a project's design
// complexity and a designer's experience tier.
func complexityAccepts(complexity string, tier models.ExperienceTier) bool {
	switch complexity {
	case "advanced":
		return tier == models.ExperienceSenior
	case "moderate":
		return tier == models.ExperienceMid || tier == models.ExperienceSenior
	default: // simple
		return tier == models.ExperienceJunior || tier == models.ExperienceMid
	}
}

func hasSkillFor(p *models.FreelancerProfile, tag FeatureTag) bool {
	for _, skill := range p.SkillList() {
		low := strings.ToLower(skill)
		switch tag {
		case FeatureInteractive:
			if strings.Contains(low, "react") {
				return true
			}
		case FeaturePayments:
			if strings.Contains(low, "stripe") || strings.Contains(low, "payment") {
				return true
			}
		case FeatureAuth:
			if strings.Contains(low, "auth") {
				return true
			}
		}
	}
	return false
}
