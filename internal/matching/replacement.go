package matching

import (
	"sort"

	"github.com/webteam-dev/webteam_be/internal/models"
)

const maxReplacementCandidates = 5

// Candidate is a single freelancer ranked for a one-role replacement search.
type Candidate struct {
	Profile models.FreelancerProfile `json:"profile"`
	Score   float64                  `json:"score"`
}

// RankReplacements scores each candidate individually (not as a pair) against
// the project requirements and returns the top five for manual selection.
// No tier is assigned. The pool should already be availability-filtered; a
// wrong-role entry is skipped rather than mis-scored.
func RankReplacements(pool []models.FreelancerProfile, req Requirements, role models.FreelancerRole) []Candidate {
	candidates := make([]Candidate, 0, len(pool))
	for i := range pool {
		if pool[i].Role != role {
			continue
		}
		candidates = append(candidates, Candidate{
			Profile: pool[i],
			Score:   Score(&pool[i], req, role),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Profile.UserID.String() < candidates[j].Profile.UserID.String()
	})

	if len(candidates) > maxReplacementCandidates {
		candidates = candidates[:maxReplacementCandidates]
	}
	return candidates
}
