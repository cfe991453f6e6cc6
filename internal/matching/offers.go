package matching

import (
	"errors"
	"math"
	"sort"

	"github.com/webteam-dev/webteam_be/internal/models"
)

// ErrNoFreelancersAvailable is returned when either role pool is empty.
var ErrNoFreelancersAvailable = errors.New("no freelancers available")

// Offer is an ephemeral candidate pairing; it is regenerated on demand and
// never persisted.
type Offer struct {
	Tier           models.TeamTier          `json:"tier"`
	Designer       models.FreelancerProfile `json:"designer"`
	Developer      models.FreelancerProfile `json:"developer"`
	Score          float64                  `json:"score"`
	UnlockFee      int64                    `json:"unlock_fee"`
	EstimatedHours int                      `json:"estimated_hours"`
	EstimatedCost  int64                    `json:"estimated_cost"`
}

var tierByRank = []models.TeamTier{models.TierPremium, models.TierPro, models.TierFreemium}

// UnlockFee is the fixed platform fee per tier, independent of project size.
func UnlockFee(tier models.TeamTier) int64 {
	switch tier {
	case models.TierPremium:
		return 250
	case models.TierPro:
		return 100
	}
	return 0
}

// EstimateHours is the coarse work-hours model: pages*8 + features*12 plus a
// complexity bump.
func EstimateHours(req Requirements) int {
	bonus := 10
	switch req.DesignComplexity {
	case "advanced":
		bonus = 40
	case "moderate":
		bonus = 20
	}
	return req.PageCount*8 + len(req.Features)*12 + bonus
}

// EstimateCost prices the pair's hours at their average rate, capped at the
// parsed budget ceiling. Freemium is always 0.
func EstimateCost(tier models.TeamTier, hours int, designerRate, developerRate, ceiling int64) int64 {
	if tier == models.TierFreemium {
		return 0
	}
	cost := int64(math.Round(float64(hours) * float64(designerRate+developerRate) / 2))
	if cost > ceiling {
		return ceiling
	}
	return cost
}

// BuildOffers scores the full designer×developer cartesian product and returns
// the top pairs as tiered offers, at most three. Tier is positional: best pair
// is premium, then pro, then freemium. Ties break on designer then developer
// user ID so the ranking never depends on directory query order.
func BuildOffers(designers, developers []models.FreelancerProfile, req Requirements) ([]Offer, error) {
	if len(designers) == 0 || len(developers) == 0 {
		return nil, ErrNoFreelancersAvailable
	}

	type pair struct {
		d, v  *models.FreelancerProfile
		score float64
	}

	pairs := make([]pair, 0, len(designers)*len(developers))
	for i := range designers {
		for j := range developers {
			pairs = append(pairs, pair{
				d:     &designers[i],
				v:     &developers[j],
				score: PairScore(&designers[i], &developers[j], req),
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].d.UserID != pairs[j].d.UserID {
			return pairs[i].d.UserID.String() < pairs[j].d.UserID.String()
		}
		return pairs[i].v.UserID.String() < pairs[j].v.UserID.String()
	})

	hours := EstimateHours(req)

	n := len(pairs)
	if n > len(tierByRank) {
		n = len(tierByRank)
	}

	offers := make([]Offer, 0, n)
	for rank := 0; rank < n; rank++ {
		p := pairs[rank]
		tier := tierByRank[rank]
		offers = append(offers, Offer{
			Tier:           tier,
			Designer:       *p.d,
			Developer:      *p.v,
			Score:          p.score,
			UnlockFee:      UnlockFee(tier),
			EstimatedHours: hours,
			EstimatedCost:  EstimateCost(tier, hours, p.d.HourlyRate, p.v.HourlyRate, req.BudgetCeiling),
		})
	}
	return offers, nil
}
