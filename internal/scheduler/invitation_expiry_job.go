package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/webteam-dev/webteam_be/internal/repository"
	"github.com/webteam-dev/webteam_be/internal/services/team"
)

// acceptWindow is the advertised "accept within 48 hours" window. Past it,
// silence counts as a rejection without a reputation penalty.
const acceptWindow = 48 * time.Hour

// InvitationExpiryJob sweeps projects stuck in awaiting_acceptance and runs
// the timeout resolution on each.
type InvitationExpiryJob struct {
	store repository.Store
	teams *team.Service
}

func NewInvitationExpiryJob(store repository.Store, teams *team.Service) *InvitationExpiryJob {
	return &InvitationExpiryJob{store: store, teams: teams}
}

func (j *InvitationExpiryJob) GetName() string {
	return "invitation-expiry"
}

func (j *InvitationExpiryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(1 * time.Hour)
}

func (j *InvitationExpiryJob) Execute() {
	ctx := context.Background()
	cutoff := time.Now().Add(-acceptWindow)

	ids, err := j.store.StaleAwaitingProjects(ctx, cutoff)
	if err != nil {
		log.Printf("[InvitationExpiry] Error listing stale invitations: %v", err)
		return
	}

	for _, id := range ids {
		log.Printf("[InvitationExpiry] Expiring invitation for project %s", id)
		if err := j.teams.ExpireInvitation(ctx, id, cutoff); err != nil {
			log.Printf("[InvitationExpiry] Error expiring project %s: %v", id, err)
		}
	}
}
