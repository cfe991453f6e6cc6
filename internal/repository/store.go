package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/webteam-dev/webteam_be/internal/models"
)

// Ops is the mutation surface available inside a locked project update. Every
// call is part of the same transaction; an error from the update fn rolls all
// of them back.
type Ops interface {
	SaveProject(p *models.Project) error
	CreateChatRoom(r *models.ChatRoom) error
	// AttachRoomMember fills a room's designer or developer slot, used when a
	// replacement accepts into an already-created partial room.
	AttachRoomMember(roomID uuid.UUID, role models.FreelancerRole, userID uuid.UUID) error
	// ApplyRatingPenalty lowers a freelancer's rating by delta, never below floor.
	ApplyRatingPenalty(userID uuid.UUID, delta, floor float64) error
}

// Store is the document-store boundary the team service runs against. The
// locked update is the single synchronization point for the resolution check:
// the project row is re-read under a row lock so two near-simultaneous
// responses serialize instead of racing on a stale view.
type Store interface {
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	WithProjectLock(ctx context.Context, id uuid.UUID, fn func(ops Ops, p *models.Project) error) error

	AvailableFreelancers(ctx context.Context, role models.FreelancerRole) ([]models.FreelancerProfile, error)
	FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	HasPaidTransaction(ctx context.Context, projectID uuid.UUID, tier models.TeamTier) (bool, error)

	// StaleAwaitingProjects lists projects still awaiting acceptance whose
	// invitation was sent before the cutoff.
	StaleAwaitingProjects(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}
