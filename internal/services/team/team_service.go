package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/webteam-dev/webteam_be/internal/matching"
	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/repository"
)

const (
	ratingPenalty = 0.3
	ratingFloor   = 1.0
)

// Notifier is the fire-and-forget notification sink. Delivery happens after
// the state transition commits; a lost notification never rolls back state.
type Notifier interface {
	Notify(userID uuid.UUID, typ models.NotificationType, title, body string, projectID *uuid.UUID)
}

// Service owns the invitation lifecycle: offer generation, team choice,
// accept/reject resolution and single-role replacement.
type Service struct {
	Store    repository.Store
	Interp   matching.Interpreter
	Notifier Notifier
}

func NewService(store repository.Store, interp matching.Interpreter, notifier Notifier) *Service {
	return &Service{Store: store, Interp: interp, Notifier: notifier}
}

// Outcome of a single invitation response.
type Outcome string

const (
	OutcomeWaiting      Outcome = "waiting"
	OutcomeBothAccepted Outcome = "both_accepted"
	OutcomeBothRejected Outcome = "both_rejected"
	OutcomePartial      Outcome = "partial_acceptance"
)

// RespondResult reports how a response resolved. ChatRoomID is set when the
// resolution created or reused a room.
type RespondResult struct {
	Outcome    Outcome    `json:"status"`
	ChatRoomID *uuid.UUID `json:"chat_room_id,omitempty"`
}

// GenerateOffers rebuilds the tiered offers for a project from the current
// directory state. Offers are never persisted.
func (s *Service) GenerateOffers(ctx context.Context, projectID, callerID uuid.UUID) ([]matching.Offer, error) {
	p, err := s.getOwnedProject(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.ProjectStatusIntake {
		return nil, ErrWrongState
	}

	designers, err := s.Store.AvailableFreelancers(ctx, models.FreelancerDesigner)
	if err != nil {
		return nil, err
	}
	developers, err := s.Store.AvailableFreelancers(ctx, models.FreelancerDeveloper)
	if err != nil {
		return nil, err
	}

	offers, err := matching.BuildOffers(designers, developers, s.Interp.Interpret(p))
	if errors.Is(err, matching.ErrNoFreelancersAvailable) {
		return nil, ErrNoneAvailable
	}
	return offers, err
}

// ChooseTeam pins one offer's pair on the project and sends both invitations.
// Paid tiers must have a confirmed unlock-fee payment before the state write.
func (s *Service) ChooseTeam(ctx context.Context, projectID, callerID, designerID, developerID uuid.UUID, tier models.TeamTier) error {
	if !models.ValidTier(string(tier)) {
		return ErrInvalidTier
	}
	if err := s.verifyInvitee(ctx, designerID, models.FreelancerDesigner); err != nil {
		return err
	}
	if err := s.verifyInvitee(ctx, developerID, models.FreelancerDeveloper); err != nil {
		return err
	}

	if tier != models.TierFreemium {
		paid, err := s.Store.HasPaidTransaction(ctx, projectID, tier)
		if err != nil {
			return err
		}
		if !paid {
			return ErrPaymentRequired
		}
	}

	err := s.Store.WithProjectLock(ctx, projectID, func(ops repository.Ops, p *models.Project) error {
		if p.BusinessID != callerID {
			return ErrNotOwner
		}
		if p.Status != models.ProjectStatusOffersPresented {
			return ErrWrongState
		}

		now := time.Now()
		p.SelectedDesignerID = &designerID
		p.SelectedDeveloperID = &developerID
		p.SelectedTier = tier
		p.DesignerAccepted = false
		p.DesignerRejected = false
		p.DeveloperAccepted = false
		p.DeveloperRejected = false
		p.InvitationSentAt = &now
		p.Status = models.ProjectStatusAwaitingAcceptance
		return ops.SaveProject(p)
	})
	if err != nil {
		return s.mapStoreErr(err)
	}

	for _, fid := range []uuid.UUID{designerID, developerID} {
		s.Notifier.Notify(fid, models.NotifTeamInvitation,
			"New project invitation",
			"You have been selected for a web project. Please accept or decline within 48 hours.",
			&projectID)
	}
	return nil
}

// verifyInvitee resolves a pinned freelancer ID before the state write so a
// bad reference can never strand the project in awaiting_acceptance.
func (s *Service) verifyInvitee(ctx context.Context, userID uuid.UUID, role models.FreelancerRole) error {
	prof, err := s.Store.FreelancerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrFreelancerNotFound) {
			return ErrNotFound
		}
		return err
	}
	if prof.Role != role {
		return ErrInvalidRole
	}
	if !prof.Available {
		return ErrNoneAvailable
	}
	return nil
}

// RespondToInvitation records one freelancer's accept/reject and runs the
// resolution check once both roles have responded. The flag write and the
// derived transition are a single atomic update against the project row.
func (s *Service) RespondToInvitation(ctx context.Context, projectID, responderID uuid.UUID, accept bool) (*RespondResult, error) {
	var result RespondResult
	var after []func()

	err := s.Store.WithProjectLock(ctx, projectID, func(ops repository.Ops, p *models.Project) error {
		if p.Status != models.ProjectStatusAwaitingAcceptance {
			return ErrWrongState
		}

		role := p.TeamRoleOf(responderID)
		if role == "" {
			return ErrNotParticipant
		}

		switch role {
		case models.FreelancerDesigner:
			if p.DesignerAccepted || p.DesignerRejected {
				return ErrAlreadyResponded
			}
			p.DesignerAccepted = accept
			p.DesignerRejected = !accept
		case models.FreelancerDeveloper:
			if p.DeveloperAccepted || p.DeveloperRejected {
				return ErrAlreadyResponded
			}
			p.DeveloperAccepted = accept
			p.DeveloperRejected = !accept
		}

		out, err := s.resolveLocked(ops, p, true, &after)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	for _, fn := range after {
		fn()
	}
	return &result, nil
}

// resolveLocked applies the resolution rules to a locked project whose flags
// are already updated. penalize controls the reputation deduction and is false
// only for timeout-driven rejections. Notifications are queued, not sent, so
// they fire after the transaction commits.
func (s *Service) resolveLocked(ops repository.Ops, p *models.Project, penalize bool, after *[]func()) (RespondResult, error) {
	designerDone := p.DesignerAccepted || p.DesignerRejected
	developerDone := p.DeveloperAccepted || p.DeveloperRejected

	if !designerDone || !developerDone {
		if err := ops.SaveProject(p); err != nil {
			return RespondResult{}, err
		}
		return RespondResult{Outcome: OutcomeWaiting}, nil
	}

	projectID := p.ID
	businessID := p.BusinessID

	switch {
	case p.DesignerAccepted && p.DeveloperAccepted:
		roomID, err := s.confirmTeamLocked(ops, p, p.SelectedDesignerID, p.SelectedDeveloperID)
		if err != nil {
			return RespondResult{}, err
		}
		*after = append(*after, func() {
			s.Notifier.Notify(businessID, models.NotifTeamAccepted,
				"Your team is confirmed",
				"Both freelancers accepted. A project chat room is ready.",
				&projectID)
		})
		return RespondResult{Outcome: OutcomeBothAccepted, ChatRoomID: roomID}, nil

	case p.DesignerRejected && p.DeveloperRejected:
		// Symmetric outcome: no penalty for either side.
		p.ClearSelectedTeam()
		p.Status = models.ProjectStatusOffersPresented
		if err := ops.SaveProject(p); err != nil {
			return RespondResult{}, err
		}
		*after = append(*after, func() {
			s.Notifier.Notify(businessID, models.NotifTeamRejected,
				"Team declined",
				"Both freelancers declined the invitation. Pick a team from a new offer round.",
				&projectID)
		})
		return RespondResult{Outcome: OutcomeBothRejected}, nil

	default:
		// Exactly one accepted, one rejected.
		accepterID, rejecterID := p.SelectedDesignerID, p.SelectedDeveloperID
		accepterRole := models.FreelancerDesigner
		if p.DeveloperAccepted {
			accepterID, rejecterID = p.SelectedDeveloperID, p.SelectedDesignerID
			accepterRole = models.FreelancerDeveloper
		}

		var roomDesigner, roomDeveloper *uuid.UUID
		if accepterRole == models.FreelancerDesigner {
			roomDesigner = accepterID
		} else {
			roomDeveloper = accepterID
		}

		roomID, err := s.confirmTeamLocked(ops, p, roomDesigner, roomDeveloper)
		if err != nil {
			return RespondResult{}, err
		}

		if penalize && rejecterID != nil {
			if err := ops.ApplyRatingPenalty(*rejecterID, ratingPenalty, ratingFloor); err != nil {
				return RespondResult{}, err
			}
		}

		*after = append(*after, func() {
			s.Notifier.Notify(businessID, models.NotifPartialAcceptance,
				"Partial acceptance",
				"One freelancer accepted and the other declined. You can search for a replacement for the open role.",
				&projectID)
		})
		return RespondResult{Outcome: OutcomePartial, ChatRoomID: roomID}, nil
	}
}

// confirmTeamLocked moves the project to team_accepted and makes sure exactly
// one chat room exists for it: a room left over from an earlier partial
// acceptance is reused and its empty slot filled, never duplicated.
func (s *Service) confirmTeamLocked(ops repository.Ops, p *models.Project, designerID, developerID *uuid.UUID) (*uuid.UUID, error) {
	if p.ChatRoomID != nil {
		roomID := *p.ChatRoomID
		if designerID != nil && p.DesignerAccepted {
			if err := ops.AttachRoomMember(roomID, models.FreelancerDesigner, *designerID); err != nil {
				return nil, err
			}
		}
		if developerID != nil && p.DeveloperAccepted {
			if err := ops.AttachRoomMember(roomID, models.FreelancerDeveloper, *developerID); err != nil {
				return nil, err
			}
		}
		p.Status = models.ProjectStatusTeamAccepted
		if err := ops.SaveProject(p); err != nil {
			return nil, err
		}
		return p.ChatRoomID, nil
	}

	room := models.ChatRoom{
		ID:            uuid.New(),
		ProjectID:     p.ID,
		BusinessID:    p.BusinessID,
		DesignerID:    designerID,
		DeveloperID:   developerID,
		LastMessageAt: time.Now(),
	}
	if err := ops.CreateChatRoom(&room); err != nil {
		return nil, err
	}

	p.ChatRoomID = &room.ID
	p.Status = models.ProjectStatusTeamAccepted
	if err := ops.SaveProject(p); err != nil {
		return nil, err
	}
	return p.ChatRoomID, nil
}

// FindReplacement ranks available substitutes for a single rejected role,
// excluding anyone already on the selected team.
func (s *Service) FindReplacement(ctx context.Context, projectID, callerID uuid.UUID, role models.FreelancerRole) ([]matching.Candidate, error) {
	if role != models.FreelancerDesigner && role != models.FreelancerDeveloper {
		return nil, ErrInvalidRole
	}

	p, err := s.getOwnedProject(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}

	pool, err := s.Store.AvailableFreelancers(ctx, role)
	if err != nil {
		return nil, err
	}

	filtered := pool[:0]
	for _, f := range pool {
		if p.TeamRoleOf(f.UserID) != "" {
			continue
		}
		filtered = append(filtered, f)
	}

	candidates := matching.RankReplacements(filtered, s.Interp.Interpret(p), role)
	if len(candidates) == 0 {
		return nil, ErrNoneAvailable
	}
	return candidates, nil
}

// SelectReplacement swaps the rejected role for a chosen candidate and
// re-enters awaiting_acceptance for that role only; the surviving member's
// accepted flag is preserved.
func (s *Service) SelectReplacement(ctx context.Context, projectID, callerID uuid.UUID, role models.FreelancerRole, candidateID uuid.UUID) error {
	if role != models.FreelancerDesigner && role != models.FreelancerDeveloper {
		return ErrInvalidRole
	}

	candidate, err := s.Store.FreelancerByUserID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repository.ErrFreelancerNotFound) {
			return ErrNoneAvailable
		}
		return err
	}
	if candidate.Role != role || !candidate.Available {
		return ErrNoneAvailable
	}

	err = s.Store.WithProjectLock(ctx, projectID, func(ops repository.Ops, p *models.Project) error {
		if p.BusinessID != callerID {
			return ErrNotOwner
		}

		now := time.Now()
		switch role {
		case models.FreelancerDesigner:
			if !p.DesignerRejected {
				return ErrWrongState
			}
			p.SelectedDesignerID = &candidateID
			p.DesignerAccepted = false
			p.DesignerRejected = false
		case models.FreelancerDeveloper:
			if !p.DeveloperRejected {
				return ErrWrongState
			}
			p.SelectedDeveloperID = &candidateID
			p.DeveloperAccepted = false
			p.DeveloperRejected = false
		}

		p.Status = models.ProjectStatusAwaitingAcceptance
		p.InvitationSentAt = &now
		return ops.SaveProject(p)
	})
	if err != nil {
		return s.mapStoreErr(err)
	}

	s.Notifier.Notify(candidateID, models.NotifReplacementInvitation,
		"Replacement invitation",
		fmt.Sprintf("You have been invited to join a project as the %s. Please accept or decline within 48 hours.", role),
		&projectID)
	return nil
}

// ExpireInvitation treats silence past the acceptance window as a rejection
// for every unresponded role and runs the normal resolution. Timed-out roles
// carry no reputation penalty.
func (s *Service) ExpireInvitation(ctx context.Context, projectID uuid.UUID, cutoff time.Time) error {
	var after []func()
	var expired []uuid.UUID

	err := s.Store.WithProjectLock(ctx, projectID, func(ops repository.Ops, p *models.Project) error {
		if p.Status != models.ProjectStatusAwaitingAcceptance {
			return nil // resolved in the meantime; nothing to do
		}
		if p.InvitationSentAt == nil || p.InvitationSentAt.After(cutoff) {
			return nil
		}

		if !p.DesignerAccepted && !p.DesignerRejected {
			p.DesignerRejected = true
			if p.SelectedDesignerID != nil {
				expired = append(expired, *p.SelectedDesignerID)
			}
		}
		if !p.DeveloperAccepted && !p.DeveloperRejected {
			p.DeveloperRejected = true
			if p.SelectedDeveloperID != nil {
				expired = append(expired, *p.SelectedDeveloperID)
			}
		}

		_, err := s.resolveLocked(ops, p, false, &after)
		return err
	})
	if err != nil {
		return s.mapStoreErr(err)
	}

	for _, fid := range expired {
		s.Notifier.Notify(fid, models.NotifInvitationExpired,
			"Invitation expired",
			"A project invitation expired without a response and was withdrawn.",
			&projectID)
	}
	for _, fn := range after {
		fn()
	}
	return nil
}

func (s *Service) getOwnedProject(ctx context.Context, projectID, callerID uuid.UUID) (*models.Project, error) {
	p, err := s.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	if p.BusinessID != callerID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func (s *Service) mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrProjectNotFound) {
		return ErrNotFound
	}
	return err
}
