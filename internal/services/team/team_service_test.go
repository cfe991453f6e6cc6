package team

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/webteam-dev/webteam_be/internal/matching"
	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/repository"
)

// fakeStore is an in-memory Store. WithProjectLock serializes on a mutex the
// way the row lock does, so concurrent callers see each other's committed
// flags instead of overwriting them.
type fakeStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
	profiles map[uuid.UUID]*models.FreelancerProfile // by user id
	rooms    map[uuid.UUID]*models.ChatRoom
	paid     map[string]bool // projectID|tier
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[uuid.UUID]*models.Project),
		profiles: make(map[uuid.UUID]*models.FreelancerProfile),
		rooms:    make(map[uuid.UUID]*models.ChatRoom),
		paid:     make(map[string]bool),
	}
}

func paidKey(projectID uuid.UUID, tier models.TeamTier) string {
	return projectID.String() + "|" + string(tier)
}

func (s *fakeStore) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) WithProjectLock(_ context.Context, id uuid.UUID, fn func(ops repository.Ops, p *models.Project) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return repository.ErrProjectNotFound
	}
	cp := *p
	return fn(&fakeOps{s: s}, &cp)
}

func (s *fakeStore) AvailableFreelancers(_ context.Context, role models.FreelancerRole) ([]models.FreelancerProfile, error) {
	var out []models.FreelancerProfile
	for _, p := range s.profiles {
		if p.Role == role && p.Available {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) FreelancerByUserID(_ context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrFreelancerNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) HasPaidTransaction(_ context.Context, projectID uuid.UUID, tier models.TeamTier) (bool, error) {
	return s.paid[paidKey(projectID, tier)], nil
}

func (s *fakeStore) StaleAwaitingProjects(_ context.Context, before time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, p := range s.projects {
		if p.Status == models.ProjectStatusAwaitingAcceptance &&
			p.InvitationSentAt != nil && p.InvitationSentAt.Before(before) {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeOps struct {
	s *fakeStore
}

func (o *fakeOps) SaveProject(p *models.Project) error {
	cp := *p
	o.s.projects[p.ID] = &cp
	return nil
}

func (o *fakeOps) CreateChatRoom(r *models.ChatRoom) error {
	for _, existing := range o.s.rooms {
		if existing.ProjectID == r.ProjectID {
			return fmt.Errorf("duplicate room for project %s", r.ProjectID)
		}
	}
	cp := *r
	o.s.rooms[r.ID] = &cp
	return nil
}

func (o *fakeOps) AttachRoomMember(roomID uuid.UUID, role models.FreelancerRole, userID uuid.UUID) error {
	room, ok := o.s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %s not found", roomID)
	}
	id := userID
	if role == models.FreelancerDesigner {
		room.DesignerID = &id
	} else {
		room.DeveloperID = &id
	}
	return nil
}

func (o *fakeOps) ApplyRatingPenalty(userID uuid.UUID, delta, floor float64) error {
	p, ok := o.s.profiles[userID]
	if !ok {
		return repository.ErrFreelancerNotFound
	}
	p.Rating -= delta
	if p.Rating < floor {
		p.Rating = floor
	}
	return nil
}

type notifRecord struct {
	UserID uuid.UUID
	Type   models.NotificationType
}

type recorderNotifier struct {
	mu   sync.Mutex
	sent []notifRecord
}

func (r *recorderNotifier) Notify(userID uuid.UUID, typ models.NotificationType, _, _ string, _ *uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notifRecord{UserID: userID, Type: typ})
}

func (r *recorderNotifier) countOf(typ models.NotificationType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.sent {
		if rec.Type == typ {
			n++
		}
	}
	return n
}

// fixture wires a service around one project awaiting acceptance.
type fixture struct {
	svc         *Service
	store       *fakeStore
	notifs      *recorderNotifier
	businessID  uuid.UUID
	designerID  uuid.UUID
	developerID uuid.UUID
	projectID   uuid.UUID
}

func addProfile(s *fakeStore, role models.FreelancerRole, tier models.ExperienceTier, rating float64) uuid.UUID {
	userID := uuid.New()
	s.profiles[userID] = &models.FreelancerProfile{
		ID:             uuid.New(),
		UserID:         userID,
		Role:           role,
		ExperienceTier: tier,
		Rating:         rating,
		Available:      true,
	}
	return userID
}

func newFixture(t *testing.T, status models.ProjectStatus) *fixture {
	t.Helper()

	store := newFakeStore()
	notifs := &recorderNotifier{}
	svc := NewService(store, matching.KeywordInterpreter{}, notifs)

	f := &fixture{
		svc:         svc,
		store:       store,
		notifs:      notifs,
		businessID:  uuid.New(),
		designerID:  addProfile(store, models.FreelancerDesigner, models.ExperienceMid, 5.0),
		developerID: addProfile(store, models.FreelancerDeveloper, models.ExperienceMid, 5.0),
		projectID:   uuid.New(),
	}

	sent := time.Now().Add(-time.Hour)
	p := &models.Project{
		ID:               f.projectID,
		BusinessID:       f.businessID,
		DesignComplexity: "moderate",
		PageCount:        5,
		Status:           status,
	}
	if status == models.ProjectStatusAwaitingAcceptance {
		p.SelectedDesignerID = &f.designerID
		p.SelectedDeveloperID = &f.developerID
		p.SelectedTier = models.TierFreemium
		p.InvitationSentAt = &sent
	}
	store.projects[f.projectID] = p

	return f
}

func (f *fixture) project(t *testing.T) *models.Project {
	t.Helper()
	p, ok := f.store.projects[f.projectID]
	if !ok {
		t.Fatal("project vanished from store")
	}
	return p
}

func (f *fixture) singleRoom(t *testing.T) *models.ChatRoom {
	t.Helper()
	if len(f.store.rooms) != 1 {
		t.Fatalf("got %d chat rooms, want 1", len(f.store.rooms))
	}
	for _, r := range f.store.rooms {
		return r
	}
	return nil
}

func TestChooseTeamFreemium(t *testing.T) {
	f := newFixture(t, models.ProjectStatusOffersPresented)

	err := f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.designerID, f.developerID, models.TierFreemium)
	if err != nil {
		t.Fatalf("ChooseTeam() error = %v", err)
	}

	p := f.project(t)
	if p.Status != models.ProjectStatusAwaitingAcceptance {
		t.Errorf("status = %s, want awaiting_acceptance", p.Status)
	}
	if p.SelectedDesignerID == nil || *p.SelectedDesignerID != f.designerID {
		t.Error("designer not pinned on project")
	}
	if p.InvitationSentAt == nil {
		t.Error("InvitationSentAt not stamped")
	}
	if got := f.notifs.countOf(models.NotifTeamInvitation); got != 2 {
		t.Errorf("sent %d invitation notifications, want 2", got)
	}
}

func TestChooseTeamPaidTierRequiresPayment(t *testing.T) {
	f := newFixture(t, models.ProjectStatusOffersPresented)

	err := f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.designerID, f.developerID, models.TierPremium)
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("unpaid premium: err = %v, want ErrPaymentRequired", err)
	}

	f.store.paid[paidKey(f.projectID, models.TierPremium)] = true
	err = f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.designerID, f.developerID, models.TierPremium)
	if err != nil {
		t.Fatalf("paid premium: err = %v, want nil", err)
	}
}

func TestChooseTeamGuards(t *testing.T) {
	f := newFixture(t, models.ProjectStatusOffersPresented)

	err := f.svc.ChooseTeam(context.Background(), f.projectID, uuid.New(), f.designerID, f.developerID, models.TierFreemium)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("stranger: err = %v, want ErrNotOwner", err)
	}

	err = f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.designerID, f.developerID, "gold")
	if !errors.Is(err, ErrInvalidTier) {
		t.Errorf("bad tier: err = %v, want ErrInvalidTier", err)
	}

	err = f.svc.ChooseTeam(context.Background(), uuid.New(), f.businessID, f.designerID, f.developerID, models.TierFreemium)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing project: err = %v, want ErrNotFound", err)
	}

	intake := newFixture(t, models.ProjectStatusIntake)
	err = intake.svc.ChooseTeam(context.Background(), intake.projectID, intake.businessID, intake.designerID, intake.developerID, models.TierFreemium)
	if !errors.Is(err, ErrWrongState) {
		t.Errorf("intake project: err = %v, want ErrWrongState", err)
	}
}

func TestChooseTeamVerifiesInvitees(t *testing.T) {
	f := newFixture(t, models.ProjectStatusOffersPresented)

	err := f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, uuid.New(), f.developerID, models.TierFreemium)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown designer: err = %v, want ErrNotFound", err)
	}

	// IDs swapped across roles
	err = f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.developerID, f.designerID, models.TierFreemium)
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("swapped roles: err = %v, want ErrInvalidRole", err)
	}

	f.store.profiles[f.designerID].Available = false
	err = f.svc.ChooseTeam(context.Background(), f.projectID, f.businessID, f.designerID, f.developerID, models.TierFreemium)
	if !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("unavailable designer: err = %v, want ErrNoneAvailable", err)
	}

	if p := f.project(t); p.Status != models.ProjectStatusOffersPresented || p.SelectedDesignerID != nil {
		t.Error("failed invitee validation must not touch the project")
	}
}

func TestRespondFirstAcceptWaits(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true)
	if err != nil {
		t.Fatalf("RespondToInvitation() error = %v", err)
	}
	if res.Outcome != OutcomeWaiting {
		t.Errorf("outcome = %s, want waiting", res.Outcome)
	}

	p := f.project(t)
	if !p.DesignerAccepted || p.DesignerRejected {
		t.Error("designer flags not recorded")
	}
	if p.Status != models.ProjectStatusAwaitingAcceptance {
		t.Errorf("status = %s, want awaiting_acceptance", p.Status)
	}
	if len(f.store.rooms) != 0 {
		t.Error("no room should exist while waiting")
	}
}

func TestRespondTwiceRejected(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("first response: %v", err)
	}
	_, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, false)
	if !errors.Is(err, ErrAlreadyResponded) {
		t.Errorf("second response: err = %v, want ErrAlreadyResponded", err)
	}

	// the original accept survives
	if p := f.project(t); !p.DesignerAccepted {
		t.Error("duplicate response overwrote the first one")
	}
}

func TestRespondGuards(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	_, err := f.svc.RespondToInvitation(context.Background(), f.projectID, uuid.New(), true)
	if !errors.Is(err, ErrNotParticipant) {
		t.Errorf("stranger: err = %v, want ErrNotParticipant", err)
	}

	wrong := newFixture(t, models.ProjectStatusOffersPresented)
	_, err = wrong.svc.RespondToInvitation(context.Background(), wrong.projectID, wrong.designerID, true)
	if !errors.Is(err, ErrWrongState) {
		t.Errorf("no pending invitation: err = %v, want ErrWrongState", err)
	}
}

func TestRespondBothAccept(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("designer accept: %v", err)
	}
	res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.developerID, true)
	if err != nil {
		t.Fatalf("developer accept: %v", err)
	}

	if res.Outcome != OutcomeBothAccepted {
		t.Errorf("outcome = %s, want both_accepted", res.Outcome)
	}
	if res.ChatRoomID == nil {
		t.Fatal("no chat room id in result")
	}

	p := f.project(t)
	if p.Status != models.ProjectStatusTeamAccepted {
		t.Errorf("status = %s, want team_accepted", p.Status)
	}

	room := f.singleRoom(t)
	if room.BusinessID != f.businessID {
		t.Error("room missing business member")
	}
	if room.DesignerID == nil || *room.DesignerID != f.designerID {
		t.Error("room missing designer member")
	}
	if room.DeveloperID == nil || *room.DeveloperID != f.developerID {
		t.Error("room missing developer member")
	}

	if got := f.notifs.countOf(models.NotifTeamAccepted); got != 1 {
		t.Errorf("business notified %d times, want 1", got)
	}
}

func TestRespondConcurrentAcceptsResolveOnce(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	results := make(chan *RespondResult, 2)
	var wg sync.WaitGroup
	for _, id := range []uuid.UUID{f.designerID, f.developerID} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, id, true)
			if err != nil {
				t.Errorf("RespondToInvitation(%s) error = %v", id, err)
				return
			}
			results <- res
		}(id)
	}
	wg.Wait()
	close(results)

	var resolved, waiting int
	for res := range results {
		switch res.Outcome {
		case OutcomeBothAccepted:
			resolved++
			if res.ChatRoomID == nil {
				t.Error("resolving response carries no chat room id")
			}
		case OutcomeWaiting:
			waiting++
		default:
			t.Errorf("unexpected outcome %s", res.Outcome)
		}
	}
	if resolved != 1 || waiting != 1 {
		t.Errorf("got %d resolutions and %d waits, want exactly one of each", resolved, waiting)
	}

	p := f.project(t)
	if !p.DesignerAccepted || !p.DeveloperAccepted {
		t.Error("an accepted flag was lost under concurrent responses")
	}
	if p.Status != models.ProjectStatusTeamAccepted {
		t.Errorf("status = %s, want team_accepted", p.Status)
	}
	f.singleRoom(t)
	if got := f.notifs.countOf(models.NotifTeamAccepted); got != 1 {
		t.Errorf("business notified %d times, want 1", got)
	}
}

func TestRespondBothRejectNoPenalty(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, false); err != nil {
		t.Fatalf("designer reject: %v", err)
	}
	res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.developerID, false)
	if err != nil {
		t.Fatalf("developer reject: %v", err)
	}

	if res.Outcome != OutcomeBothRejected {
		t.Errorf("outcome = %s, want both_rejected", res.Outcome)
	}

	p := f.project(t)
	if p.Status != models.ProjectStatusOffersPresented {
		t.Errorf("status = %s, want offers_presented", p.Status)
	}
	if p.SelectedDesignerID != nil || p.SelectedDeveloperID != nil {
		t.Error("selected team not cleared")
	}
	if len(f.store.rooms) != 0 {
		t.Error("no room should exist after a double rejection")
	}

	for _, id := range []uuid.UUID{f.designerID, f.developerID} {
		if r := f.store.profiles[id].Rating; r != 5.0 {
			t.Errorf("rating of %s = %v, want unchanged 5.0", id, r)
		}
	}
}

func TestRespondPartialAcceptance(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("designer accept: %v", err)
	}
	res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.developerID, false)
	if err != nil {
		t.Fatalf("developer reject: %v", err)
	}

	if res.Outcome != OutcomePartial {
		t.Errorf("outcome = %s, want partial_acceptance", res.Outcome)
	}

	room := f.singleRoom(t)
	if room.DesignerID == nil || *room.DesignerID != f.designerID {
		t.Error("accepting designer missing from room")
	}
	if room.DeveloperID != nil {
		t.Error("rejecting developer must not be in the room")
	}

	if r := f.store.profiles[f.developerID].Rating; r != 4.7 {
		t.Errorf("rejecter rating = %v, want 4.7", r)
	}
	if r := f.store.profiles[f.designerID].Rating; r != 5.0 {
		t.Errorf("accepter rating = %v, want unchanged 5.0", r)
	}

	if got := f.notifs.countOf(models.NotifPartialAcceptance); got != 1 {
		t.Errorf("business notified %d times, want 1", got)
	}
}

func TestRatingPenaltyFloor(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	f.store.profiles[f.developerID].Rating = 1.1

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("designer accept: %v", err)
	}
	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.developerID, false); err != nil {
		t.Fatalf("developer reject: %v", err)
	}

	if r := f.store.profiles[f.developerID].Rating; r != 1.0 {
		t.Errorf("rating = %v, want floored at 1.0", r)
	}
}

func TestFindReplacementExcludesTeam(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	extra := addProfile(f.store, models.FreelancerDeveloper, models.ExperienceSenior, 4.9)

	candidates, err := f.svc.FindReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper)
	if err != nil {
		t.Fatalf("FindReplacement() error = %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Profile.UserID != extra {
		t.Errorf("candidate = %s, want %s", candidates[0].Profile.UserID, extra)
	}
}

func TestFindReplacementErrors(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.FindReplacement(context.Background(), f.projectID, f.businessID, "manager"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role: err = %v, want ErrInvalidRole", err)
	}
	if _, err := f.svc.FindReplacement(context.Background(), f.projectID, uuid.New(), models.FreelancerDeveloper); !errors.Is(err, ErrNotOwner) {
		t.Errorf("stranger: err = %v, want ErrNotOwner", err)
	}
	// current developer is the only one in the directory, so the pool is empty
	if _, err := f.svc.FindReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper); !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("empty pool: err = %v, want ErrNoneAvailable", err)
	}
}

// runPartial drives the fixture to a partial acceptance where the developer
// rejected, and returns the surviving room.
func runPartial(t *testing.T, f *fixture) *models.ChatRoom {
	t.Helper()
	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("designer accept: %v", err)
	}
	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.developerID, false); err != nil {
		t.Fatalf("developer reject: %v", err)
	}
	return f.singleRoom(t)
}

func TestSelectReplacementRequiresRejectedRole(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	candidate := addProfile(f.store, models.FreelancerDeveloper, models.ExperienceSenior, 5.0)

	// nothing rejected yet
	err := f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, candidate)
	if !errors.Is(err, ErrWrongState) {
		t.Errorf("no rejection yet: err = %v, want ErrWrongState", err)
	}
}

func TestSelectReplacementSwapsRole(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	candidate := addProfile(f.store, models.FreelancerDeveloper, models.ExperienceSenior, 5.0)
	runPartial(t, f)

	err := f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, candidate)
	if err != nil {
		t.Fatalf("SelectReplacement() error = %v", err)
	}

	p := f.project(t)
	if p.SelectedDeveloperID == nil || *p.SelectedDeveloperID != candidate {
		t.Error("developer slot not swapped to candidate")
	}
	if p.DeveloperAccepted || p.DeveloperRejected {
		t.Error("developer flags not reset")
	}
	if !p.DesignerAccepted {
		t.Error("surviving designer's acceptance was lost")
	}
	if p.Status != models.ProjectStatusAwaitingAcceptance {
		t.Errorf("status = %s, want awaiting_acceptance", p.Status)
	}
	if got := f.notifs.countOf(models.NotifReplacementInvitation); got != 1 {
		t.Errorf("candidate notified %d times, want 1", got)
	}
}

func TestSelectReplacementRejectsBadCandidates(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	runPartial(t, f)

	// unknown user
	err := f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, uuid.New())
	if !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("unknown candidate: err = %v, want ErrNoneAvailable", err)
	}

	// wrong role
	designer := addProfile(f.store, models.FreelancerDesigner, models.ExperienceMid, 5.0)
	err = f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, designer)
	if !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("wrong-role candidate: err = %v, want ErrNoneAvailable", err)
	}

	// unavailable
	busy := addProfile(f.store, models.FreelancerDeveloper, models.ExperienceMid, 5.0)
	f.store.profiles[busy].Available = false
	err = f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, busy)
	if !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("unavailable candidate: err = %v, want ErrNoneAvailable", err)
	}
}

func TestReplacementAcceptReusesRoom(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)
	candidate := addProfile(f.store, models.FreelancerDeveloper, models.ExperienceSenior, 5.0)
	partialRoom := runPartial(t, f)

	if err := f.svc.SelectReplacement(context.Background(), f.projectID, f.businessID, models.FreelancerDeveloper, candidate); err != nil {
		t.Fatalf("SelectReplacement() error = %v", err)
	}

	res, err := f.svc.RespondToInvitation(context.Background(), f.projectID, candidate, true)
	if err != nil {
		t.Fatalf("replacement accept: %v", err)
	}
	if res.Outcome != OutcomeBothAccepted {
		t.Errorf("outcome = %s, want both_accepted", res.Outcome)
	}

	room := f.singleRoom(t)
	if room.ID != partialRoom.ID {
		t.Errorf("a second room was created: %s vs %s", room.ID, partialRoom.ID)
	}
	if room.DeveloperID == nil || *room.DeveloperID != candidate {
		t.Error("replacement not attached to the existing room")
	}
}

func TestExpireInvitationNoResponses(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	err := f.svc.ExpireInvitation(context.Background(), f.projectID, time.Now())
	if err != nil {
		t.Fatalf("ExpireInvitation() error = %v", err)
	}

	p := f.project(t)
	if p.Status != models.ProjectStatusOffersPresented {
		t.Errorf("status = %s, want offers_presented", p.Status)
	}

	// silence never costs reputation
	for _, id := range []uuid.UUID{f.designerID, f.developerID} {
		if r := f.store.profiles[id].Rating; r != 5.0 {
			t.Errorf("rating of %s = %v, want unchanged 5.0", id, r)
		}
	}

	if got := f.notifs.countOf(models.NotifInvitationExpired); got != 2 {
		t.Errorf("sent %d expiry notifications, want 2", got)
	}
	if got := f.notifs.countOf(models.NotifTeamRejected); got != 1 {
		t.Errorf("business notified %d times, want 1", got)
	}
}

func TestExpireInvitationPartial(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	if _, err := f.svc.RespondToInvitation(context.Background(), f.projectID, f.designerID, true); err != nil {
		t.Fatalf("designer accept: %v", err)
	}

	if err := f.svc.ExpireInvitation(context.Background(), f.projectID, time.Now()); err != nil {
		t.Fatalf("ExpireInvitation() error = %v", err)
	}

	p := f.project(t)
	if p.Status != models.ProjectStatusTeamAccepted {
		t.Errorf("status = %s, want team_accepted (partial room)", p.Status)
	}

	room := f.singleRoom(t)
	if room.DeveloperID != nil {
		t.Error("timed-out developer must not be in the room")
	}

	if r := f.store.profiles[f.developerID].Rating; r != 5.0 {
		t.Errorf("timed-out developer rating = %v, want unchanged 5.0", r)
	}
}

func TestExpireInvitationSkipsFreshAndResolved(t *testing.T) {
	f := newFixture(t, models.ProjectStatusAwaitingAcceptance)

	// cutoff before the invitation was sent: nothing happens
	cutoff := time.Now().Add(-2 * time.Hour)
	if err := f.svc.ExpireInvitation(context.Background(), f.projectID, cutoff); err != nil {
		t.Fatalf("ExpireInvitation() error = %v", err)
	}
	if p := f.project(t); p.Status != models.ProjectStatusAwaitingAcceptance {
		t.Errorf("fresh invitation expired: status = %s", p.Status)
	}

	resolved := newFixture(t, models.ProjectStatusTeamAccepted)
	if err := resolved.svc.ExpireInvitation(context.Background(), resolved.projectID, time.Now()); err != nil {
		t.Fatalf("ExpireInvitation() on resolved project: %v", err)
	}
	if p := resolved.project(t); p.Status != models.ProjectStatusTeamAccepted {
		t.Errorf("resolved project touched: status = %s", p.Status)
	}
}

func TestGenerateOffers(t *testing.T) {
	f := newFixture(t, models.ProjectStatusOffersPresented)

	offers, err := f.svc.GenerateOffers(context.Background(), f.projectID, f.businessID)
	if err != nil {
		t.Fatalf("GenerateOffers() error = %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1 (single pair)", len(offers))
	}
	if offers[0].Tier != models.TierPremium {
		t.Errorf("tier = %s, want premium", offers[0].Tier)
	}
}

func TestGenerateOffersGuards(t *testing.T) {
	f := newFixture(t, models.ProjectStatusIntake)

	if _, err := f.svc.GenerateOffers(context.Background(), f.projectID, f.businessID); !errors.Is(err, ErrWrongState) {
		t.Errorf("intake project: err = %v, want ErrWrongState", err)
	}
	if _, err := f.svc.GenerateOffers(context.Background(), f.projectID, uuid.New()); !errors.Is(err, ErrNotOwner) {
		t.Errorf("stranger: err = %v, want ErrNotOwner", err)
	}

	empty := newFixture(t, models.ProjectStatusOffersPresented)
	for id := range empty.store.profiles {
		empty.store.profiles[id].Available = false
	}
	if _, err := empty.svc.GenerateOffers(context.Background(), empty.projectID, empty.businessID); !errors.Is(err, ErrNoneAvailable) {
		t.Errorf("no available freelancers: err = %v, want ErrNoneAvailable", err)
	}
}
