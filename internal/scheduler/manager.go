package scheduler

import (
	"log"

	"github.com/go-co-op/gocron/v2"

	"github.com/webteam-dev/webteam_be/internal/repository"
	"github.com/webteam-dev/webteam_be/internal/services/team"
)

// Manager owns the background job scheduler.
type Manager struct {
	scheduler gocron.Scheduler
	store     repository.Store
	teams     *team.Service
}

func NewManager(store repository.Store, teams *team.Service) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	return &Manager{scheduler: s, store: store, teams: teams}
}

// Start registers all jobs and starts the scheduler.
func Start(store repository.Store, teams *team.Service) *Manager {
	m := NewManager(store, teams)
	m.RegisterJobs()
	m.scheduler.Start()
	log.Println("Scheduler started")
	return m
}

func (m *Manager) RegisterJobs() {
	m.registerJob(NewInvitationExpiryJob(m.store, m.teams))
}

type job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

func (m *Manager) registerJob(j job) {
	_, err := m.scheduler.NewJob(
		j.GetSchedule(),
		gocron.NewTask(j.Execute),
		gocron.WithName(j.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to register job %s: %v", j.GetName(), err)
	}
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		log.Printf("Failed to shutdown scheduler: %v", err)
	}
}
