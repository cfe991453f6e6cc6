package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/webteam-dev/webteam_be/internal/models"
)

// ErrProjectNotFound is returned when the referenced project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ErrFreelancerNotFound is returned when the referenced freelancer has no profile.
var ErrFreelancerNotFound = errors.New("freelancer not found")

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// WithProjectLock re-reads the project with FOR UPDATE inside a transaction and
// hands it to fn. The flag write and any derived status/chat-room transition
// commit as one unit, so the resolution branch runs at most once per project.
func (s *GormStore) WithProjectLock(ctx context.Context, id uuid.UUID, fn func(ops Ops, p *models.Project) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		return fn(&gormOps{tx: tx}, &p)
	})
}

func (s *GormStore) AvailableFreelancers(ctx context.Context, role models.FreelancerRole) ([]models.FreelancerProfile, error) {
	var out []models.FreelancerProfile
	err := s.DB.WithContext(ctx).
		Where("role = ? AND available = true", role).
		Order("user_id ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := s.DB.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFreelancerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) StaleAwaitingProjects(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&models.Project{}).
		Where("status = ? AND invitation_sent_at IS NOT NULL AND invitation_sent_at <= ?",
			models.ProjectStatusAwaitingAcceptance, before).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) HasPaidTransaction(ctx context.Context, projectID uuid.UUID, tier models.TeamTier) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("project_id = ? AND tier = ? AND status = ?", projectID, tier, models.TransactionStatusPaid).
		Count(&count).Error
	return count > 0, err
}

type gormOps struct {
	tx *gorm.DB
}

func (o *gormOps) SaveProject(p *models.Project) error {
	// Save skips zero-values on struct updates; select everything so cleared
	// team flags and nil pointers actually persist.
	return o.tx.Model(p).Select("*").Updates(p).Error
}

func (o *gormOps) CreateChatRoom(r *models.ChatRoom) error {
	return o.tx.Create(r).Error
}

func (o *gormOps) AttachRoomMember(roomID uuid.UUID, role models.FreelancerRole, userID uuid.UUID) error {
	col := "designer_id"
	if role == models.FreelancerDeveloper {
		col = "developer_id"
	}
	return o.tx.Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Update(col, userID).Error
}

func (o *gormOps) ApplyRatingPenalty(userID uuid.UUID, delta, floor float64) error {
	res := o.tx.Model(&models.FreelancerProfile{}).
		Where("user_id = ?", userID).
		Update("rating", gorm.Expr("GREATEST(?, rating - ?)", floor, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("freelancer profile not found")
	}
	return nil
}
