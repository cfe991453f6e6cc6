package notifier

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/realtime"
)

// Service persists notifications and fans them out over the hub and redis.
// Delivery is fire-and-forget: a full pool or a down redis only loses the
// push, never the stored notification.
type Service struct {
	DB   *gorm.DB
	Hub  *realtime.Hub
	RDB  *redis.Client
	pool *ants.Pool
}

func NewService(db *gorm.DB, hub *realtime.Hub, rdb *redis.Client) *Service {
	pool, err := ants.NewPool(16, ants.WithNonblocking(true))
	if err != nil {
		log.Fatal("Failed to create notifier pool:", err)
	}
	return &Service{DB: db, Hub: hub, RDB: rdb, pool: pool}
}

// Notify stores the notification row and dispatches the push asynchronously.
func (s *Service) Notify(userID uuid.UUID, typ models.NotificationType, title, body string, projectID *uuid.UUID) {
	n := models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		ProjectID: projectID,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		log.Println("Error creating notification:", err)
		return
	}

	if err := s.pool.Submit(func() { s.push(&n) }); err != nil {
		// pool saturated; the row is saved, the client catches up on next poll
		log.Println("Notifier pool busy, push skipped:", err)
	}
}

func (s *Service) push(n *models.Notification) {
	payload := map[string]interface{}{
		"type":         "notification",
		"notification": n,
	}

	s.Hub.SendToUser(n.UserID, payload)

	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.RDB.Publish(context.Background(), "notifications:"+n.UserID.String(), b).Err(); err != nil {
		log.Println("Error publishing notification:", err)
	}
}

// Release tears down the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}
