package handlers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/realtime"
)

type ChatHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
	RDB *redis.Client
}

func NewChatHandler(db *gorm.DB, hub *realtime.Hub, rdb *redis.Client) *ChatHandler {
	return &ChatHandler{DB: db, Hub: hub, RDB: rdb}
}

type UserMini struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomOut struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UpdatedAt   time.Time `json:"updated_at"`
	UnreadCount int64     `json:"unread_count"`

	Business    *UserMini        `json:"business,omitempty"`
	Designer    *UserMini        `json:"designer,omitempty"`
	Developer   *UserMini        `json:"developer,omitempty"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
}

func userMini(u *models.User) *UserMini {
	if u == nil {
		return nil
	}
	return &UserMini{ID: u.ID.String(), Name: u.Name}
}

func messageResponse(m *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID.String(),
		RoomID:    m.RoomID.String(),
		SenderID:  m.SenderID.String(),
		Type:      m.Type,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// lastReadAt returns when userID last read the room; zero time if never.
func (h *ChatHandler) lastReadAt(roomID, userID uuid.UUID) time.Time {
	var rec models.RoomMemberRead
	if err := h.DB.Where("room_id = ? AND user_id = ?", roomID, userID).First(&rec).Error; err != nil {
		return time.Time{}
	}
	return rec.LastReadAt
}

func (h *ChatHandler) markRead(roomID, userID uuid.UUID) {
	now := time.Now()
	res := h.DB.Model(&models.RoomMemberRead{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", now)
	if res.Error == nil && res.RowsAffected == 0 {
		_ = h.DB.Create(&models.RoomMemberRead{
			RoomID:     roomID,
			UserID:     userID,
			LastReadAt: now,
		}).Error
	}
}

func (h *ChatHandler) loadMemberRoom(c *fiber.Ctx, userID uuid.UUID) (*models.ChatRoom, error) {
	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid room ID",
		})
	}

	var room models.ChatRoom
	if err := h.DB.First(&room, "id = ?", roomID).Error; err != nil {
		return nil, c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Room not found",
		})
	}

	if !room.IsMember(userID) {
		return nil, c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Access denied",
		})
	}
	return &room, nil
}

// GetRooms returns the caller's project chat rooms, most recent first.
func (h *ChatHandler) GetRooms(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var rooms []models.ChatRoom
	if err := h.DB.
		Preload("Business").
		Preload("Designer").
		Preload("Developer").
		Where("business_id = ? OR designer_id = ? OR developer_id = ?", userUUID, userUUID, userUUID).
		Order("last_message_at DESC").
		Find(&rooms).Error; err != nil {

		log.Println("Error fetching rooms:", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch rooms"})
	}

	out := make([]RoomOut, 0, len(rooms))
	for _, room := range rooms {
		lastRead := h.lastReadAt(room.ID, userUUID)

		var unreadCount int64
		h.DB.Model(&models.Message{}).
			Where("room_id = ? AND sender_id != ? AND created_at > ?", room.ID, userUUID, lastRead).
			Count(&unreadCount)

		var last models.Message
		var lastPtr *MessageResponse
		if err := h.DB.
			Where("room_id = ?", room.ID).
			Order("created_at DESC").
			Limit(1).
			First(&last).Error; err == nil {
			lastPtr = messageResponse(&last)
		}

		out = append(out, RoomOut{
			ID:          room.ID.String(),
			ProjectID:   room.ProjectID.String(),
			UpdatedAt:   room.LastMessageAt,
			UnreadCount: unreadCount,
			Business:    userMini(room.Business),
			Designer:    userMini(room.Designer),
			Developer:   userMini(room.Developer),
			LastMessage: lastPtr,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// GetMessages returns a room's messages and moves the caller's read marker.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	room, ferr := h.loadMemberRoom(c, userUUID)
	if room == nil {
		return ferr
	}

	var messages []models.Message
	err = h.DB.
		Where("room_id = ?", room.ID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		log.Println("Error fetching messages:", err)
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch messages",
		})
	}

	h.markRead(room.ID, userUUID)

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, *messageResponse(&messages[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    responses,
	})
}

// MarkAsRead moves the caller's read marker without fetching messages.
func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	room, ferr := h.loadMemberRoom(c, userUUID)
	if room == nil {
		return ferr
	}

	h.markRead(room.ID, userUUID)

	return c.JSON(fiber.Map{"success": true})
}

// SendMessage posts into a room and pushes it to every member's sockets.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	room, ferr := h.loadMemberRoom(c, userUUID)
	if room == nil {
		return ferr
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Text is required",
		})
	}

	msg := models.Message{
		RoomID:   room.ID,
		SenderID: userUUID,
		Type:     "text",
		Text:     req.Text,
	}

	if err := h.DB.Create(&msg).Error; err != nil {
		log.Println("Error creating message:", err)
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send message",
		})
	}

	_ = h.DB.Model(&models.ChatRoom{}).
		Where("id = ?", room.ID).
		Update("last_message_at", msg.CreatedAt).Error

	msgResp := messageResponse(&msg)

	h.Hub.SendToRoom(room.MemberIDs(), fiber.Map{
		"type":    "new_message",
		"message": msgResp,
	})

	// push to everyone except the sender
	notif := map[string]interface{}{
		"type":      "chat_message",
		"room_id":   room.ID.String(),
		"sender_id": userUUID.String(),
		"text":      req.Text,
	}
	payload, _ := json.Marshal(notif)
	for _, memberID := range room.MemberIDs() {
		if memberID == userUUID {
			continue
		}
		h.RDB.Publish(context.Background(), "notifications:"+memberID.String(), payload)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    msgResp,
	})
}

// WebSocketHandler handles WebSocket connections
func (h *ChatHandler) WebSocketHandler(c *websocket.Conn) {
	userID := c.Query("user_id")
	if userID == "" {
		log.Println("WebSocket: user_id parameter missing")
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		log.Println("WebSocket: invalid user_id:", userID, "error:", err)
		c.Close()
		return
	}

	log.Printf("WebSocket: user %s connected\n", userID)

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   &realtime.WebSocketConn{Conn: c},
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: user %s disconnected\n", userID)
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	// read loop keeps the connection alive
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			log.Printf("WebSocket read error for user %s: %v\n", userID, err)
			break
		}

		if msgType, ok := payload["type"].(string); ok && msgType == "pong" {
			continue
		}
	}
}
