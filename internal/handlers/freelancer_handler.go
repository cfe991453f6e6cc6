package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/models"
)

type FreelancerHandler struct {
	DB *gorm.DB
}

func NewFreelancerHandler(db *gorm.DB) *FreelancerHandler {
	return &FreelancerHandler{DB: db}
}

// ========= Helpers =========

func fail200(c *fiber.Ctx, message string, extra ...fiber.Map) error {
	resp := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(extra) > 0 {
		for k, v := range extra[0] {
			resp[k] = v
		}
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func fail500(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func validFreelancerRole(r models.FreelancerRole) bool {
	return r == models.FreelancerDesigner || r == models.FreelancerDeveloper
}

func validExperienceTier(t models.ExperienceTier) bool {
	return t == models.ExperienceJunior || t == models.ExperienceMid || t == models.ExperienceSenior
}

func (h *FreelancerHandler) findOrCreateProfile(tx *gorm.DB, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	err := tx.Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = models.FreelancerProfile{
		UserID:    userID,
		Rating:    5.0,
		Available: true,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ========= Handlers =========

func (h *FreelancerHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	p, err := h.findOrCreateProfile(h.DB, userID)
	if err != nil {
		return fail500(c, "failed to load profile")
	}

	return c.JSON(fiber.Map{"success": true, "data": p})
}

type updateProfileReq struct {
	Role           string   `json:"role"`            // designer / developer
	ExperienceTier string   `json:"experience_tier"` // junior / mid / senior
	Skills         []string `json:"skills"`
	HourlyRate     int64    `json:"hourly_rate"`
	Bio            string   `json:"bio"`
	PortfolioURL   string   `json:"portfolio_url"`
}

// UpdateProfile edits the matcher-visible fields. Rating and completed
// project counts are not accepted here; those only move server-side.
func (h *FreelancerHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "invalid body")
	}

	role := models.FreelancerRole(strings.ToLower(strings.TrimSpace(req.Role)))
	tier := models.ExperienceTier(strings.ToLower(strings.TrimSpace(req.ExperienceTier)))

	if !validFreelancerRole(role) {
		return fail200(c, "role must be designer or developer")
	}
	if !validExperienceTier(tier) {
		return fail200(c, "experience_tier must be junior, mid or senior")
	}
	if req.HourlyRate <= 0 {
		return fail200(c, "hourly_rate must be positive")
	}

	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}
	rawSkills, err := json.Marshal(skills)
	if err != nil {
		return fail500(c, "failed to encode skills")
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := h.findOrCreateProfile(tx, userID)
	if err != nil {
		tx.Rollback()
		return fail500(c, "failed to load profile")
	}

	p.Role = role
	p.ExperienceTier = tier
	p.Skills = datatypes.JSON(rawSkills)
	p.HourlyRate = req.HourlyRate
	p.Bio = strings.TrimSpace(req.Bio)
	p.PortfolioURL = strings.TrimSpace(req.PortfolioURL)
	p.UpdatedAt = time.Now()

	if err := tx.Save(p).Error; err != nil {
		tx.Rollback()
		return fail500(c, "failed to update profile")
	}

	tx.Commit()

	return c.JSON(fiber.Map{"success": true, "data": p})
}

type setAvailabilityReq struct {
	Available *bool `json:"available"`
}

func (h *FreelancerHandler) SetAvailability(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req setAvailabilityReq
	if err := c.BodyParser(&req); err != nil || req.Available == nil {
		return fail200(c, "available (true/false) is required")
	}

	res := h.DB.Model(&models.FreelancerProfile{}).
		Where("user_id = ?", userID).
		Update("available", *req.Available)
	if res.Error != nil {
		return fail500(c, "failed to update availability")
	}
	if res.RowsAffected == 0 {
		return fail200(c, "complete your profile first")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "availability updated",
		"data":    fiber.Map{"available": *req.Available},
	})
}

// Directory lists freelancer profiles for browsing. Optional filters:
// ?role=designer|developer and ?available=true.
func (h *FreelancerHandler) Directory(c *fiber.Ctx) error {
	q := h.DB.Model(&models.FreelancerProfile{}).Preload("User")

	if role := strings.ToLower(strings.TrimSpace(c.Query("role"))); role != "" {
		if !validFreelancerRole(models.FreelancerRole(role)) {
			return fail200(c, "role must be designer or developer")
		}
		q = q.Where("role = ?", role)
	}
	if c.Query("available") == "true" {
		q = q.Where("available = ?", true)
	}

	var profiles []models.FreelancerProfile
	if err := q.Order("rating DESC, completed_projects DESC").Limit(100).Find(&profiles).Error; err != nil {
		return fail500(c, "failed to load directory")
	}

	out := make([]fiber.Map, 0, len(profiles))
	for _, p := range profiles {
		name := ""
		if p.User != nil {
			name = p.User.Name
		}
		out = append(out, fiber.Map{
			"id":                 p.ID,
			"user_id":            p.UserID,
			"name":               name,
			"role":               p.Role,
			"experience_tier":    p.ExperienceTier,
			"skills":             p.SkillList(),
			"hourly_rate":        p.HourlyRate,
			"rating":             p.Rating,
			"completed_projects": p.CompletedProjects,
			"available":          p.Available,
			"portfolio_url":      p.PortfolioURL,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

func (h *FreelancerHandler) GetPublicProfile(c *fiber.Ctx) error {
	targetUserID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid user id")
	}

	var p models.FreelancerProfile
	if err := h.DB.Preload("User").Where("user_id = ?", targetUserID).First(&p).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	name := ""
	var joinedAt time.Time
	if p.User != nil {
		name = p.User.Name
		joinedAt = p.User.CreatedAt
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":                 p.UserID,
			"name":               name,
			"role":               p.Role,
			"experience_tier":    p.ExperienceTier,
			"skills":             p.SkillList(),
			"bio":                p.Bio,
			"portfolio_url":      p.PortfolioURL,
			"rating":             p.Rating,
			"completed_projects": p.CompletedProjects,
			"available":          p.Available,
			"joined_at":          joinedAt,
		},
	})
}
