package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/services/intake"
)

type ProjectHandler struct {
	DB     *gorm.DB
	Intake *intake.Service
}

func NewProjectHandler(db *gorm.DB, intakeSvc *intake.Service) *ProjectHandler {
	return &ProjectHandler{DB: db, Intake: intakeSvc}
}

// StartIntake creates a project and opens the scripted requirement
// conversation. The reply is the first question to show the business.
func (h *ProjectHandler) StartIntake(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := h.Intake.Start(c.Context(), userID)
	if err != nil {
		return fail500(c, "failed to start project")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    res,
	})
}

type intakeMessageReq struct {
	Message string `json:"message"`
}

func (h *ProjectHandler) IntakeMessage(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	var req intakeMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "invalid body")
	}

	res, err := h.Intake.Advance(c.Context(), projectID, userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrProjectNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "project not found",
			})
		case errors.Is(err, intake.ErrNotOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "not your project",
			})
		case errors.Is(err, intake.ErrIntakeComplete):
			return fail200(c, "intake is already complete")
		default:
			return fail500(c, "failed to process answer")
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": res})
}

// ListMyProjects returns the caller's projects: owned ones for a
// business, assigned ones for a freelancer.
func (h *ProjectHandler) ListMyProjects(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var projects []models.Project
	err = h.DB.
		Where("business_id = ?", userID).
		Or("selected_designer_id = ?", userID).
		Or("selected_developer_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return fail500(c, "failed to load projects")
	}

	return c.JSON(fiber.Map{"success": true, "data": projects})
}

func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	var p models.Project
	if err := h.DB.First(&p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "project not found",
			})
		}
		return fail500(c, "failed to load project")
	}

	if p.BusinessID != userID && p.TeamRoleOf(userID) == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "not a participant of this project",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": p})
}
