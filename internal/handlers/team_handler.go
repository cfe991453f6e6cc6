package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/services/team"
)

type TeamHandler struct {
	Teams *team.Service
}

func NewTeamHandler(teams *team.Service) *TeamHandler {
	return &TeamHandler{Teams: teams}
}

// teamError maps the team service's sentinel errors onto HTTP responses.
func teamError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "server error"

	switch {
	case errors.Is(err, team.ErrNotFound):
		status, msg = fiber.StatusNotFound, "project not found"
	case errors.Is(err, team.ErrNotOwner):
		status, msg = fiber.StatusForbidden, "not your project"
	case errors.Is(err, team.ErrNotParticipant):
		status, msg = fiber.StatusForbidden, "you are not on this project's team"
	case errors.Is(err, team.ErrAlreadyResponded):
		status, msg = fiber.StatusConflict, "you already responded to this invitation"
	case errors.Is(err, team.ErrWrongState):
		status, msg = fiber.StatusConflict, "project is not in the right state for this action"
	case errors.Is(err, team.ErrPaymentRequired):
		status, msg = fiber.StatusPaymentRequired, "unlock fee has not been paid for this tier"
	case errors.Is(err, team.ErrNoneAvailable):
		status, msg = fiber.StatusNotFound, "no available freelancers match this request"
	case errors.Is(err, team.ErrInvalidTier):
		status, msg = fiber.StatusBadRequest, "invalid tier"
	case errors.Is(err, team.ErrInvalidRole):
		status, msg = fiber.StatusBadRequest, "role must be designer or developer"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

// GetOffers recomputes the three tiered offers for a project.
func (h *TeamHandler) GetOffers(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	offers, err := h.Teams.GenerateOffers(c.Context(), projectID, userID)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": offers})
}

type chooseTeamReq struct {
	Tier        string `json:"tier"`
	DesignerID  string `json:"designer_id"`
	DeveloperID string `json:"developer_id"`
}

// ChooseTeam pins an offer's pair and sends both invitations.
func (h *TeamHandler) ChooseTeam(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	var req chooseTeamReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "invalid body")
	}

	designerID, err := uuid.Parse(req.DesignerID)
	if err != nil {
		return fail200(c, "invalid designer_id")
	}
	developerID, err := uuid.Parse(req.DeveloperID)
	if err != nil {
		return fail200(c, "invalid developer_id")
	}

	tier := models.TeamTier(strings.ToLower(strings.TrimSpace(req.Tier)))
	if err := h.Teams.ChooseTeam(c.Context(), projectID, userID, designerID, developerID, tier); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "invitations sent to both freelancers",
	})
}

type respondReq struct {
	Action string `json:"action"` // accept / reject
}

// Respond records a freelancer's accept or reject for their invitation.
func (h *TeamHandler) Respond(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	var req respondReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "invalid body")
	}

	var accept bool
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "accept":
		accept = true
	case "reject":
		accept = false
	default:
		return fail200(c, "action must be accept or reject")
	}

	res, err := h.Teams.RespondToInvitation(c.Context(), projectID, userID, accept)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": res})
}

// ReplacementCandidates ranks substitutes for a rejected role.
func (h *TeamHandler) ReplacementCandidates(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	role := models.FreelancerRole(strings.ToLower(strings.TrimSpace(c.Query("role"))))
	candidates, err := h.Teams.FindReplacement(c.Context(), projectID, userID, role)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": candidates})
}

type selectReplacementReq struct {
	Role        string `json:"role"`
	CandidateID string `json:"candidate_id"`
}

// SelectReplacement swaps the rejected role for a chosen candidate.
func (h *TeamHandler) SelectReplacement(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid project id")
	}

	var req selectReplacementReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "invalid body")
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return fail200(c, "invalid candidate_id")
	}

	role := models.FreelancerRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if err := h.Teams.SelectReplacement(c.Context(), projectID, userID, role, candidateID); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "replacement invitation sent",
	})
}
