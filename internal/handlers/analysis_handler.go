package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hiringdesk/hiring-assistant/internal/models"
	"hiringdesk/hiring-assistant/internal/services"
)

type AnalysisHandler struct {
	svc services.AnalysisService
}

func NewAnalysisHandler(svc services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// HandleList handles GET /analyses
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"analyses": h.svc.List(),
	})
}

// HandleCreate handles POST /analyses
func (h *AnalysisHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.RoleTitle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "role_title is required",
		})
	}
	if req.RoleDescription == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "role_description is required",
		})
	}

	analysis, err := h.svc.Create(req.RoleTitle, req.RoleDescription)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create analysis",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(analysis)
}

// HandleGet handles GET /analyses/:id
func (h *AnalysisHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	analysis, err := h.svc.Get(id)
	if err != nil {
		return analysisError(c, err)
	}

	return c.JSON(analysis)
}

// HandleDelete handles DELETE /analyses/:id
func (h *AnalysisHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(id); err != nil {
		return analysisError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAnalyzeRole handles POST /analyses/:id/role-analysis
func (h *AnalysisHandler) HandleAnalyzeRole(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	requirements, err := h.svc.AnalyzeRole(c.Context(), id)
	if err != nil {
		return analysisError(c, err)
	}

	return c.JSON(requirements)
}

// HandleGenerateQuestions handles POST /analyses/:id/questions
func (h *AnalysisHandler) HandleGenerateQuestions(c *fiber.Ctx) error {
	id, err := parseAnalysisID(c)
	if err != nil {
		return err
	}

	questions, err := h.svc.GenerateQuestions(c.Context(), id)
	if err != nil {
		return analysisError(c, err)
	}

	return c.JSON(questions)
}

// parseAnalysisID returns a *fiber.Error on bad input, rendered by the app
// error handler.
func parseAnalysisID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid analysis ID format")
	}
	return id, nil
}

func analysisError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAnalysisNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis not found",
		})
	case errors.Is(err, services.ErrResumeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	case errors.Is(err, services.ErrNoRoleAnalysis):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Run the role analysis first",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
