package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/service"
)

// ExpertsHandler serves the expert directory.
type ExpertsHandler struct {
	service *service.ExpertService
}

// NewExpertsHandler constructs handler.
func NewExpertsHandler(expertService *service.ExpertService) *ExpertsHandler {
	return &ExpertsHandler{service: expertService}
}

// List GET /experts?category=.
func (h *ExpertsHandler) List(c *fiber.Ctx) error {
	_, token := caller(c)
	experts, err := h.service.List(c.UserContext(), token, c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": experts})
}

// Get GET /experts/:id.
func (h *ExpertsHandler) Get(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	_, token := caller(c)
	expert, err := h.service.Profile(c.UserContext(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": expert})
}
