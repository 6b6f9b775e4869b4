package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/dto"
	"github.com/spec-kit/forum-service/internal/service"
)

// AnswersHandler manages answer endpoints.
type AnswersHandler struct {
	service *service.QuestionService
}

// NewAnswersHandler constructs handler.
func NewAnswersHandler(questionService *service.QuestionService) *AnswersHandler {
	return &AnswersHandler{service: questionService}
}

// Edit PATCH /answers/:id.
func (h *AnswersHandler) Edit(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	var req dto.AnswerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, token := caller(c)
	answer, err := h.service.EditAnswer(c.UserContext(), viewer, token, id, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": answer})
}

// Delete DELETE /answers/:id.
func (h *AnswersHandler) Delete(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	if err := h.service.DeleteAnswer(c.UserContext(), viewer, token, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Approve POST /answers/:id/approve.
func (h *AnswersHandler) Approve(c *fiber.Ctx) error {
	return h.moderate(c, true)
}

// Reject POST /answers/:id/reject.
func (h *AnswersHandler) Reject(c *fiber.Ctx) error {
	return h.moderate(c, false)
}

func (h *AnswersHandler) moderate(c *fiber.Ctx, approve bool) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	answer, err := h.service.ModerateAnswer(c.UserContext(), viewer, token, id, approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": answer})
}
