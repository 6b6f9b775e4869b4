package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/dto"
	"github.com/spec-kit/forum-service/internal/service"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

// QuestionsHandler serves question pages and question-scoped actions.
type QuestionsHandler struct {
	service *service.QuestionService
}

// NewQuestionsHandler constructs handler.
func NewQuestionsHandler(questionService *service.QuestionService) *QuestionsHandler {
	return &QuestionsHandler{service: questionService}
}

// Page GET /questions/:id.
func (h *QuestionsHandler) Page(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	page, err := h.service.Page(c.UserContext(), viewer, token, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": page})
}

// Delete DELETE /questions/:id.
func (h *QuestionsHandler) Delete(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	if err := h.service.DeleteQuestion(c.UserContext(), viewer, token, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Like POST /questions/:id/like.
func (h *QuestionsHandler) Like(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	likes, err := h.service.Like(c.UserContext(), viewer, token, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"likes": likes}})
}

// Report POST /questions/:id/report.
func (h *QuestionsHandler) Report(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, token := caller(c)
	if err := h.service.Report(c.UserContext(), viewer, token, id, req.Reason); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// Accept POST /questions/:id/accept/:answerId.
func (h *QuestionsHandler) Accept(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	answerID, err := param(c, "answerId")
	if err != nil {
		return err
	}
	viewer, token := caller(c)
	if err := h.service.AcceptAnswer(c.UserContext(), viewer, token, id, answerID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateAnswer POST /questions/:id/answers.
func (h *QuestionsHandler) CreateAnswer(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	var req dto.AnswerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, token := caller(c)
	answer, err := h.service.Answer(c.UserContext(), viewer, token, id, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": answer})
}

// CreateComment POST /questions/:id/comments.
func (h *QuestionsHandler) CreateComment(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, token := caller(c)
	comment, err := h.service.Comment(c.UserContext(), viewer, token, id, req.Body, req.ParentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": comment})
}

// DeleteComment DELETE /comments/:id?questionId=.
func (h *QuestionsHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	questionID := strings.TrimSpace(c.Query("questionId"))
	if questionID == "" {
		return apperrors.NewValidationError("questionId is required",
			map[string]any{"fields": map[string]any{"questionId": "required"}})
	}
	viewer, token := caller(c)
	if err := h.service.DeleteComment(c.UserContext(), viewer, token, questionID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
