package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/dto"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/service"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

// AdminHandler manages administrator endpoints.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{service: adminService}
}

// ListUsers GET /admin/users?page=&limit=.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Check(query); err != nil {
		return err
	}
	viewer, token := caller(c)
	page, err := h.service.ListUsers(c.UserContext(), viewer, token, query.Page, query.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": page})
}

// ChangeRole PATCH /admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return err
	}
	var req dto.RoleChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	viewer, token := caller(c)
	user, err := h.service.ChangeRole(c.UserContext(), viewer, token, id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// ModerationLog GET /admin/moderation-log?targetType=&targetId=&limit=.
func (h *AdminHandler) ModerationLog(c *fiber.Ctx) error {
	var query dto.ModerationLogQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Check(query); err != nil {
		return err
	}
	viewer, _ := caller(c)
	entries, err := h.service.ModerationLog(c.UserContext(), viewer, domain.TargetType(query.TargetType), query.TargetID, query.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
