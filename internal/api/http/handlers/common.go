package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/dto"
	"github.com/spec-kit/forum-service/internal/auth"
	"github.com/spec-kit/forum-service/internal/domain"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

func caller(c *fiber.Ctx) (*domain.Viewer, string) {
	return auth.ViewerFromContext(c), auth.TokenFromContext(c)
}

// bind parses a JSON or form body into req and runs its validation tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Check(req)
}

func param(c *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(c.Params(name))
	if value == "" {
		return "", apperrors.NewValidationError(name+" is required", nil)
	}
	return value, nil
}
