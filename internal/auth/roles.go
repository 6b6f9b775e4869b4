package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/domain"
)

// RequireViewer ensures the request carries an authenticated viewer.
func RequireViewer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ViewerFromContext(c).Authenticated() {
			return fiber.NewError(http.StatusUnauthorized, "sign in required")
		}
		return c.Next()
	}
}

// RequireRole ensures the viewer holds at least the tier of min.
func RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer := ViewerFromContext(c)
		if !viewer.Authenticated() {
			return fiber.NewError(http.StatusUnauthorized, "sign in required")
		}
		if !viewer.Role.AtLeast(min) {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
