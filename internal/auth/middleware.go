package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/domain"
)

const (
	principalKey = "auth_principal"
)

// Principal represents the caller of a request. A request without a usable
// token carries no Principal.
type Principal struct {
	Viewer *domain.Viewer
	// Token is forwarded to the backend on the caller's behalf.
	Token string
}

// Middleware resolves the viewer from the auth cookie or bearer header.
type Middleware struct {
	tokens     *TokenManager
	cookieName string
	logger     *zap.Logger
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, cookieName string, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{tokens: tokens, cookieName: cookieName, logger: logger}
}

// Optional attaches a Principal when the request carries a valid token and
// otherwise lets the request through as a guest.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	token := m.extractToken(c)
	if token == "" {
		return c.Next()
	}

	viewer, err := m.tokens.Viewer(token)
	if err != nil {
		m.logger.Debug("ignoring unusable token", zap.Error(err))
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Viewer: viewer, Token: token})
	return c.Next()
}

func (m *Middleware) extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.cookieName == "" {
		return ""
	}
	return strings.TrimSpace(c.Cookies(m.cookieName))
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}

// ViewerFromContext returns the viewer, or nil for guests.
func ViewerFromContext(c *fiber.Ctx) *domain.Viewer {
	if principal, ok := PrincipalFromContext(c); ok {
		return principal.Viewer
	}
	return nil
}

// TokenFromContext returns the caller's raw token, or "" for guests.
func TokenFromContext(c *fiber.Ctx) string {
	if principal, ok := PrincipalFromContext(c); ok {
		return principal.Token
	}
	return ""
}
