package auth

import (
	"time"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"github.com/gofiber/fiber/v2"
)

const ctxPrincipalKey = "principal"

// Principal is the authenticated caller. Handlers read it once and hand it to services.
type Principal struct {
	UserID         uint
	Username       string
	Email          string
	Role           models.UserRole
	TokenID        string
	TokenExpiresAt time.Time
}

func PrincipalFrom(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(ctxPrincipalKey).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, httpx.Unauthorized("No token provided")
	}
	return p, nil
}

func setPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(ctxPrincipalKey, p)
}
