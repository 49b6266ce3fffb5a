package auth

import (
	"errors"
	"log/slog"
	"strings"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	msgNoToken        = "No token provided"
	msgInvalidToken   = "Invalid token"
	msgExpiredToken   = "Token has expired"
	msgRevokedToken   = "Token has been revoked"
	msgUserGone       = "Token is valid but user no longer exists"
	msgUserInactive   = "User account is deactivated"
	msgAuthUnexpected = "Server error during authentication"
)

type Authenticator struct {
	db      *gorm.DB
	tokens  *TokenManager
	revoker Revoker
	log     *slog.Logger
}

func NewAuthenticator(db *gorm.DB, tokens *TokenManager, revoker Revoker, log *slog.Logger) *Authenticator {
	return &Authenticator{db: db, tokens: tokens, revoker: revoker, log: log}
}

// JWTMiddleware resolves the bearer token to an active user and stores the Principal.
func (a *Authenticator) JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return httpx.Unauthorized(msgNoToken)
		}

		claims, err := a.tokens.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return httpx.Unauthorized(msgExpiredToken)
			}
			return httpx.Unauthorized(msgInvalidToken)
		}

		ctx := c.UserContext()
		revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return httpx.Internal(msgAuthUnexpected, err)
		}
		if revoked {
			return httpx.Unauthorized(msgRevokedToken)
		}

		var user models.User
		if err := a.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httpx.Unauthorized(msgUserGone)
			}
			return httpx.Internal(msgAuthUnexpected, err)
		}
		if !user.IsActive {
			return httpx.Unauthorized(msgUserInactive)
		}

		setPrincipal(c, Principal{
			UserID:         user.ID,
			Username:       user.Username,
			Email:          user.Email,
			Role:           user.Role,
			TokenID:        claims.ID,
			TokenExpiresAt: claims.ExpiresAt.Time,
		})
		return c.Next()
	}
}

// RequireRole must run after JWTMiddleware.
func RequireRole(allowed ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		for _, r := range allowed {
			if r == p.Role {
				return c.Next()
			}
		}
		return httpx.Forbidden("Insufficient permissions")
	}
}

// bearerToken strips the "Bearer " scheme. A header without the scheme is passed
// through so that it fails verification as an invalid token.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if strings.EqualFold(parts[0], "bearer") {
		if len(parts) < 2 {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	return header, true
}
