package auth

import (
	"time"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserResponse is the public view of a user; it never carries the password hash.
type UserResponse struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Department  string          `json:"department"`
	Role        models.UserRole `json:"role"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Department:  u.Department,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func sessionResponse(message string, s *Session) fiber.Map {
	return fiber.Map{
		"success": true,
		"message": message,
		"data": fiber.Map{
			"token": s.Token,
			"user":  NewUserResponse(&s.User),
		},
	}
}

// POST /api/auth/register
func RegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		session, err := svc.Register(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(sessionResponse("User registered successfully", session))
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		session, err := svc.Login(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.JSON(sessionResponse("Login successful", session))
	}
}

// GET /api/auth/me
func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		user, err := svc.Me(c.UserContext(), p)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"user": NewUserResponse(user)},
		})
	}
}

// POST /api/auth/logout
func LogoutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.Logout(c.UserContext(), p); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
	}
}

// POST /api/auth/change-password
func ChangePasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body ChangePasswordInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		if err := svc.ChangePassword(c.UserContext(), p, body); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "Password changed successfully"})
	}
}
