package admin

import (
	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/users
func ListUsersHandler(svc *UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]auth.UserResponse, 0, len(users))
		for i := range users {
			res = append(res, auth.NewUserResponse(&users[i]))
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"users": res, "total": len(res)},
		})
	}
}

// PUT /api/admin/users/:id/deactivate
func DeactivateUserHandler(svc *UserService) fiber.Handler {
	return setActiveHandler(svc, false, "User deactivated successfully")
}

// PUT /api/admin/users/:id/activate
func ActivateUserHandler(svc *UserService) fiber.Handler {
	return setActiveHandler(svc, true, "User activated successfully")
}

func setActiveHandler(svc *UserService, active bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return httpx.NotFound(msgUserNotFound)
		}
		user, err := svc.SetActive(c.UserContext(), actor, uint(id), active)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": message,
			"data":    fiber.Map{"user": auth.NewUserResponse(user)},
		})
	}
}
