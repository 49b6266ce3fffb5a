// Package admin holds the admin-only user administration endpoints.
package admin

import (
	"context"
	"errors"

	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"gorm.io/gorm"
)

const msgUserNotFound = "User not found"

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, httpx.Internal("Error fetching users", err)
	}
	return users, nil
}

// SetActive flips is_active. Deactivation is the soft delete; the middleware
// rejects the user's tokens from the next request on.
func (s *UserService) SetActive(ctx context.Context, actor auth.Principal, id uint, active bool) (*models.User, error) {
	if !active && actor.UserID == id {
		return nil, httpx.Validation("You cannot deactivate your own account")
	}

	db := s.db.WithContext(ctx)
	var user models.User
	err := db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpx.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, httpx.Internal("Error fetching user", err)
	}

	if user.IsActive != active {
		if err := db.Model(&user).Update("is_active", active).Error; err != nil {
			return nil, httpx.Internal("Error updating user", err)
		}
		user.IsActive = active
	}
	return &user, nil
}
