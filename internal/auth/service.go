package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"gorm.io/gorm"
)

const msgUserExists = "User with this username or email already exists"

type RegisterInput struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Department string `json:"department" validate:"max=100"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// Session is what login and register hand back to the client.
type Session struct {
	Token string
	User  models.User
}

type Service struct {
	db      *gorm.DB
	hasher  *PasswordHasher
	tokens  *TokenManager
	revoker Revoker
}

func NewService(db *gorm.DB, hasher *PasswordHasher, tokens *TokenManager, revoker Revoker) *Service {
	return &Service{db: db, hasher: hasher, tokens: tokens, revoker: revoker}
}

// Register creates an account. The very first account becomes the admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Department = strings.TrimSpace(in.Department)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var taken int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&taken).Error; err != nil {
		return nil, httpx.Internal("Error creating user", err)
	}
	if taken > 0 {
		return nil, httpx.Conflict(msgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, httpx.Internal("Error creating user", err)
	}

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, httpx.Internal("Error creating user", err)
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	now := time.Now()
	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Department:   in.Department,
		Role:         role,
		IsActive:     true,
		LastLoginAt:  &now,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, httpx.Conflict(msgUserExists)
		}
		return nil, httpx.Internal("Error creating user", err)
	}

	return s.issue(&user)
}

// Login accepts either the username or the email as identifier.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var user models.User
	err := db.Where("username = ? OR email = ?", in.Username, strings.ToLower(in.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.Unauthorized("Invalid credentials")
		}
		return nil, httpx.Internal("Error during login", err)
	}
	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		return nil, httpx.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, httpx.Unauthorized(msgUserInactive)
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, httpx.Internal("Error during login", err)
	}
	user.LastLoginAt = &now

	return s.issue(&user)
}

func (s *Service) Me(ctx context.Context, p Principal) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.NotFound("User not found")
		}
		return nil, httpx.Internal("Error fetching user", err)
	}
	return &user, nil
}

// Logout revokes the token the caller authenticated with.
func (s *Service) Logout(ctx context.Context, p Principal) error {
	if err := s.revoker.Revoke(ctx, p.TokenID, p.UserID, p.TokenExpiresAt); err != nil {
		return httpx.Internal("Error during logout", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, p Principal, in ChangePasswordInput) error {
	if err := httpx.Validate(in); err != nil {
		return err
	}

	user, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(user.PasswordHash, in.CurrentPassword) {
		return httpx.Validation("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return httpx.Internal("Error changing password", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return httpx.Internal("Error changing password", err)
	}
	return nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, _, err := s.tokens.Generate(user)
	if err != nil {
		return nil, httpx.Internal("Error generating token", err)
	}
	return &Session{Token: token, User: *user}, nil
}
