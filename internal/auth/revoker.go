package auth

import (
	"context"
	"errors"
	"time"

	"udm-portal/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Revoker remembers logged-out tokens until they expire.
type Revoker interface {
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type DBRevoker struct {
	db *gorm.DB
}

func NewDBRevoker(db *gorm.DB) *DBRevoker {
	return &DBRevoker{db: db}
}

func (r *DBRevoker) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	db := r.db.WithContext(ctx)
	// drop rows whose tokens can no longer be presented anyway
	if err := db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}).Error
}

func (r *DBRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		Count(&count).Error
	return count > 0, err
}

type RedisRevoker struct {
	client *redis.Client
	prefix string
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, prefix: "udm:revoked:"}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+jti, userID, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.prefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
