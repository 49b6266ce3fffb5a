package models

import "time"

// RevokedToken marks a JWT (by jti) as logged out until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
