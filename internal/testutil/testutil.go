// Package testutil builds throwaway SQLite databases for package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"udm-portal/internal/config"
	"udm-portal/internal/database"
	"udm-portal/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "secret123"

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := database.Open(cfg, nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser inserts an active user whose password is Password.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateProduct inserts a product owned by owner with sensible defaults.
func CreateProduct(t *testing.T, db *gorm.DB, owner uint, lot string) models.Product {
	t.Helper()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := models.Product{
		LotNumber:            lot,
		ItemType:             "Rail Clip",
		VendorName:           "Acme Rail",
		VendorID:             "V-100",
		DateOfSupply:         day,
		WarrantyPeriodMonths: 12,
		QuantitySupplied:     10,
		InspectionDate:       day,
		InspectedBy:          "Inspector",
		Status:               models.StatusAccepted,
		CreatedBy:            owner,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product %s: %v", lot, err)
	}
	return p
}
