package database

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"udm-portal/internal/config"
	"udm-portal/internal/logging"
	"udm-portal/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpenMigratesSchema(t *testing.T) {
	db := openMemory(t)

	for _, m := range []any{&models.User{}, &models.Product{}, &models.Entry{}, &models.AuditLog{}, &models.RevokedToken{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Product{}, "LotNumber"))
	assert.True(t, db.Migrator().HasIndex(&models.Entry{}, "ProductID"))
	require.NoError(t, Ping(context.Background(), db))
}

func TestLotNumberUniqueIndex(t *testing.T) {
	db := openMemory(t)

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	newProduct := func() *models.Product {
		now := time.Now()
		return &models.Product{
			LotNumber: "LOT-1", ItemType: "Rail Clip", VendorName: "Acme", VendorID: "V1",
			DateOfSupply: now, WarrantyPeriodMonths: 12, QuantitySupplied: 10,
			InspectionDate: now, InspectedBy: "Bob", Status: models.StatusAccepted, CreatedBy: user.ID,
		}
	}
	require.NoError(t, db.Create(newProduct()).Error)

	err := db.Create(newProduct()).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mongodb"}, nil)
	require.Error(t, err)
}

func TestOpenLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := Open(cfg, logging.NewWithWriter(&buf, "json", "debug"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	assert.Contains(t, buf.String(), `"msg":"database connected and migrated"`)

	buf.Reset()
	var user models.User
	err = db.First(&user, 4242).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), "record not found")

	// real failures still reach the application log
	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}
