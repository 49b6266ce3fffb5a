package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Recorder persists the before/after trail of product and entry mutations.
type Recorder struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewRecorder(db *gorm.DB, log *slog.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

func (r *Recorder) WriteLog(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("audit: write log: %w", err)
	}
	return nil
}

// Record is WriteLog for request paths: a failed audit write is logged, never returned.
func (r *Recorder) Record(ctx context.Context, opts LogOptions) {
	if err := r.WriteLog(ctx, opts); err != nil {
		r.log.Warn("audit log not written",
			slog.String("entity_type", opts.EntityType),
			slog.Uint64("entity_id", uint64(opts.EntityID)),
			slog.String("action", string(opts.Action)),
			slog.Any("error", err))
	}
}

type ListFilter struct {
	EntityType string
	Page       httpx.Page
}

// List returns the caller's own audit trail, newest first.
func (r *Recorder) List(ctx context.Context, userID uint, f ListFilter) ([]models.AuditLog, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("user_id = ?", userID)
		if f.EntityType != "" {
			q = q.Where("entity_type = ?", f.EntityType)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]models.AuditLog, 0)
	err := query().Order("created_at DESC").Order("id DESC").
		Limit(f.Page.Limit).Offset(f.Page.Offset()).
		Find(&logs).Error
	return logs, total, err
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
