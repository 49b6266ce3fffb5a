package inventory

import (
	"context"
	"errors"
	"strings"

	"udm-portal/internal/audit"
	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgEntryNotFound = "Entry not found"

type EntryInput struct {
	SupplyInput
	ProductID *uint  `json:"product_id"`
	EntryType string `json:"entry_type" validate:"omitempty,oneof=New_Supply Replacement Maintenance Inspection"`
	Notes     string `json:"notes" validate:"max=500"`
}

type EntryUpdate struct {
	SupplyUpdate
	// ProductID 0 unlinks the entry from its product.
	ProductID *uint   `json:"product_id"`
	EntryType *string `json:"entry_type" validate:"omitempty,oneof=New_Supply Replacement Maintenance Inspection"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

type EntryFilter struct {
	Search    string
	Status    string
	ItemType  string
	EntryType string
	ProductID uint
	Page      httpx.Page
}

type EntryService struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func NewEntryService(db *gorm.DB, rec *audit.Recorder) *EntryService {
	return &EntryService{db: db, audit: rec}
}

func (s *EntryService) scoped(ctx context.Context, p auth.Principal, f EntryFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Entry{}).Where("created_by = ?", p.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ItemType != "" {
		q = q.Where("item_type = ?", f.ItemType)
	}
	if f.EntryType != "" {
		q = q.Where("entry_type = ?", f.EntryType)
	}
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	return searchScope(q, f.Search, "lot_number", "item_type", "vendor_name")
}

func withRefs(q *gorm.DB) *gorm.DB {
	return q.Preload("Product").Preload("Creator")
}

func (s *EntryService) List(ctx context.Context, p auth.Principal, f EntryFilter) ([]models.Entry, int64, error) {
	var total int64
	if err := s.scoped(ctx, p, f).Count(&total).Error; err != nil {
		return nil, 0, httpx.Internal("Error fetching entries", err)
	}

	entries := make([]models.Entry, 0)
	err := withRefs(s.scoped(ctx, p, f)).
		Order("created_at DESC").Order("id DESC").
		Limit(f.Page.Limit).Offset(f.Page.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, httpx.Internal("Error fetching entries", err)
	}
	return entries, total, nil
}

func (s *EntryService) All(ctx context.Context, p auth.Principal, f EntryFilter) ([]models.Entry, error) {
	entries := make([]models.Entry, 0)
	err := withRefs(s.scoped(ctx, p, f)).
		Order("created_at DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, httpx.Internal("Error exporting entries", err)
	}
	return entries, nil
}

// ListByProduct pages the entries of one of the caller's products.
func (s *EntryService) ListByProduct(ctx context.Context, p auth.Principal, productID uint, page httpx.Page) (*models.Product, []models.Entry, int64, error) {
	product, err := ownedProduct(s.db.WithContext(ctx), p, productID)
	if err != nil {
		return nil, nil, 0, err
	}
	entries, total, err := s.List(ctx, p, EntryFilter{ProductID: product.ID, Page: page})
	if err != nil {
		return nil, nil, 0, err
	}
	return product, entries, total, nil
}

func (s *EntryService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Entry, error) {
	return s.owned(s.db.WithContext(ctx), p, id)
}

func (s *EntryService) owned(db *gorm.DB, p auth.Principal, id uint) (*models.Entry, error) {
	var entry models.Entry
	err := withRefs(db).
		Where("id = ? AND created_by = ?", id, p.UserID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpx.NotFound(msgEntryNotFound)
	}
	if err != nil {
		return nil, httpx.Internal("Error fetching entry", err)
	}
	return &entry, nil
}

// ownedProduct answers 404 both for a missing product and for someone else's.
func ownedProduct(db *gorm.DB, p auth.Principal, id uint) (*models.Product, error) {
	var product models.Product
	err := db.Where("id = ? AND created_by = ?", id, p.UserID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpx.NotFound(msgProductNotFound)
	}
	if err != nil {
		return nil, httpx.Internal("Error fetching product", err)
	}
	return &product, nil
}

func (s *EntryService) Create(ctx context.Context, p auth.Principal, in EntryInput) (*models.Entry, error) {
	in.normalize()
	in.EntryType = strings.TrimSpace(in.EntryType)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	entry := models.Entry{
		CreatedBy: p.UserID,
		EntryType: models.EntryNewSupply,
		Notes:     in.Notes,
	}
	if in.EntryType != "" {
		entry.EntryType = models.EntryType(in.EntryType)
	}
	if err := in.apply(entryTarget(&entry)); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if in.ProductID != nil && *in.ProductID != 0 {
		product, err := ownedProduct(db, p, *in.ProductID)
		if err != nil {
			return nil, err
		}
		entry.ProductID = &product.ID
	}

	if err := db.Omit(clause.Associations).Create(&entry).Error; err != nil {
		return nil, httpx.Internal("Error creating entry", err)
	}

	created, err := s.owned(db, p, entry.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityEntry,
		EntityID:    created.ID,
		Action:      models.AuditActionCreate,
		Description: "Created " + string(created.EntryType) + " entry for lot " + created.LotNumber,
		After:       NewEntryResponse(created),
	})
	return created, nil
}

func (s *EntryService) Update(ctx context.Context, p auth.Principal, id uint, in EntryUpdate) (*models.Entry, error) {
	in.normalize()
	if in.EntryType != nil {
		v := strings.TrimSpace(*in.EntryType)
		in.EntryType = &v
	}
	if in.Notes != nil {
		v := strings.TrimSpace(*in.Notes)
		in.Notes = &v
	}
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	entry, err := s.owned(db, p, id)
	if err != nil {
		return nil, err
	}
	before := NewEntryResponse(entry)

	if in.ProductID != nil {
		if *in.ProductID == 0 {
			entry.ProductID = nil
		} else {
			product, err := ownedProduct(db, p, *in.ProductID)
			if err != nil {
				return nil, err
			}
			entry.ProductID = &product.ID
		}
		// the preloaded association would otherwise shadow the new foreign key
		entry.Product = nil
	}
	if err := in.apply(entryTarget(entry)); err != nil {
		return nil, err
	}
	if in.EntryType != nil {
		entry.EntryType = models.EntryType(*in.EntryType)
	}
	setIf(&entry.Notes, in.Notes)

	if err := db.Omit(clause.Associations).Save(entry).Error; err != nil {
		return nil, httpx.Internal("Error updating entry", err)
	}

	updated, err := s.owned(db, p, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityEntry,
		EntityID:    updated.ID,
		Action:      models.AuditActionUpdate,
		Description: "Updated entry for lot " + updated.LotNumber,
		Before:      before,
		After:       NewEntryResponse(updated),
	})
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	db := s.db.WithContext(ctx)
	entry, err := s.owned(db, p, id)
	if err != nil {
		return err
	}
	if err := db.Delete(&models.Entry{}, entry.ID).Error; err != nil {
		return httpx.Internal("Error deleting entry", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityEntry,
		EntityID:    entry.ID,
		Action:      models.AuditActionDelete,
		Description: "Deleted entry for lot " + entry.LotNumber,
		Before:      NewEntryResponse(entry),
	})
	return nil
}

func (s *EntryService) Stats(ctx context.Context, p auth.Principal) (*EntryStats, error) {
	db := s.db.WithContext(ctx)
	t, err := countByStatus(db, &models.Entry{}, p.UserID)
	if err != nil {
		return nil, httpx.Internal("Error fetching entry statistics", err)
	}
	breakdown, err := breakdownBy(db, &models.Entry{}, "entry_type", p.UserID)
	if err != nil {
		return nil, httpx.Internal("Error fetching entry statistics", err)
	}
	monthly, err := monthlyEntries(db, p.UserID)
	if err != nil {
		return nil, httpx.Internal("Error fetching entry statistics", err)
	}
	return &EntryStats{
		Overview: EntryOverview{
			TotalEntries:    t.Total,
			TotalQuantity:   t.TotalQuantity,
			AcceptedEntries: t.Accepted,
			RejectedEntries: t.Rejected,
			PendingEntries:  t.Pending,
		},
		EntryTypeBreakdown: breakdown,
		MonthlyStats:       monthly,
	}, nil
}
