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

const (
	msgProductNotFound = "Product not found"
	msgLotExists       = "Product with this lot number already exists"
)

type ProductFilter struct {
	Search   string
	Status   string
	ItemType string
	Page     httpx.Page
}

type ProductService struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func NewProductService(db *gorm.DB, rec *audit.Recorder) *ProductService {
	return &ProductService{db: db, audit: rec}
}

func (s *ProductService) scoped(ctx context.Context, p auth.Principal, f ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{}).Where("created_by = ?", p.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ItemType != "" {
		q = q.Where("item_type = ?", f.ItemType)
	}
	return searchScope(q, f.Search, "lot_number", "item_type", "vendor_name")
}

// List returns one page of the caller's products, newest first.
func (s *ProductService) List(ctx context.Context, p auth.Principal, f ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := s.scoped(ctx, p, f).Count(&total).Error; err != nil {
		return nil, 0, httpx.Internal("Error fetching products", err)
	}

	products := make([]models.Product, 0)
	err := s.scoped(ctx, p, f).Preload("Creator").
		Order("created_at DESC").Order("id DESC").
		Limit(f.Page.Limit).Offset(f.Page.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, httpx.Internal("Error fetching products", err)
	}
	return products, total, nil
}

// All is List without pagination; used by the spreadsheet export.
func (s *ProductService) All(ctx context.Context, p auth.Principal, f ProductFilter) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := s.scoped(ctx, p, f).Preload("Creator").
		Order("created_at DESC").Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, httpx.Internal("Error exporting products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Product, error) {
	return s.owned(s.db.WithContext(ctx), p, id)
}

func (s *ProductService) owned(db *gorm.DB, p auth.Principal, id uint) (*models.Product, error) {
	var product models.Product
	err := db.Preload("Creator").
		Where("id = ? AND created_by = ?", id, p.UserID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpx.NotFound(msgProductNotFound)
	}
	if err != nil {
		return nil, httpx.Internal("Error fetching product", err)
	}
	return &product, nil
}

// lotTaken reports whether any owner already holds lot, ignoring exceptID.
func lotTaken(db *gorm.DB, lot string, exceptID uint) (bool, error) {
	q := db.Model(&models.Product{}).Where("lot_number = ?", lot)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ProductService) Create(ctx context.Context, p auth.Principal, in SupplyInput) (*models.Product, error) {
	in.normalize()
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	product := models.Product{CreatedBy: p.UserID}
	if err := in.apply(productTarget(&product)); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := lotTaken(db, product.LotNumber, 0)
	if err != nil {
		return nil, httpx.Internal("Error creating product", err)
	}
	if taken {
		return nil, httpx.Conflict(msgLotExists)
	}

	if err := db.Omit(clause.Associations).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, httpx.Conflict(msgLotExists)
		}
		return nil, httpx.Internal("Error creating product", err)
	}

	created, err := s.owned(db, p, product.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityProduct,
		EntityID:    created.ID,
		Action:      models.AuditActionCreate,
		Description: "Created product " + created.LotNumber,
		After:       NewProductResponse(created),
	})
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, p auth.Principal, id uint, in SupplyUpdate) (*models.Product, error) {
	in.normalize()
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	product, err := s.owned(db, p, id)
	if err != nil {
		return nil, err
	}
	before := NewProductResponse(product)

	if in.LotNumber != nil && *in.LotNumber != product.LotNumber {
		taken, err := lotTaken(db, *in.LotNumber, product.ID)
		if err != nil {
			return nil, httpx.Internal("Error updating product", err)
		}
		if taken {
			return nil, httpx.Conflict(msgLotExists)
		}
	}
	if err := in.apply(productTarget(product)); err != nil {
		return nil, err
	}

	if err := db.Omit(clause.Associations).Save(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, httpx.Conflict(msgLotExists)
		}
		return nil, httpx.Internal("Error updating product", err)
	}

	updated, err := s.owned(db, p, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityProduct,
		EntityID:    updated.ID,
		Action:      models.AuditActionUpdate,
		Description: "Updated product " + updated.LotNumber,
		Before:      before,
		After:       NewProductResponse(updated),
	})
	return updated, nil
}

// Delete removes the product and unlinks its entries; the entries themselves stay.
func (s *ProductService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	var before ProductResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.owned(tx, p, id)
		if err != nil {
			return err
		}
		before = NewProductResponse(product)

		if err := tx.Model(&models.Entry{}).
			Where("product_id = ?", product.ID).
			Update("product_id", nil).Error; err != nil {
			return httpx.Internal("Error deleting product", err)
		}
		if err := tx.Delete(&models.Product{}, product.ID).Error; err != nil {
			return httpx.Internal("Error deleting product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.LogOptions{
		UserID:      p.UserID,
		EntityType:  models.EntityProduct,
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: "Deleted product " + before.LotNumber,
		Before:      before,
	})
	return nil
}

// searchScope adds a case-insensitive literal substring match over cols.
// SQLite's LOWER folds ASCII only; Postgres folds the full Unicode range.
func searchScope(q *gorm.DB, search string, cols ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(cols) == 0 {
		return q
	}
	pattern := likePattern(search)
	conds := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(conds, " OR ")+")", args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
