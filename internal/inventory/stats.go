package inventory

import (
	"context"
	"sort"
	"time"

	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"

	"gorm.io/gorm"
)

const monthlyStatsLimit = 12

type statusTotals struct {
	Total         int64
	TotalQuantity int64
	Accepted      int64
	Rejected      int64
	Pending       int64
}

type Breakdown struct {
	ID            string `json:"_id"`
	Count         int64  `json:"count"`
	TotalQuantity int64  `json:"totalQuantity"`
}

type Month struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthlyStat struct {
	ID            Month `json:"_id"`
	Count         int64 `json:"count"`
	TotalQuantity int64 `json:"totalQuantity"`
}

type ProductOverview struct {
	TotalProducts    int64 `json:"totalProducts"`
	TotalQuantity    int64 `json:"totalQuantity"`
	AcceptedProducts int64 `json:"acceptedProducts"`
	RejectedProducts int64 `json:"rejectedProducts"`
	PendingProducts  int64 `json:"pendingProducts"`
}

type ProductStats struct {
	Overview          ProductOverview `json:"overview"`
	ItemTypeBreakdown []Breakdown     `json:"itemTypeBreakdown"`
}

type EntryOverview struct {
	TotalEntries    int64 `json:"totalEntries"`
	TotalQuantity   int64 `json:"totalQuantity"`
	AcceptedEntries int64 `json:"acceptedEntries"`
	RejectedEntries int64 `json:"rejectedEntries"`
	PendingEntries  int64 `json:"pendingEntries"`
}

type EntryStats struct {
	Overview           EntryOverview `json:"overview"`
	EntryTypeBreakdown []Breakdown   `json:"entryTypeBreakdown"`
	MonthlyStats       []MonthlyStat `json:"monthlyStats"`
}

func countByStatus(db *gorm.DB, model any, owner uint) (statusTotals, error) {
	var t statusTotals
	err := db.Model(model).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(quantity_supplied), 0) AS total_quantity,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS accepted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending`,
			models.StatusAccepted, models.StatusRejected, models.StatusPending).
		Where("created_by = ?", owner).
		Scan(&t).Error
	return t, err
}

type breakdownRow struct {
	GroupKey      string
	Count         int64
	TotalQuantity int64
}

// breakdownBy groups the owner's rows by column, largest groups first.
func breakdownBy(db *gorm.DB, model any, column string, owner uint) ([]Breakdown, error) {
	var rows []breakdownRow
	err := db.Model(model).
		Select(column+" AS group_key, COUNT(*) AS count, COALESCE(SUM(quantity_supplied), 0) AS total_quantity").
		Where("created_by = ?", owner).
		Group(column).
		Order("COUNT(*) DESC").Order(column + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Breakdown, 0, len(rows))
	for _, r := range rows {
		out = append(out, Breakdown{ID: r.GroupKey, Count: r.Count, TotalQuantity: r.TotalQuantity})
	}
	return out, nil
}

type monthlyRow struct {
	CreatedAt        time.Time
	QuantitySupplied int64
}

// monthlyEntries buckets the owner's entries by UTC creation month, newest month first.
func monthlyEntries(db *gorm.DB, owner uint) ([]MonthlyStat, error) {
	var rows []monthlyRow
	err := db.Model(&models.Entry{}).
		Select("created_at, quantity_supplied").
		Where("created_by = ?", owner).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return reduceMonthly(rows), nil
}

func reduceMonthly(rows []monthlyRow) []MonthlyStat {
	buckets := make(map[Month]*MonthlyStat)
	for _, r := range rows {
		at := r.CreatedAt.UTC()
		key := Month{Year: at.Year(), Month: int(at.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyStat{ID: key}
			buckets[key] = b
		}
		b.Count++
		b.TotalQuantity += r.QuantitySupplied
	}

	out := make([]MonthlyStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID.Year != out[j].ID.Year {
			return out[i].ID.Year > out[j].ID.Year
		}
		return out[i].ID.Month > out[j].ID.Month
	})
	if len(out) > monthlyStatsLimit {
		out = out[:monthlyStatsLimit]
	}
	return out
}

func (s *ProductService) Stats(ctx context.Context, p auth.Principal) (*ProductStats, error) {
	db := s.db.WithContext(ctx)
	t, err := countByStatus(db, &models.Product{}, p.UserID)
	if err != nil {
		return nil, httpx.Internal("Error fetching product statistics", err)
	}
	breakdown, err := breakdownBy(db, &models.Product{}, "item_type", p.UserID)
	if err != nil {
		return nil, httpx.Internal("Error fetching product statistics", err)
	}
	return &ProductStats{
		Overview: ProductOverview{
			TotalProducts:    t.Total,
			TotalQuantity:    t.TotalQuantity,
			AcceptedProducts: t.Accepted,
			RejectedProducts: t.Rejected,
			PendingProducts:  t.Pending,
		},
		ItemTypeBreakdown: breakdown,
	}, nil
}
