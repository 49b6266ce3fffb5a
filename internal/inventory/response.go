package inventory

import (
	"time"

	"udm-portal/internal/models"
)

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProductSummary struct {
	ID        uint   `json:"id"`
	LotNumber string `json:"lot_number"`
	ItemType  string `json:"item_type"`
}

type ProductResponse struct {
	ID                   uint                    `json:"id"`
	LotNumber            string                  `json:"lot_number"`
	ItemType             string                  `json:"item_type"`
	VendorName           string                  `json:"vendor_name"`
	VendorID             string                  `json:"vendor_id"`
	DateOfSupply         time.Time               `json:"date_of_supply"`
	WarrantyPeriodMonths int                     `json:"warranty_period_months"`
	QuantitySupplied     int                     `json:"quantity_supplied"`
	InspectionDate       time.Time               `json:"inspection_date"`
	InspectedBy          string                  `json:"inspected_by"`
	Status               models.InspectionStatus `json:"status"`
	Image                *string                 `json:"image"`
	CreatedBy            *UserSummary            `json:"created_by"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

type EntryResponse struct {
	ID                   uint                    `json:"id"`
	Product              *ProductSummary         `json:"product_id"`
	LotNumber            string                  `json:"lot_number"`
	ItemType             string                  `json:"item_type"`
	VendorName           string                  `json:"vendor_name"`
	VendorID             string                  `json:"vendor_id"`
	DateOfSupply         time.Time               `json:"date_of_supply"`
	WarrantyPeriodMonths int                     `json:"warranty_period_months"`
	QuantitySupplied     int                     `json:"quantity_supplied"`
	InspectionDate       time.Time               `json:"inspection_date"`
	InspectedBy          string                  `json:"inspected_by"`
	Status               models.InspectionStatus `json:"status"`
	Image                *string                 `json:"image"`
	EntryType            models.EntryType        `json:"entry_type"`
	Notes                string                  `json:"notes"`
	CreatedBy            *UserSummary            `json:"created_by"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

func newUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

func newProductSummary(p *models.Product) *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{ID: p.ID, LotNumber: p.LotNumber, ItemType: p.ItemType}
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		LotNumber:            p.LotNumber,
		ItemType:             p.ItemType,
		VendorName:           p.VendorName,
		VendorID:             p.VendorID,
		DateOfSupply:         p.DateOfSupply,
		WarrantyPeriodMonths: p.WarrantyPeriodMonths,
		QuantitySupplied:     p.QuantitySupplied,
		InspectionDate:       p.InspectionDate,
		InspectedBy:          p.InspectedBy,
		Status:               p.Status,
		Image:                p.Image,
		CreatedBy:            newUserSummary(p.Creator),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func NewEntryResponse(e *models.Entry) EntryResponse {
	return EntryResponse{
		ID:                   e.ID,
		Product:              newProductSummary(e.Product),
		LotNumber:            e.LotNumber,
		ItemType:             e.ItemType,
		VendorName:           e.VendorName,
		VendorID:             e.VendorID,
		DateOfSupply:         e.DateOfSupply,
		WarrantyPeriodMonths: e.WarrantyPeriodMonths,
		QuantitySupplied:     e.QuantitySupplied,
		InspectionDate:       e.InspectionDate,
		InspectedBy:          e.InspectedBy,
		Status:               e.Status,
		Image:                e.Image,
		EntryType:            e.EntryType,
		Notes:                e.Notes,
		CreatedBy:            newUserSummary(e.Creator),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func productResponses(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, NewProductResponse(&ps[i]))
	}
	return out
}

func entryResponses(es []models.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(es))
	for i := range es {
		out = append(out, NewEntryResponse(&es[i]))
	}
	return out
}
