package models

import "time"

type EntryType string

const (
	EntryNewSupply   EntryType = "New_Supply"
	EntryReplacement EntryType = "Replacement"
	EntryMaintenance EntryType = "Maintenance"
	EntryInspection  EntryType = "Inspection"
)

// Entry: a dated supply/inspection/maintenance event, optionally tied to a product.
type Entry struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	ProductID            *uint            `gorm:"index" json:"product_id"`
	Product              *Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
	LotNumber            string           `gorm:"size:100;index;not null" json:"lot_number"`
	ItemType             string           `gorm:"size:100;index;not null" json:"item_type"`
	VendorName           string           `gorm:"size:150;not null" json:"vendor_name"`
	VendorID             string           `gorm:"size:100;index;not null" json:"vendor_id"`
	DateOfSupply         time.Time        `gorm:"not null" json:"date_of_supply"`
	WarrantyPeriodMonths int              `gorm:"not null" json:"warranty_period_months"`
	QuantitySupplied     int              `gorm:"not null" json:"quantity_supplied"`
	InspectionDate       time.Time        `gorm:"not null" json:"inspection_date"`
	InspectedBy          string           `gorm:"size:100;not null" json:"inspected_by"`
	Status               InspectionStatus `gorm:"size:20;index;not null;default:Accepted" json:"status"`
	Image                *string          `gorm:"size:1024" json:"image"`
	EntryType            EntryType        `gorm:"size:20;index;not null;default:New_Supply" json:"entry_type"`
	Notes                string           `gorm:"size:500" json:"notes"`
	CreatedBy            uint             `gorm:"index;not null" json:"created_by"`
	Creator              *User            `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt            time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
