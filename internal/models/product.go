package models

import "time"

// InspectionStatus is shared by products and entries.
type InspectionStatus string

const (
	StatusAccepted InspectionStatus = "Accepted"
	StatusRejected InspectionStatus = "Rejected"
	StatusPending  InspectionStatus = "Pending"
)

// Product is a registered inventory lot. LotNumber is unique across all owners.
type Product struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	LotNumber            string           `gorm:"size:100;uniqueIndex;not null" json:"lot_number"`
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
	CreatedBy            uint             `gorm:"index;not null" json:"created_by"`
	Creator              *User            `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt            time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
