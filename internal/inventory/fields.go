package inventory

import (
	"strings"
	"time"

	"udm-portal/internal/httpx"
	"udm-portal/internal/models"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// SupplyInput carries the supply/inspection block shared by products and entries.
type SupplyInput struct {
	LotNumber            string  `json:"lot_number" validate:"required,max=100"`
	ItemType             string  `json:"item_type" validate:"required,max=100"`
	VendorName           string  `json:"vendor_name" validate:"required,max=150"`
	VendorID             string  `json:"vendor_id" validate:"required,max=100"`
	DateOfSupply         string  `json:"date_of_supply" validate:"required"`
	WarrantyPeriodMonths int     `json:"warranty_period_months" validate:"required,min=1"`
	QuantitySupplied     int     `json:"quantity_supplied" validate:"required,min=1"`
	InspectionDate       string  `json:"inspection_date" validate:"required"`
	InspectedBy          string  `json:"inspected_by" validate:"required,max=100"`
	Status               string  `json:"status" validate:"omitempty,oneof=Accepted Rejected Pending"`
	Image                *string `json:"image" validate:"omitempty,max=1024"`
}

// SupplyUpdate is the partial form of SupplyInput; nil fields are left untouched.
type SupplyUpdate struct {
	LotNumber            *string `json:"lot_number" validate:"omitempty,min=1,max=100"`
	ItemType             *string `json:"item_type" validate:"omitempty,min=1,max=100"`
	VendorName           *string `json:"vendor_name" validate:"omitempty,min=1,max=150"`
	VendorID             *string `json:"vendor_id" validate:"omitempty,min=1,max=100"`
	DateOfSupply         *string `json:"date_of_supply" validate:"omitempty,min=1"`
	WarrantyPeriodMonths *int    `json:"warranty_period_months" validate:"omitempty,min=1"`
	QuantitySupplied     *int    `json:"quantity_supplied" validate:"omitempty,min=1"`
	InspectionDate       *string `json:"inspection_date" validate:"omitempty,min=1"`
	InspectedBy          *string `json:"inspected_by" validate:"omitempty,min=1,max=100"`
	Status               *string `json:"status" validate:"omitempty,oneof=Accepted Rejected Pending"`
	Image                *string `json:"image" validate:"omitempty,max=1024"`
}

// supplyTarget points at the supply fields of a Product or an Entry.
type supplyTarget struct {
	LotNumber            *string
	ItemType             *string
	VendorName           *string
	VendorID             *string
	DateOfSupply         *time.Time
	WarrantyPeriodMonths *int
	QuantitySupplied     *int
	InspectionDate       *time.Time
	InspectedBy          *string
	Status               *models.InspectionStatus
	Image                **string
}

func productTarget(p *models.Product) supplyTarget {
	return supplyTarget{
		LotNumber: &p.LotNumber, ItemType: &p.ItemType, VendorName: &p.VendorName, VendorID: &p.VendorID,
		DateOfSupply: &p.DateOfSupply, WarrantyPeriodMonths: &p.WarrantyPeriodMonths,
		QuantitySupplied: &p.QuantitySupplied, InspectionDate: &p.InspectionDate,
		InspectedBy: &p.InspectedBy, Status: &p.Status, Image: &p.Image,
	}
}

func entryTarget(e *models.Entry) supplyTarget {
	return supplyTarget{
		LotNumber: &e.LotNumber, ItemType: &e.ItemType, VendorName: &e.VendorName, VendorID: &e.VendorID,
		DateOfSupply: &e.DateOfSupply, WarrantyPeriodMonths: &e.WarrantyPeriodMonths,
		QuantitySupplied: &e.QuantitySupplied, InspectionDate: &e.InspectionDate,
		InspectedBy: &e.InspectedBy, Status: &e.Status, Image: &e.Image,
	}
}

func (in *SupplyInput) normalize() {
	in.LotNumber = strings.TrimSpace(in.LotNumber)
	in.ItemType = strings.TrimSpace(in.ItemType)
	in.VendorName = strings.TrimSpace(in.VendorName)
	in.VendorID = strings.TrimSpace(in.VendorID)
	in.DateOfSupply = strings.TrimSpace(in.DateOfSupply)
	in.InspectionDate = strings.TrimSpace(in.InspectionDate)
	in.InspectedBy = strings.TrimSpace(in.InspectedBy)
	in.Status = strings.TrimSpace(in.Status)
	in.Image = trimOptional(in.Image)
}

// apply writes validated input into t. Status defaults to Accepted.
func (in SupplyInput) apply(t supplyTarget) error {
	supplied, err := parseDate("date_of_supply", in.DateOfSupply)
	if err != nil {
		return err
	}
	inspected, err := parseDate("inspection_date", in.InspectionDate)
	if err != nil {
		return err
	}

	*t.LotNumber = in.LotNumber
	*t.ItemType = in.ItemType
	*t.VendorName = in.VendorName
	*t.VendorID = in.VendorID
	*t.DateOfSupply = supplied
	*t.WarrantyPeriodMonths = in.WarrantyPeriodMonths
	*t.QuantitySupplied = in.QuantitySupplied
	*t.InspectionDate = inspected
	*t.InspectedBy = in.InspectedBy
	*t.Status = models.StatusAccepted
	if in.Status != "" {
		*t.Status = models.InspectionStatus(in.Status)
	}
	*t.Image = in.Image
	return nil
}

func (u *SupplyUpdate) normalize() {
	for _, s := range []**string{&u.LotNumber, &u.ItemType, &u.VendorName, &u.VendorID,
		&u.DateOfSupply, &u.InspectionDate, &u.InspectedBy, &u.Status, &u.Image} {
		if *s != nil {
			v := strings.TrimSpace(**s)
			*s = &v
		}
	}
}

func (u SupplyUpdate) apply(t supplyTarget) error {
	if u.DateOfSupply != nil {
		d, err := parseDate("date_of_supply", *u.DateOfSupply)
		if err != nil {
			return err
		}
		*t.DateOfSupply = d
	}
	if u.InspectionDate != nil {
		d, err := parseDate("inspection_date", *u.InspectionDate)
		if err != nil {
			return err
		}
		*t.InspectionDate = d
	}
	setIf(t.LotNumber, u.LotNumber)
	setIf(t.ItemType, u.ItemType)
	setIf(t.VendorName, u.VendorName)
	setIf(t.VendorID, u.VendorID)
	setIf(t.WarrantyPeriodMonths, u.WarrantyPeriodMonths)
	setIf(t.QuantitySupplied, u.QuantitySupplied)
	setIf(t.InspectedBy, u.InspectedBy)
	if u.Status != nil {
		*t.Status = models.InspectionStatus(*u.Status)
	}
	if u.Image != nil {
		// an empty string clears the image
		if *u.Image == "" {
			*t.Image = nil
		} else {
			img := *u.Image
			*t.Image = &img
		}
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// parseDate accepts a plain calendar date or an RFC 3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, httpx.Validation(field + " must be a date (YYYY-MM-DD)")
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
