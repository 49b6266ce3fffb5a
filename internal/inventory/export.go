package inventory

import (
	"bytes"
	"fmt"

	"udm-portal/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var supplyHeaders = []any{
	"Lot Number", "Item Type", "Vendor Name", "Vendor ID", "Date of Supply",
	"Warranty (months)", "Quantity", "Inspection Date", "Inspected By", "Status",
}

func supplyCells(lot, itemType, vendor, vendorID string, supplied, inspected string,
	warranty, qty int, inspectedBy string, status models.InspectionStatus) []any {
	return []any{lot, itemType, vendor, vendorID, supplied, warranty, qty, inspected, inspectedBy, string(status)}
}

func productWorkbook(products []models.Product) (*bytes.Buffer, error) {
	header := append([]any{"ID"}, supplyHeaders...)
	header = append(header, "Created At")

	rows := make([][]any, 0, len(products))
	for _, p := range products {
		row := append([]any{p.ID}, supplyCells(p.LotNumber, p.ItemType, p.VendorName, p.VendorID,
			day(p.DateOfSupply), day(p.InspectionDate), p.WarrantyPeriodMonths, p.QuantitySupplied,
			p.InspectedBy, p.Status)...)
		row = append(row, p.CreatedAt.UTC().Format("2006-01-02 15:04"))
		rows = append(rows, row)
	}
	return writeSheet("Products", header, rows)
}

func entryWorkbook(entries []models.Entry) (*bytes.Buffer, error) {
	header := append([]any{"ID", "Entry Type", "Product Lot"}, supplyHeaders...)
	header = append(header, "Notes", "Created At")

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		productLot := ""
		if e.Product != nil {
			productLot = e.Product.LotNumber
		}
		row := append([]any{e.ID, string(e.EntryType), productLot}, supplyCells(e.LotNumber, e.ItemType,
			e.VendorName, e.VendorID, day(e.DateOfSupply), day(e.InspectionDate), e.WarrantyPeriodMonths,
			e.QuantitySupplied, e.InspectedBy, e.Status)...)
		row = append(row, e.Notes, e.CreatedAt.UTC().Format("2006-01-02 15:04"))
		rows = append(rows, row)
	}
	return writeSheet("Entries", header, rows)
}

func writeSheet(name string, header []any, rows [][]any) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(name, "A", last, 18); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

func sendWorkbook(c *fiber.Ctx, filename string, book *bytes.Buffer) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(book.Bytes())
}
