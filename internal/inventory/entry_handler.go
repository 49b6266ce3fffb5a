package inventory

import (
	"strconv"
	"strings"

	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// entryFilterFromQuery rejects a product_id that cannot name a product instead of ignoring it.
func entryFilterFromQuery(c *fiber.Ctx) (EntryFilter, error) {
	f := EntryFilter{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		ItemType:  c.Query("item_type"),
		EntryType: c.Query("entry_type"),
		Page:      httpx.PageFromQuery(c),
	}
	if raw := strings.TrimSpace(c.Query("product_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return f, httpx.Validation("product_id must be a positive integer")
		}
		f.ProductID = uint(id)
	}
	return f, nil
}

// GET /api/entries?page&limit&search&status&item_type&entry_type&product_id
func ListEntriesHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		f, err := entryFilterFromQuery(c)
		if err != nil {
			return err
		}
		entries, total, err := svc.List(c.UserContext(), p, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"entries":     entryResponses(entries),
			"totalPages":  f.Page.TotalPages(total),
			"currentPage": f.Page.Page,
			"total":       total,
		})
	}
}

// GET /api/entries/product/:productId
func ListProductEntriesHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		productID, err := paramID(c, "productId", msgProductNotFound)
		if err != nil {
			return err
		}
		page := httpx.PageFromQuery(c)
		product, entries, total, err := svc.ListByProduct(c.UserContext(), p, productID, page)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"entries":     entryResponses(entries),
			"product":     newProductSummary(product),
			"totalPages":  page.TotalPages(total),
			"currentPage": page.Page,
			"total":       total,
		})
	}
}

// GET /api/entries/:id
func GetEntryHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgEntryNotFound)
		if err != nil {
			return err
		}
		entry, err := svc.Get(c.UserContext(), p, id)
		if err != nil {
			return err
		}
		return c.JSON(NewEntryResponse(entry))
	}
}

// POST /api/entries
func CreateEntryHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body EntryInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		entry, err := svc.Create(c.UserContext(), p, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Entry created successfully",
			"entry":   NewEntryResponse(entry),
		})
	}
}

// PUT /api/entries/:id
func UpdateEntryHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgEntryNotFound)
		if err != nil {
			return err
		}
		var body EntryUpdate
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		entry, err := svc.Update(c.UserContext(), p, id, body)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Entry updated successfully",
			"entry":   NewEntryResponse(entry),
		})
	}
}

// DELETE /api/entries/:id
func DeleteEntryHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgEntryNotFound)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Entry deleted successfully"})
	}
}

// GET /api/entries/stats/overview
func EntryStatsHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		stats, err := svc.Stats(c.UserContext(), p)
		if err != nil {
			return err
		}
		return c.JSON(stats)
	}
}

// GET /api/entries/export
func ExportEntriesHandler(svc *EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		f, err := entryFilterFromQuery(c)
		if err != nil {
			return err
		}
		entries, err := svc.All(c.UserContext(), p, f)
		if err != nil {
			return err
		}
		book, err := entryWorkbook(entries)
		if err != nil {
			return httpx.Internal("Error exporting entries", err)
		}
		return sendWorkbook(c, "entries.xlsx", book)
	}
}
