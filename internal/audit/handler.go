package audit

import (
	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?page&limit&entity_type
func ListAuditLogsHandler(rec *Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		page := httpx.PageFromQuery(c)
		logs, total, err := rec.List(c.UserContext(), p.UserID, ListFilter{
			EntityType: c.Query("entity_type"),
			Page:       page,
		})
		if err != nil {
			return httpx.Internal("Error fetching audit logs", err)
		}
		return c.JSON(fiber.Map{
			"logs":        logs,
			"totalPages":  page.TotalPages(total),
			"currentPage": page.Page,
			"total":       total,
		})
	}
}
