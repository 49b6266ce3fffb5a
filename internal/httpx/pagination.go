package httpx

import (
	"math"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Limit)))
}

// PageFromQuery reads ?page&limit, falling back to defaults for missing or non-positive values.
func PageFromQuery(c *fiber.Ctx) Page {
	page := c.QueryInt("page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	limit := c.QueryInt("limit", DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}
