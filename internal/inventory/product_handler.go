package inventory

import (
	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// paramID reads a positive numeric route param; anything else cannot name a record.
func paramID(c *fiber.Ctx, name, notFound string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, httpx.NotFound(notFound)
	}
	return uint(id), nil
}

func productFilterFromQuery(c *fiber.Ctx) ProductFilter {
	return ProductFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		ItemType: c.Query("item_type"),
		Page:     httpx.PageFromQuery(c),
	}
}

// GET /api/products?page&limit&search&status&item_type
func ListProductsHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		f := productFilterFromQuery(c)
		products, total, err := svc.List(c.UserContext(), p, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"products":    productResponses(products),
			"totalPages":  f.Page.TotalPages(total),
			"currentPage": f.Page.Page,
			"total":       total,
		})
	}
}

// GET /api/products/:id
func GetProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgProductNotFound)
		if err != nil {
			return err
		}
		product, err := svc.Get(c.UserContext(), p, id)
		if err != nil {
			return err
		}
		return c.JSON(NewProductResponse(product))
	}
}

// POST /api/products
func CreateProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body SupplyInput
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		product, err := svc.Create(c.UserContext(), p, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Product created successfully",
			"product": NewProductResponse(product),
		})
	}
}

// PUT /api/products/:id
func UpdateProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgProductNotFound)
		if err != nil {
			return err
		}
		var body SupplyUpdate
		if err := c.BodyParser(&body); err != nil {
			return httpx.Validation("Invalid request body")
		}
		product, err := svc.Update(c.UserContext(), p, id, body)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Product updated successfully",
			"product": NewProductResponse(product),
		})
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := paramID(c, "id", msgProductNotFound)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Product deleted successfully"})
	}
}

// GET /api/products/stats/overview
func ProductStatsHandler(svc *ProductService) fiber.Handler {
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

// GET /api/products/export
func ExportProductsHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		products, err := svc.All(c.UserContext(), p, productFilterFromQuery(c))
		if err != nil {
			return err
		}
		book, err := productWorkbook(products)
		if err != nil {
			return httpx.Internal("Error exporting products", err)
		}
		return sendWorkbook(c, "products.xlsx", book)
	}
}
