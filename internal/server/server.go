// Package server assembles the fiber application: middleware chain, routes and static pages.
package server

import (
	"io"
	"log/slog"
	"os"
	"time"

	"udm-portal/internal/admin"
	"udm-portal/internal/audit"
	"udm-portal/internal/auth"
	"udm-portal/internal/config"
	"udm-portal/internal/database"
	"udm-portal/internal/httpx"
	"udm-portal/internal/inventory"
	"udm-portal/internal/metrics"
	"udm-portal/internal/models"
	"udm-portal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *slog.Logger
	Revoker auth.Revoker
	Metrics *metrics.Metrics
	// Redis, when set, also holds the auth rate limiter counters.
	Redis *redis.Client
	// AccessLog receives one line per request; nil means stdout.
	AccessLog io.Writer
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Revoker == nil {
		d.Revoker = auth.NewDBRevoker(d.DB)
	}
	if d.AccessLog == nil {
		d.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:      "udm-portal",
		ErrorHandler: httpx.ErrorHandler(d.Log),
		BodyLimit:    1 << 20,
	})

	// metrics renders errors; recover sits inside it so panics are counted as 500s
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: d.AccessLog,
	}))
	app.Use(d.Metrics.Middleware())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", d.Metrics.Handler())

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authSvc := auth.NewService(d.DB, auth.NewPasswordHasher(cfg.BcryptCost), tokens, d.Revoker)
	authn := auth.NewAuthenticator(d.DB, tokens, d.Revoker, d.Log)
	recorder := audit.NewRecorder(d.DB, d.Log)
	products := inventory.NewProductService(d.DB, recorder)
	entries := inventory.NewEntryService(d.DB, recorder)
	users := admin.NewUserService(d.DB)

	api := app.Group("/api")
	api.Get("/health", HealthHandler(d.DB))

	// Public auth
	limiterCfg := limiter.Config{
		Max:        cfg.AuthRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(httpx.ErrorResponse{
				Message: "Too many requests, please try again later",
				Error:   "rate_limited",
			})
		},
	}
	if d.Redis != nil {
		limiterCfg.Storage = newRedisStorage(d.Redis, "udm:limiter:")
	}
	authLimiter := limiter.New(limiterCfg)
	api.Post("/auth/register", authLimiter, auth.RegisterHandler(authSvc))
	api.Post("/auth/login", authLimiter, auth.LoginHandler(authSvc))

	// Protected
	protected := api.Group("")
	protected.Use(authn.JWTMiddleware())

	protected.Get("/auth/me", auth.MeHandler(authSvc))
	protected.Post("/auth/logout", auth.LogoutHandler(authSvc))
	protected.Post("/auth/change-password", auth.ChangePasswordHandler(authSvc))

	// Products; fixed paths before /:id
	protected.Get("/products/stats/overview", inventory.ProductStatsHandler(products))
	protected.Get("/products/export", inventory.ExportProductsHandler(products))
	protected.Get("/products", inventory.ListProductsHandler(products))
	protected.Post("/products", inventory.CreateProductHandler(products))
	protected.Get("/products/:id", inventory.GetProductHandler(products))
	protected.Put("/products/:id", inventory.UpdateProductHandler(products))
	protected.Delete("/products/:id", inventory.DeleteProductHandler(products))

	// Entries
	protected.Get("/entries/stats/overview", inventory.EntryStatsHandler(entries))
	protected.Get("/entries/export", inventory.ExportEntriesHandler(entries))
	protected.Get("/entries/product/:productId", inventory.ListProductEntriesHandler(entries))
	protected.Get("/entries", inventory.ListEntriesHandler(entries))
	protected.Post("/entries", inventory.CreateEntryHandler(entries))
	protected.Get("/entries/:id", inventory.GetEntryHandler(entries))
	protected.Put("/entries/:id", inventory.UpdateEntryHandler(entries))
	protected.Delete("/entries/:id", inventory.DeleteEntryHandler(entries))

	protected.Get("/audit-logs", audit.ListAuditLogsHandler(recorder))

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/users", admin.ListUsersHandler(users))
	adminRoutes.Put("/users/:id/deactivate", admin.DeactivateUserHandler(users))
	adminRoutes.Put("/users/:id/activate", admin.ActivateUserHandler(users))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:  web.FS(),
		Index: "index.html",
	}))

	return app
}

// GET /api/health
func HealthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(c.UserContext(), db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success":   false,
				"status":    "degraded",
				"database":  "down",
				"timestamp": time.Now().UTC(),
			})
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"status":    "ok",
			"database":  "up",
			"timestamp": time.Now().UTC(),
		})
	}
}
