package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/htetaung/storefront-backend/internal/cart"
	"github.com/htetaung/storefront-backend/internal/catalog"
	"github.com/htetaung/storefront-backend/internal/config"
	"github.com/htetaung/storefront-backend/internal/database"
	"github.com/htetaung/storefront-backend/internal/inventory"
	"github.com/htetaung/storefront-backend/internal/logger"
	"github.com/htetaung/storefront-backend/internal/metrics"
	"github.com/htetaung/storefront-backend/internal/order"
	"github.com/htetaung/storefront-backend/internal/user"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(&cfg.Log); err != nil {
		panic(err)
	}
	log := logger.Get()
	defer log.Sync()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		log.Fatal("schema setup failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logger.Middleware())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, cfg.JWT.Secret, cfg.JWT.TTL)

	catalogRepo := catalog.NewPostgresRepository(db)
	catalogHandler := catalog.NewHandler(catalog.NewService(catalogRepo))

	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db), catalogRepo))
	orderHandler := order.NewHandler(order.NewService(order.NewPostgresStore(db)))
	inventoryHandler := inventory.NewHandler(inventory.NewService(inventory.NewPostgresRepository(db)))

	// public routes go in before the JWT middleware
	userHandler.RegisterPublicRoutes(app)
	catalogHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWT.Secret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	inventoryHandler.RegisterStaffRoutes(app)
	catalogHandler.RegisterStaffRoutes(app)

	log.Info("server starting", zap.String("addr", cfg.Server.Addr))
	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
