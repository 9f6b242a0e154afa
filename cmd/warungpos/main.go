package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"warungpos/internal/config"
	"warungpos/internal/http/handlers"
	applog "warungpos/internal/log"
	"warungpos/internal/services"
	"warungpos/internal/store"
)

func main() {
	cfg := config.Load(os.Args[1:])

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if cfg.Seed {
		if err := store.SeedDemo(context.Background(), st); err != nil {
			log.Fatal(err)
		}
	}

	authSvc := services.NewAuthService(st)
	sessions := services.NewSessionManager(st)
	stopSessions := sessions.Bind(context.Background(), authSvc)
	defer stopSessions()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	deps := handlers.NewDeps(st, authSvc, sessions)
	requireUser := handlers.RequireUser(authSvc, sessions)

	api := app.Group("/api/v1")

	// Auth (login throttled)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many attempts, try again later",
			})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)

	// Catalog
	api.Get("/products", requireUser, deps.ProductHandler.List)
	api.Post("/products", requireUser, deps.ProductHandler.Add)
	api.Get("/products/:id", requireUser, deps.ProductHandler.Get)
	api.Put("/products/:id", requireUser, deps.ProductHandler.Update)
	api.Delete("/products/:id", requireUser, deps.ProductHandler.Delete)

	// Cart
	api.Get("/cart", requireUser, deps.CartHandler.View)
	api.Post("/cart/items", requireUser, deps.CartHandler.Add)
	api.Post("/cart/items/:id/increase", requireUser, deps.CartHandler.Increase)
	api.Post("/cart/items/:id/decrease", requireUser, deps.CartHandler.Decrease)
	api.Delete("/cart/items/:id", requireUser, deps.CartHandler.Remove)
	api.Delete("/cart", requireUser, deps.CartHandler.Clear)

	// Checkout, history, rollback, export
	api.Post("/checkout", requireUser, deps.CheckoutHandler.Place)
	api.Get("/transactions", requireUser, deps.TransactionHandler.History)
	api.Delete("/transactions/:id", requireUser, deps.TransactionHandler.Cancel)
	api.Get("/transactions/export.csv", requireUser, deps.TransactionHandler.ExportCSV)

	// Reports
	api.Get("/report", requireUser, deps.ReportHandler.Generate)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Backend == "memory" {
		return store.OpenMem()
	}
	return store.OpenSQLite(cfg.DBDSN)
}
