package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"handyman/catalog"
	"handyman/config"
	reviewControllers "handyman/controllers/review"
	"handyman/database"
	"handyman/middleware"
	reviewRoutes "handyman/routers/reviewRoutes"
	"handyman/store"
	"handyman/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	db, err := database.ConnectDb(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	created, err := database.SeedServices(ctx, db, cat)
	if err != nil {
		return fmt.Errorf("seed services: %w", err)
	}
	log.Info("services seeded", zap.Int("created", created))

	if cfg.PoolStatsSchedule != "" {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		scheduler, err := utils.InitializePoolScheduler(sqlDB, log, cfg.PoolStatsSchedule)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	app := newApp(cfg, db, cat, log)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server is running", zap.String("port", cfg.Port))
	return app.Listen(":" + cfg.Port)
}

// newApp builds the Fiber application: middleware, the review API and the
// static site.
func newApp(cfg *config.Config, db *gorm.DB, cat *catalog.Catalog, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "handyman",
		ErrorHandler:          middleware.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type,Accept-Language",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	handler := reviewControllers.NewHandler(store.New(db, log), cat, db, log)
	reviewRoutes.SetupReviewRoutes(app, handler)

	// Serve static files from the public folder
	app.Static("/", cfg.StaticDir)

	return app
}
