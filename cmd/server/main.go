package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/VtlBz/foodgram-project/internal/database"
	"github.com/VtlBz/foodgram-project/internal/handlers"
	"github.com/VtlBz/foodgram-project/internal/logging"
	"github.com/VtlBz/foodgram-project/internal/middleware"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/storage"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	_ "github.com/VtlBz/foodgram-project/docs/api" // Swagger docs
)

// @title Foodgram API
// @version 1.0.0
// @description Recipe sharing service: recipes, favorites, shopping cart and subscriptions

// @contact.name API Support
// @contact.url https://github.com/VtlBz/foodgram-project

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization

const purgeInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to create image store: %v", err)
	}

	tokens, err := services.NewTokenService(cfg.SecretKey, cfg.TokenTTL, cfg.TokenIssuer)
	if err != nil {
		logrus.Fatalf("Failed to create token service: %v", err)
	}

	deps := handlers.Deps{Config: cfg, DB: db, Store: store, Tokens: tokens}
	app := handlers.NewApp(deps, func(app *fiber.App) {
		// Global middleware
		app.Use(recover.New())
		app.Use(middleware.RequestLogger())
		app.Use(compress.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
		if cfg.RateLimit > 0 {
			app.Use(limiter.New(limiter.Config{
				Max:        cfg.RateLimit,
				Expiration: time.Second,
				Next: func(c *fiber.Ctx) bool {
					return !strings.HasPrefix(c.Path(), "/api")
				},
			}))
		}

		// Prometheus metrics
		prometheus := fiberprometheus.New("foodgram")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)

		// Swagger documentation
		app.Get("/swagger/*", swagger.HandlerDefault)

		if cfg.StorageType == "local" {
			app.Static(cfg.MediaURL, cfg.MediaRoot)
		}
	})

	go purgeRevokedTokens(ctx, db)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logrus.Info("Gracefully shutting down...")
		stop()
		_ = app.Shutdown()
	}()

	logrus.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}

	logrus.Info("Server stopped")
}

// purgeRevokedTokens drops expired token revocations until ctx is done.
func purgeRevokedTokens(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := services.PurgeRevokedTokens(ctx, db, now)
			if err != nil {
				logrus.WithError(err).Warn("Failed to purge revoked tokens")
				continue
			}
			if n > 0 {
				logrus.WithField("purged", n).Debug("Purged revoked tokens")
			}
		}
	}
}
