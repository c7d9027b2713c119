package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/smartcity/traffic-analytics/internal/config"
	"github.com/smartcity/traffic-analytics/internal/delivery/http"
	"github.com/smartcity/traffic-analytics/internal/logging"
	"github.com/smartcity/traffic-analytics/internal/repository/postgres"
	"github.com/smartcity/traffic-analytics/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if envErr != nil {
		logging.Info().Msg("No .env file found, using system environment")
	}

	dataRepo, closeRepo := connectRepository(cfg)
	defer closeRepo()

	// Dependency Injection: Services
	analyticsSvc := service.NewAnalyticsService(dataRepo, cfg.Analytics)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Traffic Analytics API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Analytics.Timeout + 5*time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency}) ${locals:requestid}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, analyticsSvc)

	// Graceful shutdown
	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logging.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}
	logging.Info().Msg("Server exited gracefully")
}

// connectRepository opens PostgreSQL, falling back to the in-memory demo
// data when the database is not configured or unreachable.
func connectRepository(cfg *config.Config) (service.DataRepository, func()) {
	noop := func() {}

	if cfg.DatabaseURL == "" {
		logging.Warn().Msg("DATABASE_URL not set, running with demo data only")
		return postgres.NewDemoRepository(time.Now()), noop
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		if cfg.IsProduction() {
			logging.Fatal().Err(err).Msg("Could not connect to database")
		}
		logging.Warn().Err(err).Msg("Could not connect to database, running with demo data only")
		return postgres.NewDemoRepository(time.Now()), noop
	}

	logging.Info().Msg("Connected to PostgreSQL")
	return postgres.NewPostgresRepository(pool), pool.Close
}
