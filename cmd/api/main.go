package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/api/handlers"
	"github.com/bidflow/backend/internal/cache/redis"
	"github.com/bidflow/backend/internal/engine"
	"github.com/bidflow/backend/internal/metrics"
	"github.com/bidflow/backend/internal/middleware/ratelimit"
	"github.com/bidflow/backend/internal/middleware/security"
	"github.com/bidflow/backend/internal/middleware/validation"
	"github.com/bidflow/backend/internal/prediction"
	"github.com/bidflow/backend/internal/storage/sqlite"
	"github.com/bidflow/backend/pkg/config"
	appLogger "github.com/bidflow/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting bid prediction API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err = sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without prediction cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	eng := engine.New(engineConfig(cfg))
	service := prediction.NewService(eng, sqliteClient, cacheClient)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimit,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.Log}))

	predictionHandler := handlers.NewPredictionHandler(service)
	assessmentHandler := handlers.NewAssessmentHandler(service)
	deliveryHandler := handlers.NewDeliveryHandler(service)
	streamHandler := handlers.NewStreamHandler(service, cfg.Engine.StreamWorkers)

	api := app.Group("/api/v1")

	api.Post("/predictions", predictionHandler.HandlePredict)
	api.Get("/predictions/history", predictionHandler.HandleHistory)
	api.Post("/assessments", assessmentHandler.HandleRecord)
	api.Post("/deliveries", deliveryHandler.HandleRecord)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/predictions", websocket.New(streamHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

// engineConfig overlays the tunables exposed through configuration onto the
// engine defaults.
func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()
	if cfg.Engine.PassThreshold > 0 {
		ec.PassThreshold = cfg.Engine.PassThreshold
	}
	if cfg.Engine.QualPassRate > 0 {
		ec.QualPassRate = cfg.Engine.QualPassRate
	}
	if cfg.Engine.CeilingRatio > 0 {
		ec.CeilingRatio = cfg.Engine.CeilingRatio
	}
	if cfg.Engine.LookbackYears > 0 {
		ec.LookbackYears = cfg.Engine.LookbackYears
	}
	if cfg.Engine.SampleWindow > 0 {
		ec.SampleWindow = cfg.Engine.SampleWindow
	}
	if cfg.Engine.UrgencyFactor > 0 {
		ec.UrgencyMultiplier = cfg.Engine.UrgencyFactor
	}
	if cfg.Engine.MaxProbability > 0 {
		ec.MaxWinProbability = cfg.Engine.MaxProbability
	}
	return ec
}
