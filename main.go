package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"routeerp_go/config"
	"routeerp_go/database"
	"routeerp_go/database/seeders"
	"routeerp_go/middleware"
	"routeerp_go/routes"
	"routeerp_go/services"
	"routeerp_go/services/websocket"
	"routeerp_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Initialize logging
	setupLogging(cfg)

	// Connect to database and Redis
	database.Connect()
	defer database.Close()

	if err := seeders.SeedUsers(database.DB); err != nil {
		logrus.WithError(err).Fatal("Failed to seed demo users")
	}
	if cfg.SeedDemoData {
		if err := seeders.SeedAll(database.DB); err != nil {
			logrus.WithError(err).Error("Failed to seed demo data")
		}
	}

	// Sessions live in Redis when it is reachable, in memory otherwise
	var (
		sessionStore storage.SessionStore
		purger       services.ExpiredSessionPurger
	)
	redisClient := database.GetRedisClient()
	if redisClient != nil {
		sessionStore = storage.NewRedisSessionStore(redisClient)
	} else {
		memoryStore := storage.NewMemorySessionStore()
		sessionStore = memoryStore
		purger = memoryStore
	}

	// Create WebSocket hub first
	wsHub := websocket.NewHub()
	go wsHub.Run()
	defer wsHub.Close()

	var archiver services.ReportArchiver
	if cfg.S3Enabled() {
		storageService, err := storage.NewStorageService()
		if err != nil {
			logrus.WithError(err).Warn("Report archive disabled")
		} else {
			archiver = storageService
		}
	}

	svc := buildServices(cfg, sessionStore, wsHub, archiver)

	scheduleManager := services.NewScheduleManager(svc.Logs, purger, cfg.ActivityLogRetentionDays)
	if err := scheduleManager.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start schedule manager")
	}
	defer scheduleManager.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		AppName:      "Route Academy ERP API",
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Custom middleware
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware(svc.Logs))

	routes.SetupRoutes(app, svc)
	routes.SetupNotFound(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.AppEnv,
		"db_driver":   cfg.DBDriver,
		"redis":       redisClient != nil,
	}).Info("Server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}

	// Flush whatever the audit queue still holds before the deferred closes run
	scheduleManager.FlushActivityLogs()
}

func buildServices(cfg *config.Config, sessions storage.SessionStore, hub *websocket.Hub, archiver services.ReportArchiver) *routes.Services {
	db := database.DB
	auth := services.NewAuthService(db, sessions, cfg.JWTExpiresIn)
	excuses := services.NewExcuseService(db, hub)
	hr := services.NewHRService(db)
	groups := services.NewGroupService(db)
	calendar := services.NewCalendarService(groups, services.NewNoteBook(), cfg.CalendarWeeks)

	return &routes.Services{
		Auth:       auth,
		Excuses:    excuses,
		HR:         hr,
		Groups:     groups,
		Calendar:   calendar,
		Exports:    services.NewExportService(hr, archiver),
		Dashboards: services.NewDashboardService(db, excuses, groups, calendar, hr),
		Logs:       services.NewActivityLogService(db, database.GetRedisClient()),
		Health:     services.NewHealthService("", "", db, database.GetRedisClient()),
		Hub:        hub,
	}
}

// setupLogging configures the logging system
func setupLogging(cfg *config.Config) {
	// Configure logrus
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.AppEnv == "development" {
		logrus.SetOutput(os.Stdout)
		return
	}

	// In production, log to file
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		logrus.WithError(err).Warn("Could not create logs directory, logging to stdout")
		return
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		logrus.WithError(err).Warn("Could not open log file, logging to stdout")
		return
	}
	logrus.SetOutput(file)
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log the error
	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	// Send error response
	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
