package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/reportdash/backend/internal/config"
	"github.com/reportdash/backend/internal/core/ports"
	"github.com/reportdash/backend/internal/core/services"
	"github.com/reportdash/backend/internal/infrastructure/db"
	"github.com/reportdash/backend/internal/infrastructure/logger"
	"github.com/reportdash/backend/internal/transport/http/handlers"
	httpmw "github.com/reportdash/backend/internal/transport/http/middleware"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
	Source ports.AlertSource
}

// Background holds the services that outlive a single request and need the
// caller's attention on startup and shutdown.
type Background struct {
	Cleanup *services.CleanupService
	Tasks   *services.TaskService
}

// SetupRoutes wires repositories, services and handlers onto app and returns
// the background services for the caller to run and drain.
func SetupRoutes(app *fiber.App, cfg RouterConfig) *Background {
	// Initialize repositories
	alertRepo := db.NewAlertRepository(cfg.DB, cfg.Logger)
	timelineRepo := db.NewTimelineRepository(cfg.DB, cfg.Logger)
	settingRepo := db.NewSystemSettingRepository(cfg.DB, cfg.Logger)

	// Initialize services
	cache := services.NewCache()

	taskService := services.NewTaskService(services.TaskServiceConfig{
		Timeline:  timelineRepo,
		Logger:    cfg.Logger,
		Retention: cfg.Config.Tasks.Retention,
		Timeout:   cfg.Config.Tasks.Timeout,
	})

	statisticsService := services.NewStatisticsService(services.StatisticsServiceConfig{
		Repository: alertRepo,
		Cache:      cache,
		TTL:        cfg.Config.Cache.StatisticsTTL,
		Logger:     cfg.Logger,
	})

	importService := services.NewImportService(services.ImportServiceConfig{
		Tasks:      taskService,
		Source:     cfg.Source,
		Repository: alertRepo,
		Statistics: statisticsService,
		Logger:     cfg.Logger,
	})

	cacheService := services.NewCacheService(services.CacheServiceConfig{
		Cache:    cache,
		Settings: settingRepo,
		Timeline: timelineRepo,
		Logger:   cfg.Logger,
	})

	cleanupService := services.NewCleanupService(services.CleanupServiceConfig{
		Timeline:  timelineRepo,
		Tasks:     taskService,
		Logger:    cfg.Logger,
		Interval:  cfg.Config.Tasks.CleanupInterval,
		Retention: cfg.Config.Tasks.HistoryRetention,
	})

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(importService, taskService, cfg.Logger)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService, cfg.Logger)
	cacheHandler := handlers.NewCacheHandler(cacheService, cfg.Logger)
	timelineHandler := handlers.NewTimelineHandler(timelineRepo)
	taskStreamHandler := handlers.NewTaskStreamHandler(taskService, cfg.Logger, 0)
	healthHandler := handlers.NewHealthHandler(alertRepo, cfg.Logger)

	adminAuth := httpmw.AdminAuth(cfg.Config)

	app.Get("/health", healthHandler.Check)

	// Dashboard routes
	app.Post("/run_long_task", adminAuth, taskHandler.RunLongTask)
	app.Get("/check_task_status", taskHandler.CheckTaskStatus)
	app.Get("/refresh_cache", adminAuth, cacheHandler.RefreshCache)
	app.Post("/refresh_cache", adminAuth, cacheHandler.RefreshCache)
	app.Get("/show_statistics", statisticsHandler.ShowStatistics)

	// Task progress stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/tasks/:id", websocket.New(taskStreamHandler.Handle))

	// API v1 routes
	api := app.Group("/api/v1")

	tasks := api.Group("/tasks", adminAuth)
	tasks.Get("/:id", taskHandler.GetTask)

	timeline := api.Group("/timeline", adminAuth)
	timeline.Get("/", timelineHandler.GetEvents)

	return &Background{Cleanup: cleanupService, Tasks: taskService}
}
