package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/middleware"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/routes"
	"github.com/cjnghn/drone-topview-analysis/pkg/di"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

// @title Drone Topview Analysis API
// @version 1.0
// @description Ingestion and query API for drone top-view video analytics
// @BasePath /api/v1

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
// @description Admin token for log access

func main() {
	container := di.NewContainer()

	if err := container.Initialize(); err != nil {
		logger.StartupError("container_init_failed", "Failed to initialize container", err, nil)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      container.GetConfig().App.Name,
	})

	setupGracefulShutdown(app, container)

	app.Use(middleware.RequestLogger(container.Metrics))
	app.Use(middleware.CorsMiddleware(&container.GetConfig().CORS))

	h := handlers.NewHandlers(container.GetHandlerServices(), container.GetHandlerInfrastructure(), container.GetConfig())
	routes.SetupRoutes(app, h, container.GetConfig(), container.Metrics)

	port := container.GetConfig().App.Port
	logger.Startup("server_starting", "Server starting", map[string]interface{}{
		"port":        port,
		"environment": container.GetConfig().App.Env,
		"health":      fmt.Sprintf("http://localhost:%s/health", port),
		"api":         fmt.Sprintf("http://localhost:%s/api/v1", port),
		"metrics":     fmt.Sprintf("http://localhost:%s/metrics", port),
		"websocket":   fmt.Sprintf("ws://localhost:%s/ws?room=<job id>", port),
		"logs_api":    fmt.Sprintf("http://localhost:%s/api/v1/admin/logs", port),
	})

	if err := app.Listen(":" + port); err != nil {
		logger.StartupError("server_failed", "Server failed to start", err, nil)
		os.Exit(1)
	}
}

func setupGracefulShutdown(app *fiber.App, container *di.Container) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Startup("shutdown_started", "Gracefully shutting down", nil)

		if err := app.Shutdown(); err != nil {
			logger.StartupError("server_shutdown_failed", "Error shutting down server", err, nil)
		}

		if err := container.Cleanup(); err != nil {
			logger.StartupError("cleanup_failed", "Error during cleanup", err, nil)
		}

		logger.Startup("shutdown_complete", "Shutdown complete", nil)
		os.Exit(0)
	}()
}
