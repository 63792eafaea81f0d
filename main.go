package main

import (
	"os"
	"os/signal"
	"syscall"

	"go_procure_backend/bootstrap"
	"go_procure_backend/config"
	"go_procure_backend/middleware"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Logger.Warn("no .env file found, using environment as-is")
	}
	logging.Init()

	cfg := config.LoadConfig()

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		logging.Logger.Error("failed to bootstrap application", "error", err)
		os.Exit(1)
	}

	fiberApp := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxFileSize),
	})
	fiberApp.Use(middleware.Logger())
	fiberApp.Use(middleware.CORS())

	routes.RegisterProcurementRoutes(fiberApp, app.Handlers.ProcurementHandler)
	routes.SetupWebSocketRoutes(fiberApp, app.Handlers.WSHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logging.Logger.Info("shutting down")
		if err := fiberApp.Shutdown(); err != nil {
			logging.Logger.Error("server shutdown failed", "error", err)
		}
	}()

	port := cfg.HttpPort
	if port == "" {
		port = "8000"
	}
	logging.Logger.Info("server listening", "port", port)
	if err := fiberApp.Listen(":" + port); err != nil {
		logging.Logger.Error("server stopped", "error", err)
	}

	if err := app.Shutdown(); err != nil {
		logging.Logger.Error("cleanup failed", "error", err)
	}
}
