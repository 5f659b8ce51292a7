package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/FinWiseHQ/FinWise/app/repository"
	"github.com/FinWiseHQ/FinWise/internal/pkg/cache"
	"github.com/FinWiseHQ/FinWise/internal/pkg/database"
	"github.com/FinWiseHQ/FinWise/internal/pkg/env"
	"github.com/FinWiseHQ/FinWise/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitGlobalFactory(database.GetDB())

	// Webhook payloads are capped at 1 MiB by the handler itself; the
	// server limit stays above that so oversized bodies reach the
	// handler and get a 413 instead of a connection reset.
	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
