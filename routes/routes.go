package routes

import (
	"menu-app/config"
	"menu-app/controllers"
	"menu-app/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Menus  *controllers.MenuController
	Items  *controllers.MenuItemController
	Health *controllers.HealthController
}

// NewApp wires middleware and every route of the menu API.
func NewApp(cfg *config.Config, log logrus.FieldLogger, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "menu-app",
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	config.SetupCORS(app, cfg.AllowedOrigins)

	app.Get("/health", h.Health.Health)
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group(cfg.MainRoutes)
	api.Get("/health", h.Health.Health)
	SetupMenuRoutes(api, h.Menus)
	SetupMenuItemRoutes(api, h.Items)

	return app
}
