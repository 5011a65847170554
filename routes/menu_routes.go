package routes

import (
	"menu-app/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupMenuRoutes(router fiber.Router, menuController *controllers.MenuController) {
	api := router.Group("/menus")

	api.Get("/", menuController.GetMenus)
	api.Post("/", menuController.CreateMenu)
	api.Get("/:id/hierarchy", menuController.GetMenuHierarchy)
	api.Get("/:id", menuController.GetMenuByID)
	api.Patch("/:id", menuController.UpdateMenu)
	api.Delete("/:id", menuController.DeleteMenu)
}
