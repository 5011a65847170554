package routes

import (
	"menu-app/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupMenuItemRoutes(router fiber.Router, itemController *controllers.MenuItemController) {
	api := router.Group("/menu-items")

	api.Get("/", itemController.GetMenuItems)
	api.Post("/", itemController.CreateMenuItem)
	api.Get("/hierarchy/:menuId", itemController.GetMenuItemHierarchy)
	api.Patch("/reorder/:menuId", itemController.ReorderMenuItems)
	api.Get("/:id", itemController.GetMenuItemByID)
	api.Patch("/:id", itemController.UpdateMenuItem)
	api.Delete("/:id", itemController.DeleteMenuItem)
}
