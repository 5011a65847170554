package controllers

import (
	"menu-app/services"

	"github.com/gofiber/fiber/v2"
)

type MenuController struct {
	Menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{Menus: menus}
}

type menuInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

type menuPatchInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
}

func (mc *MenuController) CreateMenu(ctx *fiber.Ctx) error {
	var input menuInput
	if err := bindJSON(ctx, &input); err != nil {
		return err
	}

	menu, err := mc.Menus.CreateMenu(ctx.UserContext(), services.CreateMenuInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, "Menu created successfully", menu)
}

// GetMenus lists every menu with two levels of items.
func (mc *MenuController) GetMenus(ctx *fiber.Ctx) error {
	menus, err := mc.Menus.ListMenus(ctx.UserContext())
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menus retrieved successfully", menus)
}

func (mc *MenuController) GetMenuByID(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	menu, err := mc.Menus.GetMenu(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu retrieved successfully", menu)
}

// GetMenuHierarchy accepts ?depth=N; zero or a missing value returns the full tree.
func (mc *MenuController) GetMenuHierarchy(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	depth := ctx.QueryInt("depth", 0)
	if depth < 0 {
		return services.InvalidArgument("depth must not be negative")
	}
	menu, err := mc.Menus.GetMenuHierarchy(ctx.UserContext(), id, depth)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu hierarchy retrieved successfully", menu)
}

func (mc *MenuController) UpdateMenu(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input menuPatchInput
	if err := bindJSON(ctx, &input); err != nil {
		return err
	}

	menu, err := mc.Menus.UpdateMenu(ctx.UserContext(), id, services.MenuPatch{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu updated successfully", menu)
}

func (mc *MenuController) DeleteMenu(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := mc.Menus.DeleteMenu(ctx.UserContext(), id); err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu deleted successfully", nil)
}
