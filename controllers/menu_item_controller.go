package controllers

import (
	"menu-app/services"
	"menu-app/types"

	"github.com/gofiber/fiber/v2"
)

type MenuItemController struct {
	Items *services.MenuItemService
}

func NewMenuItemController(items *services.MenuItemService) *MenuItemController {
	return &MenuItemController{Items: items}
}

// A client supplied order is not accepted on create; the position is always
// the end of the sibling group.
type menuItemInput struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"max=1024"`
	URL         string             `json:"url" validate:"max=1024"`
	Icon        string             `json:"icon" validate:"max=255"`
	ParentID    *types.SnowflakeID `json:"parentId"`
	MenuID      types.SnowflakeID  `json:"menuId" validate:"required"`
}

type menuItemPatchInput struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=1024"`
	URL         *string          `json:"url" validate:"omitempty,max=1024"`
	Icon        *string          `json:"icon" validate:"omitempty,max=255"`
	Order       *int             `json:"order" validate:"omitempty,min=0"`
	IsActive    *bool            `json:"isActive"`
	ParentID    types.NullableID `json:"parentId"`
}

type reorderInput struct {
	ItemIDs []types.SnowflakeID `json:"itemIds" validate:"required,min=1"`
}

func (ic *MenuItemController) CreateMenuItem(ctx *fiber.Ctx) error {
	var input menuItemInput
	if err := bindJSON(ctx, &input); err != nil {
		return err
	}

	item, err := ic.Items.CreateMenuItem(ctx.UserContext(), services.CreateMenuItemInput{
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		Icon:        input.Icon,
		ParentID:    input.ParentID,
		MenuID:      input.MenuID,
	})
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusCreated, "Menu item created successfully", item)
}

// GetMenuItems lists items flat, optionally filtered by ?menuId=.
func (ic *MenuItemController) GetMenuItems(ctx *fiber.Ctx) error {
	var menuID *types.SnowflakeID
	if raw := ctx.Query("menuId"); raw != "" {
		id, err := types.ParseSnowflakeID(raw)
		if err != nil {
			return services.InvalidArgument("invalid menuId: %v", err)
		}
		menuID = &id
	}

	items, err := ic.Items.ListMenuItems(ctx.UserContext(), menuID)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu items retrieved successfully", items)
}

func (ic *MenuItemController) GetMenuItemHierarchy(ctx *fiber.Ctx) error {
	menuID, err := paramID(ctx, "menuId")
	if err != nil {
		return err
	}
	forest, err := ic.Items.GetMenuItemHierarchy(ctx.UserContext(), menuID)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu item hierarchy retrieved successfully", forest)
}

func (ic *MenuItemController) GetMenuItemByID(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	item, err := ic.Items.GetMenuItem(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu item retrieved successfully", item)
}

func (ic *MenuItemController) UpdateMenuItem(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var input menuItemPatchInput
	if err := bindJSON(ctx, &input); err != nil {
		return err
	}

	item, err := ic.Items.UpdateMenuItem(ctx.UserContext(), id, services.MenuItemPatch{
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		Icon:        input.Icon,
		Order:       input.Order,
		IsActive:    input.IsActive,
		ParentID:    input.ParentID,
	})
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu item updated successfully", item)
}

func (ic *MenuItemController) ReorderMenuItems(ctx *fiber.Ctx) error {
	menuID, err := paramID(ctx, "menuId")
	if err != nil {
		return err
	}
	var input reorderInput
	if err := bindJSON(ctx, &input); err != nil {
		return err
	}

	items, err := ic.Items.ReorderMenuItems(ctx.UserContext(), menuID, input.ItemIDs)
	if err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu items reordered successfully", items)
}

func (ic *MenuItemController) DeleteMenuItem(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := ic.Items.DeleteMenuItem(ctx.UserContext(), id); err != nil {
		return err
	}
	return respond(ctx, fiber.StatusOK, "Menu item deleted successfully", nil)
}
