package services

import (
	"context"
	"strings"

	"menu-app/models"
	"menu-app/types"

	"github.com/sirupsen/logrus"
)

type CreateMenuItemInput struct {
	Title       string
	Description string
	URL         string
	Icon        string
	ParentID    *types.SnowflakeID
	MenuID      types.SnowflakeID
}

// MenuItemPatch carries the fields of an update; nil pointers are left
// unchanged. ParentID distinguishes "absent" from an explicit null.
type MenuItemPatch struct {
	Title       *string
	Description *string
	URL         *string
	Icon        *string
	Order       *int
	IsActive    *bool
	ParentID    types.NullableID
}

type MenuItemService struct {
	repo      Repository
	validator *HierarchyValidator
	allocator *OrderAllocator
	trees     *treeReader
	log       logrus.FieldLogger
}

func NewMenuItemService(repo Repository, cache HierarchyCache, log logrus.FieldLogger) *MenuItemService {
	if cache == nil {
		cache = nopCache{}
	}
	return &MenuItemService{
		repo:      repo,
		validator: NewHierarchyValidator(repo),
		allocator: NewOrderAllocator(repo),
		trees:     &treeReader{repo: repo, cache: cache, log: log},
		log:       log,
	}
}

func (s *MenuItemService) CreateMenuItem(ctx context.Context, in CreateMenuItemInput) (*models.MenuItem, error) {
	fields := logrus.Fields{"menu_id": in.MenuID.String()}

	menu, err := s.repo.FindMenuByID(ctx, in.MenuID)
	if err != nil {
		return nil, s.trees.reject("create_item", Unavailable(err, "failed to load menu"), fields)
	}
	if menu == nil {
		return nil, s.trees.reject("create_item", NotFound("menu with ID %s not found", in.MenuID), fields)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, s.trees.reject("create_item", InvalidArgument("menu item title is required"), fields)
	}

	var parent *models.MenuItem
	if in.ParentID != nil {
		fields["parent_id"] = in.ParentID.String()
		if parent, err = s.validator.ValidateParent(ctx, in.MenuID, *in.ParentID, nil); err != nil {
			return nil, s.trees.reject("create_item", err, fields)
		}
	}

	order, err := s.allocator.NextOrder(ctx, in.MenuID, in.ParentID)
	if err != nil {
		return nil, s.trees.reject("create_item", err, fields)
	}

	item := &models.MenuItem{
		Title:       title,
		Description: in.Description,
		URL:         in.URL,
		Icon:        in.Icon,
		Order:       order,
		IsActive:    true,
		ParentID:    in.ParentID,
		MenuID:      in.MenuID,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return nil, s.trees.reject("create_item", Unavailable(err, "failed to create menu item"), fields)
	}
	s.trees.invalidate(ctx, in.MenuID)

	item.Parent = parent
	item.Children = []models.MenuItem{}
	recordMutation("create_item", nil)
	return item, nil
}

// ListMenuItems returns the flat item list of one menu, or of all menus when
// menuID is nil.
func (s *MenuItemService) ListMenuItems(ctx context.Context, menuID *types.SnowflakeID) ([]models.MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, Unavailable(err, "failed to list menu items")
	}
	return items, nil
}

// GetMenuItemHierarchy returns the full forest of a menu. An unknown menu
// yields an empty forest.
func (s *MenuItemService) GetMenuItemHierarchy(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	return s.trees.forest(ctx, menuID)
}

// GetMenuItem returns the item with its parent and direct children attached.
func (s *MenuItemService) GetMenuItem(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.ParentID != nil {
		parent, err := s.repo.FindMenuItemByID(ctx, *item.ParentID)
		if err != nil {
			return nil, Unavailable(err, "failed to load parent menu item")
		}
		item.Parent = parent
	}
	children, err := s.repo.FindChildren(ctx, id)
	if err != nil {
		return nil, Unavailable(err, "failed to load child menu items")
	}
	if children == nil {
		children = []models.MenuItem{}
	}
	item.Children = children
	return item, nil
}

func (s *MenuItemService) UpdateMenuItem(ctx context.Context, id types.SnowflakeID, patch MenuItemPatch) (*models.MenuItem, error) {
	fields := logrus.Fields{"item_id": id.String()}

	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, s.trees.reject("update_item", err, fields)
	}
	fields["menu_id"] = item.MenuID.String()

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, s.trees.reject("update_item", InvalidArgument("menu item title must not be empty"), fields)
	}
	if patch.Order != nil && *patch.Order < 0 {
		return nil, s.trees.reject("update_item", InvalidArgument("menu item order must not be negative"), fields)
	}

	parentChanged := false
	if patch.ParentID.Set {
		if patch.ParentID.Valid {
			fields["parent_id"] = patch.ParentID.ID.String()
			if _, err := s.validator.ValidateParent(ctx, item.MenuID, patch.ParentID.ID, &item.ID); err != nil {
				return nil, s.trees.reject("update_item", err, fields)
			}
		}
		parentChanged = !types.SameID(item.ParentID, patch.ParentID.Ptr())
		item.ParentID = patch.ParentID.Ptr()
	}

	if patch.Title != nil {
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.URL != nil {
		item.URL = *patch.URL
	}
	if patch.Icon != nil {
		item.Icon = *patch.Icon
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}
	switch {
	case patch.Order != nil:
		item.Order = *patch.Order
	case parentChanged:
		// Moved without an explicit position: append to the new sibling group.
		order, err := s.allocator.NextOrder(ctx, item.MenuID, item.ParentID)
		if err != nil {
			return nil, s.trees.reject("update_item", err, fields)
		}
		item.Order = order
	}

	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, s.trees.reject("update_item", Unavailable(err, "failed to update menu item"), fields)
	}
	s.trees.invalidate(ctx, item.MenuID)
	recordMutation("update_item", nil)

	return s.GetMenuItem(ctx, id)
}

// DeleteMenuItem removes a leaf item. Items with children are refused; their
// children have to be deleted first.
func (s *MenuItemService) DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error {
	fields := logrus.Fields{"item_id": id.String()}

	item, err := s.findItem(ctx, id)
	if err != nil {
		return s.trees.reject("delete_item", err, fields)
	}
	fields["menu_id"] = item.MenuID.String()

	count, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return s.trees.reject("delete_item", Unavailable(err, "failed to count child menu items"), fields)
	}
	if count > 0 {
		return s.trees.reject("delete_item", InvalidArgument("cannot delete menu item %s with children, delete children first", id), fields)
	}

	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return s.trees.reject("delete_item", Unavailable(err, "failed to delete menu item"), fields)
	}
	s.trees.invalidate(ctx, item.MenuID)
	recordMutation("delete_item", nil)
	return nil
}

// ReorderMenuItems sets the order of the given siblings to their position in
// itemIDs. Updates are applied one by one and are not rolled back on failure.
func (s *MenuItemService) ReorderMenuItems(ctx context.Context, menuID types.SnowflakeID, itemIDs []types.SnowflakeID) ([]models.MenuItem, error) {
	fields := logrus.Fields{"menu_id": menuID.String(), "count": len(itemIDs)}

	items, err := s.allocator.Reorder(ctx, menuID, itemIDs)
	if err != nil {
		// A partial batch may already be stored.
		s.trees.invalidate(ctx, menuID)
		return nil, s.trees.reject("reorder_items", err, fields)
	}
	s.trees.invalidate(ctx, menuID)
	recordMutation("reorder_items", nil)
	return items, nil
}

func (s *MenuItemService) findItem(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	item, err := s.repo.FindMenuItemByID(ctx, id)
	if err != nil {
		return nil, Unavailable(err, "failed to load menu item")
	}
	if item == nil {
		return nil, NotFound("menu item with ID %s not found", id)
	}
	return item, nil
}
