package services

import (
	"context"
	"strings"

	"menu-app/hierarchy"
	"menu-app/models"
	"menu-app/types"

	"github.com/sirupsen/logrus"
)

const rootItemTitle = "Root"

type CreateMenuInput struct {
	Name        string
	Description string
}

// MenuPatch carries the fields of an update; nil means "leave unchanged".
type MenuPatch struct {
	Name        *string
	Description *string
}

type MenuService struct {
	repo  Repository
	trees *treeReader
	log   logrus.FieldLogger
}

func NewMenuService(repo Repository, cache HierarchyCache, log logrus.FieldLogger) *MenuService {
	if cache == nil {
		cache = nopCache{}
	}
	return &MenuService{
		repo:  repo,
		trees: &treeReader{repo: repo, cache: cache, log: log},
		log:   log,
	}
}

// CreateMenu stores the menu and its implicit "Root" item at order 0.
func (s *MenuService) CreateMenu(ctx context.Context, in CreateMenuInput) (*models.Menu, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, s.trees.reject("create_menu", InvalidArgument("menu name is required"), nil)
	}

	menu := &models.Menu{Name: name, Description: in.Description}
	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, s.trees.reject("create_menu", Unavailable(err, "failed to create menu"), logrus.Fields{"name": name})
	}

	root := &models.MenuItem{
		Title:    rootItemTitle,
		MenuID:   menu.ID,
		Order:    0,
		IsActive: true,
	}
	if err := s.repo.CreateMenuItem(ctx, root); err != nil {
		return nil, s.trees.reject("create_menu", Unavailable(err, "failed to create root menu item"), logrus.Fields{"menu_id": menu.ID.String()})
	}
	root.Children = []models.MenuItem{}
	menu.Items = []models.MenuItem{*root}

	recordMutation("create_menu", nil)
	s.log.WithFields(logrus.Fields{"menu_id": menu.ID.String(), "name": menu.Name}).Info("menu created")
	return menu, nil
}

// ListMenus returns every menu with its top-level items, each carrying its
// direct children only.
func (s *MenuService) ListMenus(ctx context.Context) ([]models.Menu, error) {
	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		return nil, Unavailable(err, "failed to list menus")
	}
	items, err := s.repo.ListMenuItems(ctx, nil)
	if err != nil {
		return nil, Unavailable(err, "failed to list menu items")
	}

	byMenu := make(map[types.SnowflakeID][]models.MenuItem, len(menus))
	for _, it := range items {
		byMenu[it.MenuID] = append(byMenu[it.MenuID], it)
	}
	for i := range menus {
		menus[i].Items = hierarchy.Build(byMenu[menus[i].ID], 2)
	}
	return menus, nil
}

// GetMenu returns the menu with its complete item forest.
func (s *MenuService) GetMenu(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	menu, err := s.findMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	forest, err := s.trees.forest(ctx, id)
	if err != nil {
		return nil, err
	}
	menu.Items = forest
	return menu, nil
}

// GetMenuHierarchy returns the menu with its forest cut at depth levels. A
// depth of zero or less returns the full tree.
func (s *MenuService) GetMenuHierarchy(ctx context.Context, id types.SnowflakeID, depth int) (*models.Menu, error) {
	menu, err := s.GetMenu(ctx, id)
	if err != nil {
		return nil, err
	}
	if depth > 0 {
		menu.Items = hierarchy.Build(hierarchy.Flatten(menu.Items), depth)
	}
	return menu, nil
}

func (s *MenuService) UpdateMenu(ctx context.Context, id types.SnowflakeID, patch MenuPatch) (*models.Menu, error) {
	menu, err := s.findMenu(ctx, id)
	if err != nil {
		return nil, s.trees.reject("update_menu", err, logrus.Fields{"menu_id": id.String()})
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, s.trees.reject("update_menu", InvalidArgument("menu name must not be empty"), logrus.Fields{"menu_id": id.String()})
		}
		menu.Name = name
	}
	if patch.Description != nil {
		menu.Description = *patch.Description
	}

	if err := s.repo.UpdateMenu(ctx, menu); err != nil {
		return nil, s.trees.reject("update_menu", Unavailable(err, "failed to update menu"), logrus.Fields{"menu_id": id.String()})
	}
	recordMutation("update_menu", nil)
	return s.GetMenu(ctx, id)
}

// DeleteMenu removes the menu and every item it owns.
func (s *MenuService) DeleteMenu(ctx context.Context, id types.SnowflakeID) error {
	if _, err := s.findMenu(ctx, id); err != nil {
		return s.trees.reject("delete_menu", err, logrus.Fields{"menu_id": id.String()})
	}
	if err := s.repo.DeleteMenu(ctx, id); err != nil {
		return s.trees.reject("delete_menu", Unavailable(err, "failed to delete menu"), logrus.Fields{"menu_id": id.String()})
	}
	s.trees.invalidate(ctx, id)

	recordMutation("delete_menu", nil)
	s.log.WithField("menu_id", id.String()).Info("menu deleted")
	return nil
}

func (s *MenuService) findMenu(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	menu, err := s.repo.FindMenuByID(ctx, id)
	if err != nil {
		return nil, Unavailable(err, "failed to load menu")
	}
	if menu == nil {
		return nil, NotFound("menu with ID %s not found", id)
	}
	return menu, nil
}

// Ping reports whether the backing store answers.
func (s *MenuService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return Unavailable(err, "storage unreachable")
	}
	return nil
}
