package services

import (
	"context"

	"menu-app/models"
	"menu-app/types"
)

// Repository is the persistence boundary of the menu services. Lookups of a
// single entity return (nil, nil) when the row does not exist.
type Repository interface {
	Ping(ctx context.Context) error

	FindMenuByID(ctx context.Context, id types.SnowflakeID) (*models.Menu, error)
	ListMenus(ctx context.Context) ([]models.Menu, error)
	CreateMenu(ctx context.Context, menu *models.Menu) error
	UpdateMenu(ctx context.Context, menu *models.Menu) error
	// DeleteMenu removes the menu together with all of its items.
	DeleteMenu(ctx context.Context, id types.SnowflakeID) error

	FindMenuItemByID(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error)
	// FindMenuItemsByMenu returns all items of a menu ordered by order ascending.
	FindMenuItemsByMenu(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error)
	// ListMenuItems returns items of one menu, or of every menu when menuID is
	// nil, ordered by order ascending.
	ListMenuItems(ctx context.Context, menuID *types.SnowflakeID) ([]models.MenuItem, error)
	// FindMenuItemsByParent returns the (menuID, parentID) sibling group ordered
	// by order descending. A nil parentID selects the top level.
	FindMenuItemsByParent(ctx context.Context, menuID types.SnowflakeID, parentID *types.SnowflakeID) ([]models.MenuItem, error)
	// FindChildren returns the direct children of an item ordered by order ascending.
	FindChildren(ctx context.Context, parentID types.SnowflakeID) ([]models.MenuItem, error)
	FindMenuItemsByIDs(ctx context.Context, menuID types.SnowflakeID, ids []types.SnowflakeID) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItemOrder(ctx context.Context, id types.SnowflakeID, order int) error
	DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error
	CountChildren(ctx context.Context, parentID types.SnowflakeID) (int64, error)
}

// HierarchyCache stores materialized menu forests. Implementations may drop
// entries at any time; a miss is never an error.
//
// Every menu has a generation that Invalidate advances. Readers take the
// generation before loading rows and pass it to SetHierarchy, which stores
// nothing once the generation has moved on.
type HierarchyCache interface {
	GetHierarchy(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, bool, error)
	Generation(ctx context.Context, menuID types.SnowflakeID) (int64, error)
	SetHierarchy(ctx context.Context, menuID types.SnowflakeID, generation int64, forest []models.MenuItem) error
	Invalidate(ctx context.Context, menuID types.SnowflakeID) error
}

type nopCache struct{}

func (nopCache) GetHierarchy(context.Context, types.SnowflakeID) ([]models.MenuItem, bool, error) {
	return nil, false, nil
}

func (nopCache) Generation(context.Context, types.SnowflakeID) (int64, error) {
	return 0, nil
}

func (nopCache) SetHierarchy(context.Context, types.SnowflakeID, int64, []models.MenuItem) error {
	return nil
}

func (nopCache) Invalidate(context.Context, types.SnowflakeID) error {
	return nil
}
