package repositories

import (
	"context"

	"menu-app/models"
	"menu-app/services"
	"menu-app/types"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ services.Repository = (*MenuRepository)(nil)

// MenuRepository is the gorm backed store for menus and their items.
type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(DB *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: DB}
}

func (r *MenuRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

func (r *MenuRepository) FindMenuByID(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	var menu models.Menu
	err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find menu %s", id)
	}
	return &menu, nil
}

func (r *MenuRepository) ListMenus(ctx context.Context) ([]models.Menu, error) {
	var menus []models.Menu
	if err := r.DB.WithContext(ctx).Order("created_at asc").Order("id asc").Find(&menus).Error; err != nil {
		return nil, errors.Wrap(err, "list menus")
	}
	return menus, nil
}

func (r *MenuRepository) CreateMenu(ctx context.Context, menu *models.Menu) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(menu).Error, "create menu")
}

func (r *MenuRepository) UpdateMenu(ctx context.Context, menu *models.Menu) error {
	err := r.DB.WithContext(ctx).Model(&models.Menu{}).Where("id = ?", menu.ID).Updates(map[string]interface{}{
		"name":        menu.Name,
		"description": menu.Description,
	}).Error
	return errors.Wrapf(err, "update menu %s", menu.ID)
}

// DeleteMenu removes the items first so no row is left pointing at a missing
// menu, all inside one transaction.
func (r *MenuRepository) DeleteMenu(ctx context.Context, id types.SnowflakeID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Menu{}).Error
	})
	return errors.Wrapf(err, "delete menu %s", id)
}

func (r *MenuRepository) FindMenuItemByID(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find menu item %s", id)
	}
	return &item, nil
}

func (r *MenuRepository) FindMenuItemsByMenu(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.DB.WithContext(ctx).
		Where("menu_id = ?", menuID).
		Order("item_order asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find items of menu %s", menuID)
	}
	return items, nil
}

func (r *MenuRepository) ListMenuItems(ctx context.Context, menuID *types.SnowflakeID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.DB.WithContext(ctx)
	if menuID != nil {
		query = query.Where("menu_id = ?", *menuID)
	}
	if err := query.Order("item_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	return items, nil
}

func (r *MenuRepository) FindMenuItemsByParent(ctx context.Context, menuID types.SnowflakeID, parentID *types.SnowflakeID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.DB.WithContext(ctx).Where("menu_id = ?", menuID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.Order("item_order desc").Find(&items).Error; err != nil {
		return nil, errors.Wrapf(err, "find sibling group of menu %s", menuID)
	}
	return items, nil
}

func (r *MenuRepository) FindChildren(ctx context.Context, parentID types.SnowflakeID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.DB.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("item_order asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find children of %s", parentID)
	}
	return items, nil
}

func (r *MenuRepository) FindMenuItemsByIDs(ctx context.Context, menuID types.SnowflakeID, ids []types.SnowflakeID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.DB.WithContext(ctx).Where("menu_id = ? AND id IN ?", menuID, ids).Find(&items).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find items of menu %s", menuID)
	}
	return items, nil
}

func (r *MenuRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(item).Error, "create menu item")
}

// UpdateMenuItem writes every mutable column, including a cleared parent_id,
// which a struct based Updates would skip.
func (r *MenuRepository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := r.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"title":       item.Title,
		"description": item.Description,
		"url":         item.URL,
		"icon":        item.Icon,
		"item_order":  item.Order,
		"is_active":   item.IsActive,
		"parent_id":   item.ParentID,
	}).Error
	return errors.Wrapf(err, "update menu item %s", item.ID)
}

func (r *MenuRepository) UpdateMenuItemOrder(ctx context.Context, id types.SnowflakeID, order int) error {
	err := r.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Update("item_order", order).Error
	return errors.Wrapf(err, "update order of menu item %s", id)
}

func (r *MenuRepository) DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error {
	err := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{}).Error
	return errors.Wrapf(err, "delete menu item %s", id)
}

func (r *MenuRepository) CountChildren(ctx context.Context, parentID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("parent_id = ?", parentID).Count(&count).Error
	if err != nil {
		return 0, errors.Wrapf(err, "count children of %s", parentID)
	}
	return count, nil
}
