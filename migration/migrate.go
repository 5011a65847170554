package migration

import (
	"menu-app/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the menus and menu_items tables, including the
// (menu_id, parent_id, item_order) sibling group index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Menu{},
		&models.MenuItem{},
	)
}
