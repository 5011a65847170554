package models

import (
	"time"

	"menu-app/controllers/idgen"
	"menu-app/types"

	"gorm.io/gorm"
)

// Menu is a named container of a MenuItem tree. Items is derived on read and
// never persisted through the association.
type Menu struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string            `json:"name" gorm:"size:255;not null"`
	Description string            `json:"description,omitempty" gorm:"size:1024"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Items       []MenuItem        `json:"items" gorm:"-"`
}

// MenuItem is a node of a menu tree. The stored form is flat: ParentID is the
// only structural column, Parent and Children are filled in by readers.
type MenuItem struct {
	ID          types.SnowflakeID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string             `json:"title" gorm:"size:255;not null"`
	Description string             `json:"description,omitempty" gorm:"size:1024"`
	URL         string             `json:"url,omitempty" gorm:"size:1024"`
	Icon        string             `json:"icon,omitempty" gorm:"size:255"`
	Order       int                `json:"order" gorm:"column:item_order;not null;index:idx_menu_items_group,priority:3"`
	IsActive    bool               `json:"isActive" gorm:"not null"`
	ParentID    *types.SnowflakeID `json:"parentId" gorm:"index:idx_menu_items_group,priority:2"`
	MenuID      types.SnowflakeID  `json:"menuId" gorm:"not null;index:idx_menu_items_group,priority:1"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Parent      *MenuItem          `json:"parent,omitempty" gorm:"-"`
	Children    []MenuItem         `json:"children" gorm:"-"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// IsRoot reports whether the item sits at the top level of its menu.
func (m MenuItem) IsRoot() bool {
	return m.ParentID == nil
}
