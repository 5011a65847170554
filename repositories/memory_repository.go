package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"menu-app/controllers/idgen"
	"menu-app/models"
	"menu-app/services"
	"menu-app/types"
)

var _ services.Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps menus in process memory. It backs DB_DRIVER=memory
// and the HTTP level tests; nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	menus map[types.SnowflakeID]models.Menu
	items map[types.SnowflakeID]models.MenuItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		menus: map[types.SnowflakeID]models.Menu{},
		items: map[types.SnowflakeID]models.MenuItem{},
	}
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

func (r *MemoryRepository) FindMenuByID(_ context.Context, id types.SnowflakeID) (*models.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.menus[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MemoryRepository) ListMenus(context.Context) ([]models.Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Menu, 0, len(r.menus))
	for _, m := range r.menus {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CreateMenu(_ context.Context, menu *models.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if menu.ID == 0 {
		menu.ID = types.SnowflakeID(idgen.GenerateID())
	}
	now := time.Now()
	menu.CreatedAt, menu.UpdatedAt = now, now
	stored := *menu
	stored.Items = nil
	r.menus[menu.ID] = stored
	return nil
}

func (r *MemoryRepository) UpdateMenu(_ context.Context, menu *models.Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.menus[menu.ID]
	if !ok {
		return nil
	}
	stored.Name = menu.Name
	stored.Description = menu.Description
	stored.UpdatedAt = time.Now()
	r.menus[menu.ID] = stored
	return nil
}

func (r *MemoryRepository) DeleteMenu(_ context.Context, id types.SnowflakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for itemID, it := range r.items {
		if it.MenuID == id {
			delete(r.items, itemID)
		}
	}
	delete(r.menus, id)
	return nil
}

func (r *MemoryRepository) FindMenuItemByID(_ context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// collect returns the matching rows by order, ties broken by id so results
// are stable across calls.
func (r *MemoryRepository) collect(keep func(models.MenuItem) bool, desc bool) []models.MenuItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.MenuItem, 0)
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		if desc {
			return out[i].Order > out[j].Order
		}
		return out[i].Order < out[j].Order
	})
	return out
}

func (r *MemoryRepository) FindMenuItemsByMenu(_ context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	return r.collect(func(it models.MenuItem) bool { return it.MenuID == menuID }, false), nil
}

func (r *MemoryRepository) ListMenuItems(_ context.Context, menuID *types.SnowflakeID) ([]models.MenuItem, error) {
	return r.collect(func(it models.MenuItem) bool { return menuID == nil || it.MenuID == *menuID }, false), nil
}

func (r *MemoryRepository) FindMenuItemsByParent(_ context.Context, menuID types.SnowflakeID, parentID *types.SnowflakeID) ([]models.MenuItem, error) {
	return r.collect(func(it models.MenuItem) bool {
		return it.MenuID == menuID && types.SameID(it.ParentID, parentID)
	}, true), nil
}

func (r *MemoryRepository) FindChildren(_ context.Context, parentID types.SnowflakeID) ([]models.MenuItem, error) {
	return r.collect(func(it models.MenuItem) bool {
		return it.ParentID != nil && *it.ParentID == parentID
	}, false), nil
}

func (r *MemoryRepository) FindMenuItemsByIDs(_ context.Context, menuID types.SnowflakeID, ids []types.SnowflakeID) ([]models.MenuItem, error) {
	wanted := make(map[types.SnowflakeID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.collect(func(it models.MenuItem) bool { return it.MenuID == menuID && wanted[it.ID] }, false), nil
}

func (r *MemoryRepository) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = types.SnowflakeID(idgen.GenerateID())
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.items[item.ID] = detach(*item)
	return nil
}

func (r *MemoryRepository) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil
	}
	item.UpdatedAt = time.Now()
	r.items[item.ID] = detach(*item)
	return nil
}

func (r *MemoryRepository) UpdateMenuItemOrder(_ context.Context, id types.SnowflakeID, order int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil
	}
	it.Order = order
	it.UpdatedAt = time.Now()
	r.items[id] = it
	return nil
}

func (r *MemoryRepository) DeleteMenuItem(_ context.Context, id types.SnowflakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) CountChildren(_ context.Context, parentID types.SnowflakeID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, it := range r.items {
		if it.ParentID != nil && *it.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

// detach strips the derived relations and copies the parent pointer so stored
// rows never alias caller memory.
func detach(it models.MenuItem) models.MenuItem {
	it.Parent, it.Children = nil, nil
	if it.ParentID != nil {
		it.ParentID = it.ParentID.Ptr()
	}
	return it
}
