package client

import (
	"context"
	"sync"

	"menu-app/models"
	"menu-app/types"

	"github.com/sirupsen/logrus"
)

// API is the part of *Client the Store depends on.
type API interface {
	ListMenus(ctx context.Context) ([]models.Menu, error)
	GetMenu(ctx context.Context, id types.SnowflakeID) (*models.Menu, error)
	CreateMenu(ctx context.Context, name, description string) (*models.Menu, error)
	UpdateMenu(ctx context.Context, id types.SnowflakeID, req UpdateMenuRequest) (*models.Menu, error)
	DeleteMenu(ctx context.Context, id types.SnowflakeID) error
	CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id types.SnowflakeID, req UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error
	ReorderMenuItems(ctx context.Context, menuID types.SnowflakeID, itemIDs []types.SnowflakeID) ([]models.MenuItem, error)
}

var _ API = (*Client)(nil)

// State is a snapshot of what the client knows. Err holds the failure of the
// most recent operation only.
type State struct {
	Menus        []models.Menu
	CurrentMenu  *models.Menu
	SelectedItem *models.MenuItem
	Loading      bool
	Err          error
}

// Store holds the client state and moves it through pending, fulfilled and
// rejected for every remote operation. Subscribers see every transition.
type Store struct {
	api API
	log logrus.FieldLogger

	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewStore(api API, log logrus.FieldLogger) *Store {
	return &Store{
		api:  api,
		log:  log,
		subs: map[int]func(State){},
	}
}

// State returns the current snapshot. The forests in it are shared with the
// store and must be treated as read-only.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()
	for _, sub := range subs {
		sub(snapshot)
	}
}

func (s *Store) pending() {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})
}

func (s *Store) rejected(op string, err error) error {
	s.log.WithError(err).WithField("operation", op).Warn("menu operation failed")
	s.update(func(st *State) {
		st.Loading = false
		st.Err = err
	})
	return err
}

func (s *Store) fulfilled(fn func(*State)) {
	s.update(func(st *State) {
		st.Loading = false
		fn(st)
	})
}

func (s *Store) FetchMenus(ctx context.Context) ([]models.Menu, error) {
	s.pending()
	menus, err := s.api.ListMenus(ctx)
	if err != nil {
		return nil, s.rejected("fetch_menus", err)
	}
	s.fulfilled(func(st *State) { st.Menus = menus })
	return menus, nil
}

// FetchMenu loads the full tree of a menu and makes it the current menu,
// replacing any locally patched tree.
func (s *Store) FetchMenu(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	s.pending()
	menu, err := s.api.GetMenu(ctx, id)
	if err != nil {
		return nil, s.rejected("fetch_menu", err)
	}
	s.fulfilled(func(st *State) { st.CurrentMenu = menu })
	return menu, nil
}

func (s *Store) CreateMenu(ctx context.Context, name, description string) (*models.Menu, error) {
	s.pending()
	menu, err := s.api.CreateMenu(ctx, name, description)
	if err != nil {
		return nil, s.rejected("create_menu", err)
	}
	s.fulfilled(func(st *State) {
		menus := make([]models.Menu, len(st.Menus), len(st.Menus)+1)
		copy(menus, st.Menus)
		st.Menus = append(menus, *menu)
	})
	return menu, nil
}

func (s *Store) UpdateMenu(ctx context.Context, id types.SnowflakeID, req UpdateMenuRequest) (*models.Menu, error) {
	s.pending()
	menu, err := s.api.UpdateMenu(ctx, id, req)
	if err != nil {
		return nil, s.rejected("update_menu", err)
	}
	s.fulfilled(func(st *State) {
		menus := make([]models.Menu, len(st.Menus))
		copy(menus, st.Menus)
		for i := range menus {
			if menus[i].ID == menu.ID {
				menus[i] = *menu
			}
		}
		st.Menus = menus
		if st.CurrentMenu != nil && st.CurrentMenu.ID == menu.ID {
			st.CurrentMenu = menu
		}
	})
	return menu, nil
}

func (s *Store) DeleteMenu(ctx context.Context, id types.SnowflakeID) error {
	s.pending()
	if err := s.api.DeleteMenu(ctx, id); err != nil {
		return s.rejected("delete_menu", err)
	}
	s.fulfilled(func(st *State) {
		menus := make([]models.Menu, 0, len(st.Menus))
		for _, m := range st.Menus {
			if m.ID != id {
				menus = append(menus, m)
			}
		}
		st.Menus = menus
		if st.CurrentMenu != nil && st.CurrentMenu.ID == id {
			st.CurrentMenu = nil
			st.SelectedItem = nil
		}
	})
	return nil
}

// CreateMenuItem adds the created item to the current menu's tree when it
// belongs to that menu.
func (s *Store) CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*models.MenuItem, error) {
	s.pending()
	item, err := s.api.CreateMenuItem(ctx, req)
	if err != nil {
		return nil, s.rejected("create_item", err)
	}
	s.fulfilled(func(st *State) {
		if st.CurrentMenu != nil && st.CurrentMenu.ID == item.MenuID {
			st.CurrentMenu = withItems(st.CurrentMenu, InsertItem(st.CurrentMenu.Items, *item, item.ParentID))
		}
	})
	return item, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, id types.SnowflakeID, req UpdateMenuItemRequest) (*models.MenuItem, error) {
	s.pending()
	item, err := s.api.UpdateMenuItem(ctx, id, req)
	if err != nil {
		return nil, s.rejected("update_item", err)
	}
	s.fulfilled(func(st *State) {
		if st.CurrentMenu != nil && st.CurrentMenu.ID == item.MenuID {
			st.CurrentMenu = withItems(st.CurrentMenu, MoveItem(st.CurrentMenu.Items, *item))
		}
		if st.SelectedItem != nil && st.SelectedItem.ID == item.ID {
			st.SelectedItem = item
		}
	})
	return item, nil
}

func (s *Store) DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error {
	s.pending()
	if err := s.api.DeleteMenuItem(ctx, id); err != nil {
		return s.rejected("delete_item", err)
	}
	s.fulfilled(func(st *State) {
		if st.CurrentMenu != nil {
			st.CurrentMenu = withItems(st.CurrentMenu, RemoveItem(st.CurrentMenu.Items, id))
		}
		if st.SelectedItem != nil && st.SelectedItem.ID == id {
			st.SelectedItem = nil
		}
	})
	return nil
}

func (s *Store) ReorderMenuItems(ctx context.Context, menuID types.SnowflakeID, itemIDs []types.SnowflakeID) ([]models.MenuItem, error) {
	s.pending()
	items, err := s.api.ReorderMenuItems(ctx, menuID, itemIDs)
	if err != nil {
		return nil, s.rejected("reorder_items", err)
	}
	s.fulfilled(func(st *State) {
		if st.CurrentMenu != nil && st.CurrentMenu.ID == menuID {
			st.CurrentMenu = withItems(st.CurrentMenu, ApplyOrder(st.CurrentMenu.Items, items))
		}
	})
	return items, nil
}

func (s *Store) SelectMenu(menu *models.Menu) {
	s.update(func(st *State) { st.CurrentMenu = menu })
}

func (s *Store) SelectItem(item *models.MenuItem) {
	s.update(func(st *State) { st.SelectedItem = item })
}

func (s *Store) ClearError() {
	s.update(func(st *State) { st.Err = nil })
}

// withItems returns a copy of menu carrying items, so snapshots handed out
// earlier keep their tree.
func withItems(menu *models.Menu, items []models.MenuItem) *models.Menu {
	next := *menu
	next.Items = items
	return &next
}
