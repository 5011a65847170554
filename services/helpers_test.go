package services_test

import (
	"context"
	"errors"
	"testing"

	"menu-app/models"
	"menu-app/repositories"
	"menu-app/services"
	"menu-app/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("connection refused")

// faultyRepository is the in-memory store with switches for storage failures
// and a hook that runs right after a menu's rows were loaded.
type faultyRepository struct {
	*repositories.MemoryRepository

	down               bool
	failOrderUpdateFor types.SnowflakeID
	afterLoad          func()
}

func (r *faultyRepository) Ping(ctx context.Context) error {
	if r.down {
		return errStoreDown
	}
	return r.MemoryRepository.Ping(ctx)
}

func (r *faultyRepository) FindMenuByID(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	if r.down {
		return nil, errStoreDown
	}
	return r.MemoryRepository.FindMenuByID(ctx, id)
}

func (r *faultyRepository) CreateMenu(ctx context.Context, menu *models.Menu) error {
	if r.down {
		return errStoreDown
	}
	return r.MemoryRepository.CreateMenu(ctx, menu)
}

func (r *faultyRepository) FindMenuItemByID(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	if r.down {
		return nil, errStoreDown
	}
	return r.MemoryRepository.FindMenuItemByID(ctx, id)
}

func (r *faultyRepository) FindMenuItemsByMenu(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	items, err := r.MemoryRepository.FindMenuItemsByMenu(ctx, menuID)
	if hook := r.afterLoad; hook != nil {
		r.afterLoad = nil
		hook()
	}
	return items, err
}

func (r *faultyRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if r.down {
		return errStoreDown
	}
	return r.MemoryRepository.CreateMenuItem(ctx, item)
}

func (r *faultyRepository) UpdateMenuItemOrder(ctx context.Context, id types.SnowflakeID, order int) error {
	if id == r.failOrderUpdateFor {
		return errStoreDown
	}
	return r.MemoryRepository.UpdateMenuItemOrder(ctx, id, order)
}

// countingCache records invalidations and keeps generations the way the redis
// cache does.
type countingCache struct {
	stored      map[types.SnowflakeID][]models.MenuItem
	generations map[types.SnowflakeID]int64
	invalidated map[types.SnowflakeID]int
}

func newCountingCache() *countingCache {
	return &countingCache{
		stored:      map[types.SnowflakeID][]models.MenuItem{},
		generations: map[types.SnowflakeID]int64{},
		invalidated: map[types.SnowflakeID]int{},
	}
}

func (c *countingCache) GetHierarchy(_ context.Context, menuID types.SnowflakeID) ([]models.MenuItem, bool, error) {
	forest, ok := c.stored[menuID]
	return forest, ok, nil
}

func (c *countingCache) Generation(_ context.Context, menuID types.SnowflakeID) (int64, error) {
	return c.generations[menuID], nil
}

func (c *countingCache) SetHierarchy(_ context.Context, menuID types.SnowflakeID, generation int64, forest []models.MenuItem) error {
	if generation == c.generations[menuID] {
		c.stored[menuID] = forest
	}
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, menuID types.SnowflakeID) error {
	delete(c.stored, menuID)
	c.generations[menuID]++
	c.invalidated[menuID]++
	return nil
}

type fixture struct {
	repo  *faultyRepository
	cache *countingCache
	menus *services.MenuService
	items *services.MenuItemService
	logs  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, newCountingCache())
}

func newFixtureWithCache(t *testing.T, cache services.HierarchyCache) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	repo := &faultyRepository{MemoryRepository: repositories.NewMemoryRepository()}
	counting, _ := cache.(*countingCache)
	return &fixture{
		repo:  repo,
		cache: counting,
		menus: services.NewMenuService(repo, cache, logger),
		items: services.NewMenuItemService(repo, cache, logger),
		logs:  hook,
	}
}

func (f *fixture) menu(t *testing.T, name string) *models.Menu {
	t.Helper()
	menu, err := f.menus.CreateMenu(context.Background(), services.CreateMenuInput{Name: name})
	require.NoError(t, err)
	return menu
}

func (f *fixture) item(t *testing.T, menuID types.SnowflakeID, title string, parentID *types.SnowflakeID) *models.MenuItem {
	t.Helper()
	it, err := f.items.CreateMenuItem(context.Background(), services.CreateMenuItemInput{
		Title:    title,
		MenuID:   menuID,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return it
}

func (f *fixture) orderOf(t *testing.T, id types.SnowflakeID) int {
	t.Helper()
	it, err := f.repo.FindMenuItemByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.Order
}

func titles(nodes []models.MenuItem) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}
