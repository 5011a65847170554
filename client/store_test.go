package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"menu-app/models"
	"menu-app/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestStore(api API) *Store {
	logger, _ := test.NewNullLogger()
	return NewStore(api, logger)
}

func TestStore_PatchedTreeMatchesServer(t *testing.T) {
	c := newBackend(t)
	store := newTestStore(c)
	ctx := context.Background()

	menu, err := store.CreateMenu(ctx, "Main", "")
	require.NoError(t, err)
	_, err = store.FetchMenu(ctx, menu.ID)
	require.NoError(t, err)

	home, err := store.CreateMenuItem(ctx, CreateMenuItemRequest{Title: "Home", MenuID: menu.ID})
	require.NoError(t, err)
	about, err := store.CreateMenuItem(ctx, CreateMenuItemRequest{Title: "About", MenuID: menu.ID, ParentID: &home.ID})
	require.NoError(t, err)
	blog, err := store.CreateMenuItem(ctx, CreateMenuItemRequest{Title: "Blog", MenuID: menu.ID})
	require.NoError(t, err)
	require.Equal(t, "Root,Home[About],Blog", render(store.State().CurrentMenu.Items))

	title := "About us"
	_, err = store.UpdateMenuItem(ctx, about.ID, UpdateMenuItemRequest{Title: &title, ParentID: types.NewNullableID(&blog.ID)})
	require.NoError(t, err)
	require.Equal(t, "Root,Home,Blog[About us]", render(store.State().CurrentMenu.Items))

	root := store.State().CurrentMenu.Items[0]
	_, err = store.ReorderMenuItems(ctx, menu.ID, []types.SnowflakeID{blog.ID, home.ID, root.ID})
	require.NoError(t, err)
	require.Equal(t, "Blog[About us],Home,Root", render(store.State().CurrentMenu.Items))

	require.NoError(t, store.DeleteMenuItem(ctx, home.ID))
	patched := render(store.State().CurrentMenu.Items)

	fresh, err := c.GetMenu(ctx, menu.ID)
	require.NoError(t, err)
	require.Equal(t, render(fresh.Items), patched)

	require.NoError(t, store.DeleteMenu(ctx, menu.ID))
	require.Nil(t, store.State().CurrentMenu)
	require.Empty(t, store.State().Menus)
}

func TestStore_TransitionsAndErrors(t *testing.T) {
	boom := errors.New("backend down")
	store := newTestStore(&stubAPI{listErr: boom})

	var mu sync.Mutex
	var seen []State
	unsubscribe := store.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	_, err := store.FetchMenus(context.Background())
	require.ErrorIs(t, err, boom)

	mu.Lock()
	require.Len(t, seen, 2)
	require.True(t, seen[0].Loading)
	require.NoError(t, seen[0].Err)
	require.False(t, seen[1].Loading)
	require.ErrorIs(t, seen[1].Err, boom)
	mu.Unlock()

	store.ClearError()
	require.NoError(t, store.State().Err)

	unsubscribe()
	store.SelectItem(&models.MenuItem{ID: 3})
	mu.Lock()
	require.Len(t, seen, 3)
	mu.Unlock()
	require.Equal(t, types.SnowflakeID(3), store.State().SelectedItem.ID)
}

func TestStore_UpdateMenuRefreshesCurrent(t *testing.T) {
	c := newBackend(t)
	store := newTestStore(c)
	ctx := context.Background()

	menu, err := store.CreateMenu(ctx, "Main", "")
	require.NoError(t, err)
	store.SelectMenu(menu)

	name := "Header"
	_, err = store.UpdateMenu(ctx, menu.ID, UpdateMenuRequest{Name: &name})
	require.NoError(t, err)

	st := store.State()
	require.Equal(t, "Header", st.CurrentMenu.Name)
	require.Equal(t, "Header", st.Menus[0].Name)
	require.Equal(t, "Root", render(st.CurrentMenu.Items))
}

type stubAPI struct {
	API
	listErr  error
	getCalls int32
}

func (s *stubAPI) ListMenus(context.Context) ([]models.Menu, error) {
	return nil, s.listErr
}

func (s *stubAPI) GetMenu(_ context.Context, id types.SnowflakeID) (*models.Menu, error) {
	n := atomic.AddInt32(&s.getCalls, 1)
	return &models.Menu{ID: id, Items: []models.MenuItem{{ID: types.SnowflakeID(100 + n), Title: "Fresh"}}}, nil
}

func TestPoller_ReplacesCurrentTreeWhenEnabled(t *testing.T) {
	api := &stubAPI{}
	store := newTestStore(api)
	logger, _ := test.NewNullLogger()
	poller := NewPoller(store, 5*time.Millisecond, logger)
	require.False(t, poller.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	store.SelectMenu(&models.Menu{ID: 1, Items: []models.MenuItem{{ID: 9, Title: "Stale"}}})
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&api.getCalls))

	poller.Enable()
	require.Eventually(t, func() bool {
		items := store.State().CurrentMenu.Items
		return len(items) == 1 && items[0].Title == "Fresh"
	}, time.Second, 5*time.Millisecond)

	poller.Disable()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := NewPoller(newTestStore(&stubAPI{}), 0, logger)
	require.Equal(t, DefaultPollInterval, p.interval)
}
