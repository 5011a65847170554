package services_test

import (
	"context"
	"testing"
	"time"

	"menu-app/cache"
	"menu-app/hierarchy"
	"menu-app/services"
	"menu-app/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateMenuItem_MainMenuScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	require.Len(t, menu.Items, 1)
	require.Equal(t, "Root", menu.Items[0].Title)
	require.Equal(t, 0, menu.Items[0].Order)

	home := f.item(t, menu.ID, "Home", nil)
	require.Equal(t, 1, home.Order)
	require.True(t, home.IsActive)
	require.NotNil(t, home.Children)

	about := f.item(t, menu.ID, "About", &home.ID)
	require.Equal(t, 0, about.Order)
	require.NotNil(t, about.Parent)
	require.Equal(t, home.ID, about.Parent.ID)

	forest, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Root", "Home"}, titles(forest))
	require.Equal(t, []string{"About"}, titles(forest[1].Children))
}

func TestCreateMenuItem_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")

	_, err := f.items.CreateMenuItem(ctx, services.CreateMenuItemInput{Title: "X", MenuID: 424242})
	require.True(t, services.IsNotFound(err))

	_, err = f.items.CreateMenuItem(ctx, services.CreateMenuItemInput{Title: "   ", MenuID: menu.ID})
	require.True(t, services.IsInvalidArgument(err))

	missing := types.SnowflakeID(555)
	_, err = f.items.CreateMenuItem(ctx, services.CreateMenuItemInput{Title: "X", MenuID: menu.ID, ParentID: &missing})
	require.True(t, services.IsNotFound(err))
}

func TestCreateMenuItem_IgnoresCallerOrderAndKeepsOrdersDense(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, "Main")
	parent := f.item(t, menu.ID, "Products", nil)

	for i := 0; i < 4; i++ {
		f.item(t, menu.ID, "p", &parent.ID)
	}
	children, err := f.repo.FindChildren(context.Background(), parent.ID)
	require.NoError(t, err)
	for i, c := range children {
		require.Equal(t, i, c.Order)
	}
}

func TestUpdateMenuItem_SelfParentRejected(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, "Main")
	a := f.item(t, menu.ID, "A", nil)

	_, err := f.items.UpdateMenuItem(context.Background(), a.ID, services.MenuItemPatch{
		ParentID: types.NewNullableID(&a.ID),
	})

	require.True(t, services.IsInvalidArgument(err))
	stored, _ := f.repo.FindMenuItemByID(context.Background(), a.ID)
	require.Nil(t, stored.ParentID)
}

func TestUpdateMenuItem_CrossMenuParentRejected(t *testing.T) {
	f := newFixture(t)
	main := f.menu(t, "Main")
	footer := f.menu(t, "Footer")
	a := f.item(t, main.ID, "A", nil)
	b := f.item(t, footer.ID, "B", nil)

	_, err := f.items.UpdateMenuItem(context.Background(), a.ID, services.MenuItemPatch{
		ParentID: types.NewNullableID(&b.ID),
	})

	require.True(t, services.IsInvalidArgument(err))
}

func TestUpdateMenuItem_MoveAppendsToNewGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	products := f.item(t, menu.ID, "Products", nil)
	f.item(t, menu.ID, "Shoes", &products.ID)
	f.item(t, menu.ID, "Hats", &products.ID)
	blog := f.item(t, menu.ID, "Blog", nil)

	moved, err := f.items.UpdateMenuItem(ctx, blog.ID, services.MenuItemPatch{
		ParentID: types.NewNullableID(&products.ID),
	})

	require.NoError(t, err)
	require.Equal(t, products.ID, *moved.ParentID)
	require.Equal(t, 2, moved.Order)
	require.Equal(t, products.ID, moved.Parent.ID)
}

func TestUpdateMenuItem_ExplicitNullMovesToTopLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	home := f.item(t, menu.ID, "Home", nil)
	about := f.item(t, menu.ID, "About", &home.ID)

	moved, err := f.items.UpdateMenuItem(ctx, about.ID, services.MenuItemPatch{
		ParentID: types.NullableID{Set: true},
	})

	require.NoError(t, err)
	require.Nil(t, moved.ParentID)
	require.Nil(t, moved.Parent)
	require.Equal(t, 2, moved.Order)
}

func TestUpdateMenuItem_ScalarFieldsLeaveParentAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	home := f.item(t, menu.ID, "Home", nil)
	about := f.item(t, menu.ID, "About", &home.ID)
	inactive := false

	updated, err := f.items.UpdateMenuItem(ctx, about.ID, services.MenuItemPatch{
		Title:    strPtr(" About us "),
		URL:      strPtr("/about"),
		Order:    intPtr(5),
		IsActive: &inactive,
	})

	require.NoError(t, err)
	require.Equal(t, "About us", updated.Title)
	require.Equal(t, "/about", updated.URL)
	require.Equal(t, 5, updated.Order)
	require.False(t, updated.IsActive)
	require.Equal(t, home.ID, *updated.ParentID)
}

func TestUpdateMenuItem_InvalidFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	a := f.item(t, menu.ID, "A", nil)

	_, err := f.items.UpdateMenuItem(ctx, a.ID, services.MenuItemPatch{Title: strPtr("")})
	require.True(t, services.IsInvalidArgument(err))

	_, err = f.items.UpdateMenuItem(ctx, a.ID, services.MenuItemPatch{Order: intPtr(-1)})
	require.True(t, services.IsInvalidArgument(err))

	_, err = f.items.UpdateMenuItem(ctx, 9999, services.MenuItemPatch{Title: strPtr("B")})
	require.True(t, services.IsNotFound(err))
}

func TestDeleteMenuItem_RefusesItemsWithChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	home := f.item(t, menu.ID, "Home", nil)
	about := f.item(t, menu.ID, "About", &home.ID)

	err := f.items.DeleteMenuItem(ctx, home.ID)
	require.True(t, services.IsInvalidArgument(err))
	require.Contains(t, err.Error(), "delete children first")

	stored, err := f.repo.FindMenuItemByID(ctx, home.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	require.NoError(t, f.items.DeleteMenuItem(ctx, about.ID))
	require.NoError(t, f.items.DeleteMenuItem(ctx, home.ID))

	err = f.items.DeleteMenuItem(ctx, home.ID)
	require.True(t, services.IsNotFound(err))
}

func TestGetMenuItem_AttachesParentAndChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	home := f.item(t, menu.ID, "Home", nil)
	f.item(t, menu.ID, "About", &home.ID)
	f.item(t, menu.ID, "Team", &home.ID)

	got, err := f.items.GetMenuItem(ctx, home.ID)
	require.NoError(t, err)
	require.Nil(t, got.Parent)
	require.Equal(t, []string{"About", "Team"}, titles(got.Children))

	leaf, err := f.items.GetMenuItem(ctx, got.Children[0].ID)
	require.NoError(t, err)
	require.Equal(t, home.ID, leaf.Parent.ID)
	require.NotNil(t, leaf.Children)
	require.Empty(t, leaf.Children)
}

func TestListMenuItems_FiltersByMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	main := f.menu(t, "Main")
	footer := f.menu(t, "Footer")
	f.item(t, main.ID, "A", nil)
	f.item(t, footer.ID, "B", nil)

	all, err := f.items.ListMenuItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)

	mainOnly, err := f.items.ListMenuItems(ctx, &main.ID)
	require.NoError(t, err)
	require.Len(t, mainOnly, 2)
	for _, it := range mainOnly {
		require.Equal(t, main.ID, it.MenuID)
	}
}

func TestGetMenuItemHierarchy_UnknownMenuIsEmpty(t *testing.T) {
	f := newFixture(t)

	forest, err := f.items.GetMenuItemHierarchy(context.Background(), 31337)

	require.NoError(t, err)
	require.Empty(t, forest)
}

func TestHierarchyPlacesEveryItemOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	a := f.item(t, menu.ID, "A", nil)
	b := f.item(t, menu.ID, "B", &a.ID)
	c := f.item(t, menu.ID, "C", &b.ID)
	f.item(t, menu.ID, "D", &c.ID)
	f.item(t, menu.ID, "E", &a.ID)

	forest, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)

	flat := hierarchy.Flatten(forest)
	require.Len(t, flat, 6)
	seen := map[types.SnowflakeID]bool{}
	for _, it := range flat {
		require.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}

func TestMutationsInvalidateCachedHierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")

	_, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.Contains(t, f.cache.stored, menu.ID)

	home := f.item(t, menu.ID, "Home", nil)
	require.NotContains(t, f.cache.stored, menu.ID)

	forest, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Root", "Home"}, titles(forest))

	_, err = f.items.UpdateMenuItem(ctx, home.ID, services.MenuItemPatch{Title: strPtr("Start")})
	require.NoError(t, err)
	_, err = f.items.ReorderMenuItems(ctx, menu.ID, []types.SnowflakeID{home.ID, menu.Items[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.items.DeleteMenuItem(ctx, home.ID))

	require.Equal(t, 4, f.cache.invalidated[menu.ID])
}

func TestReorderMenuItems_FailureStillInvalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	a := f.item(t, menu.ID, "A", nil)
	before := f.cache.invalidated[menu.ID]
	f.repo.failOrderUpdateFor = a.ID

	_, err := f.items.ReorderMenuItems(ctx, menu.ID, []types.SnowflakeID{a.ID})

	require.True(t, services.IsUnavailable(err))
	require.Equal(t, before+1, f.cache.invalidated[menu.ID])
	require.NotEmpty(t, f.logs.AllEntries())
	require.Equal(t, logrus.ErrorLevel, f.logs.LastEntry().Level)
}

func TestCreateMenuItem_StoreDownIsUnavailable(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, "Main")
	f.repo.down = true

	_, err := f.items.CreateMenuItem(context.Background(), services.CreateMenuItemInput{Title: "A", MenuID: menu.ID})

	require.True(t, services.IsUnavailable(err))
}

func TestGetMenuItemHierarchy_SkipsCachingRowsLoadedBeforeAMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menu := f.menu(t, "Main")
	f.repo.afterLoad = func() { f.item(t, menu.ID, "Late", nil) }

	first, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Root"}, titles(first))
	require.NotContains(t, f.cache.stored, menu.ID)

	second, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Root", "Late"}, titles(second))
	require.Contains(t, f.cache.stored, menu.ID)
}

func TestGetMenuItemHierarchy_RedisCacheNeverKeepsAnOlderTree(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixtureWithCache(t, cache.NewRedisHierarchyCacheWithClient(client, time.Minute))
	ctx := context.Background()
	menu := f.menu(t, "Main")
	f.repo.afterLoad = func() { f.item(t, menu.ID, "Late", nil) }

	_, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
	require.NoError(t, err)
	require.False(t, mr.Exists("menu:hierarchy:"+menu.ID.String()))

	for i := 0; i < 2; i++ {
		forest, err := f.items.GetMenuItemHierarchy(ctx, menu.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"Root", "Late"}, titles(forest))
	}
	require.True(t, mr.Exists("menu:hierarchy:"+menu.ID.String()))
}
