package database

import (
	"context"

	"menu-app/models"
	"menu-app/services"

	"github.com/sirupsen/logrus"
)

type menuCreator interface {
	ListMenus(ctx context.Context) ([]models.Menu, error)
	CreateMenu(ctx context.Context, in services.CreateMenuInput) (*models.Menu, error)
}

type menuItemCreator interface {
	CreateMenuItem(ctx context.Context, in services.CreateMenuItemInput) (*models.MenuItem, error)
}

type seedItem struct {
	Title    string
	URL      string
	Icon     string
	Children []seedItem
}

var defaultMenuItems = []seedItem{
	{Title: "Home", URL: "/", Icon: "home", Children: []seedItem{
		{Title: "About", URL: "/about", Icon: "info"},
	}},
	{Title: "Contact", URL: "/contact", Icon: "mail"},
}

// SeedDefaultMenu creates a "Main" menu with a few items on an empty store.
// It does nothing once any menu exists. Seeding goes through the services so
// orders and ids are assigned the same way as for API calls.
func SeedDefaultMenu(ctx context.Context, menus menuCreator, items menuItemCreator, log logrus.FieldLogger) error {
	existing, err := menus.ListMenus(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("menus", len(existing)).Debug("menus present, skipping seed")
		return nil
	}

	menu, err := menus.CreateMenu(ctx, services.CreateMenuInput{Name: "Main", Description: "Default navigation"})
	if err != nil {
		return err
	}
	if err := seedItems(ctx, items, menu, nil, defaultMenuItems); err != nil {
		return err
	}
	log.WithField("menu_id", menu.ID.String()).Info("default menu seeded")
	return nil
}

func seedItems(ctx context.Context, items menuItemCreator, menu *models.Menu, parent *models.MenuItem, seeds []seedItem) error {
	for _, s := range seeds {
		in := services.CreateMenuItemInput{Title: s.Title, URL: s.URL, Icon: s.Icon, MenuID: menu.ID}
		if parent != nil {
			in.ParentID = parent.ID.Ptr()
		}
		created, err := items.CreateMenuItem(ctx, in)
		if err != nil {
			return err
		}
		if err := seedItems(ctx, items, menu, created, s.Children); err != nil {
			return err
		}
	}
	return nil
}
