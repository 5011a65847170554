package services

import (
	"context"

	"menu-app/models"
	"menu-app/types"

	"golang.org/x/exp/slices"
)

// OrderAllocator hands out sibling order indexes. Nothing here is atomic:
// concurrent inserts into one group can observe the same maximum, and a
// failing reorder leaves the earlier updates applied.
type OrderAllocator struct {
	repo Repository
}

func NewOrderAllocator(repo Repository) *OrderAllocator {
	return &OrderAllocator{repo: repo}
}

// NextOrder returns 0 for an empty (menuID, parentID) group, otherwise the
// highest order in the group plus one.
func (a *OrderAllocator) NextOrder(ctx context.Context, menuID types.SnowflakeID, parentID *types.SnowflakeID) (int, error) {
	siblings, err := a.repo.FindMenuItemsByParent(ctx, menuID, parentID)
	if err != nil {
		return 0, Unavailable(err, "failed to load sibling menu items")
	}
	if len(siblings) == 0 {
		return 0, nil
	}
	return siblings[0].Order + 1, nil
}

// Reorder assigns order = position to every id in itemIDs. All ids must belong
// to menuID and share one parent.
func (a *OrderAllocator) Reorder(ctx context.Context, menuID types.SnowflakeID, itemIDs []types.SnowflakeID) ([]models.MenuItem, error) {
	if len(itemIDs) == 0 {
		return nil, InvalidArgument("itemIds must not be empty")
	}
	unique := slices.Clone(itemIDs)
	slices.Sort(unique)
	if len(slices.Compact(unique)) != len(itemIDs) {
		return nil, InvalidArgument("itemIds must not contain duplicates")
	}

	found, err := a.repo.FindMenuItemsByIDs(ctx, menuID, itemIDs)
	if err != nil {
		return nil, Unavailable(err, "failed to load menu items")
	}
	if len(found) != len(itemIDs) {
		return nil, InvalidArgument("some menu items not found or belong to different menu")
	}

	byID := make(map[types.SnowflakeID]models.MenuItem, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	parentID := byID[itemIDs[0]].ParentID
	for _, id := range itemIDs[1:] {
		if !types.SameID(byID[id].ParentID, parentID) {
			return nil, InvalidArgument("menu items to reorder must share the same parent")
		}
	}

	out := make([]models.MenuItem, 0, len(itemIDs))
	for index, id := range itemIDs {
		if err := a.repo.UpdateMenuItemOrder(ctx, id, index); err != nil {
			return nil, Unavailable(err, "failed to update order of menu item "+id.String())
		}
		it := byID[id]
		it.Order = index
		out = append(out, it)
	}
	return out, nil
}
