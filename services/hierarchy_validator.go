package services

import (
	"context"

	"menu-app/models"
	"menu-app/types"
)

// HierarchyValidator guards parent assignments: the parent must exist, live in
// the same menu and must not be the item itself or one of its descendants.
type HierarchyValidator struct {
	repo Repository
}

func NewHierarchyValidator(repo Repository) *HierarchyValidator {
	return &HierarchyValidator{repo: repo}
}

// ValidateParent checks parentID as the new parent of an item in menuID and
// returns the parent row. itemID is nil for items that do not exist yet.
func (v *HierarchyValidator) ValidateParent(ctx context.Context, menuID, parentID types.SnowflakeID, itemID *types.SnowflakeID) (*models.MenuItem, error) {
	parent, err := v.repo.FindMenuItemByID(ctx, parentID)
	if err != nil {
		return nil, Unavailable(err, "failed to load parent menu item")
	}
	if parent == nil {
		return nil, NotFound("parent menu item with ID %s not found", parentID)
	}
	if parent.MenuID != menuID {
		return nil, InvalidArgument("parent menu item must belong to the same menu")
	}
	if itemID == nil {
		return parent, nil
	}
	if parent.ID == *itemID {
		return nil, InvalidArgument("menu item %s cannot be its own parent", *itemID)
	}

	// Walk up from the candidate parent; reaching the item means the move would
	// hang the item below its own subtree.
	visited := map[types.SnowflakeID]bool{parent.ID: true}
	cur := parent
	for cur.ParentID != nil {
		next := *cur.ParentID
		if next == *itemID {
			return nil, InvalidArgument("moving menu item %s under %s would create a cycle", *itemID, parentID)
		}
		if visited[next] {
			break
		}
		visited[next] = true

		ancestor, err := v.repo.FindMenuItemByID(ctx, next)
		if err != nil {
			return nil, Unavailable(err, "failed to load ancestor menu item")
		}
		if ancestor == nil {
			break
		}
		cur = ancestor
	}
	return parent, nil
}
