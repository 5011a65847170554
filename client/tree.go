package client

import (
	"sort"

	"menu-app/hierarchy"
	"menu-app/models"
	"menu-app/types"
)

// The patchers below update a fetched forest after a single mutation so the
// caller does not need a refetch. They never modify their input: slices are
// copied along the path that changes and untouched branches are shared.

// InsertItem appends item as the last root when parentID is nil, or as the last
// child of the node with that id at any depth. An unknown parent leaves the
// forest unchanged.
func InsertItem(forest []models.MenuItem, item models.MenuItem, parentID *types.SnowflakeID) []models.MenuItem {
	item = asNode(item)
	if parentID == nil {
		out := make([]models.MenuItem, len(forest), len(forest)+1)
		copy(out, forest)
		return append(out, item)
	}
	if out, ok := insertUnder(forest, item, *parentID); ok {
		return out
	}
	return forest
}

func insertUnder(nodes []models.MenuItem, item models.MenuItem, parentID types.SnowflakeID) ([]models.MenuItem, bool) {
	for i := range nodes {
		if nodes[i].ID == parentID {
			out := cloneNodes(nodes)
			children := make([]models.MenuItem, len(nodes[i].Children), len(nodes[i].Children)+1)
			copy(children, nodes[i].Children)
			out[i].Children = append(children, item)
			return out, true
		}
		if children, ok := insertUnder(nodes[i].Children, item, parentID); ok {
			out := cloneNodes(nodes)
			out[i].Children = children
			return out, true
		}
	}
	return nodes, false
}

// RemoveItem drops the node with the given id, and its subtree, from every
// level of the forest.
func RemoveItem(forest []models.MenuItem, id types.SnowflakeID) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(forest))
	for _, n := range forest {
		if n.ID == id {
			continue
		}
		n.Children = RemoveItem(n.Children, id)
		out = append(out, n)
	}
	return out
}

// ReplaceItem swaps in the scalar fields of updated and keeps the children the
// node already has. Use ReplaceSubtree to substitute children as well.
func ReplaceItem(forest []models.MenuItem, updated models.MenuItem) []models.MenuItem {
	out, _ := replace(forest, updated.ID, func(old models.MenuItem) models.MenuItem {
		n := asNode(updated)
		n.Children = old.Children
		if n.Children == nil {
			n.Children = []models.MenuItem{}
		}
		return n
	})
	return out
}

// ReplaceSubtree substitutes the node with updated, children included.
func ReplaceSubtree(forest []models.MenuItem, updated models.MenuItem) []models.MenuItem {
	out, _ := replace(forest, updated.ID, func(models.MenuItem) models.MenuItem {
		return asNode(updated)
	})
	return out
}

func replace(nodes []models.MenuItem, id types.SnowflakeID, fn func(models.MenuItem) models.MenuItem) ([]models.MenuItem, bool) {
	for i := range nodes {
		if nodes[i].ID == id {
			out := cloneNodes(nodes)
			out[i] = fn(nodes[i])
			return out, true
		}
		if children, ok := replace(nodes[i].Children, id, fn); ok {
			out := cloneNodes(nodes)
			out[i].Children = children
			return out, true
		}
	}
	return nodes, false
}

// MoveItem applies an update that may carry a new parentId or order. When the
// parent is unchanged it behaves like ReplaceItem; otherwise the node and its
// subtree are detached and appended under the new parent. Either way the
// node's sibling list is then re-sorted by order. A move below the node's own
// subtree is ignored, as is an update for a node the forest does not hold.
func MoveItem(forest []models.MenuItem, updated models.MenuItem) []models.MenuItem {
	current := hierarchy.Find(forest, updated.ID)
	if current == nil {
		return forest
	}
	position := map[types.SnowflakeID]int{updated.ID: updated.Order}
	if types.SameID(current.ParentID, updated.ParentID) {
		return reorder(ReplaceItem(forest, updated), position)
	}
	if updated.ParentID != nil && (*updated.ParentID == updated.ID || hierarchy.Find(current.Children, *updated.ParentID) != nil) {
		return forest
	}

	moved := asNode(updated)
	moved.Children = current.Children
	if moved.Children == nil {
		moved.Children = []models.MenuItem{}
	}
	return reorder(InsertItem(RemoveItem(forest, updated.ID), moved, updated.ParentID), position)
}

// ApplyOrder writes the order values of items into the forest and re-sorts the
// sibling lists they belong to by order, ties by id, the way the server sorts
// rows before building the tree.
func ApplyOrder(forest []models.MenuItem, items []models.MenuItem) []models.MenuItem {
	orders := make(map[types.SnowflakeID]int, len(items))
	for _, it := range items {
		orders[it.ID] = it.Order
	}
	return reorder(forest, orders)
}

func reorder(nodes []models.MenuItem, orders map[types.SnowflakeID]int) []models.MenuItem {
	out := cloneNodes(nodes)
	touched := false
	for i := range out {
		if order, ok := orders[out[i].ID]; ok {
			out[i].Order = order
			touched = true
		}
		if len(out[i].Children) > 0 {
			out[i].Children = reorder(out[i].Children, orders)
		}
	}
	if touched {
		sort.SliceStable(out, func(a, b int) bool {
			if out[a].Order == out[b].Order {
				return out[a].ID < out[b].ID
			}
			return out[a].Order < out[b].Order
		})
	}
	return out
}

// asNode normalizes an API payload into a tree node: no parent back reference
// and a non-nil children slice.
func asNode(it models.MenuItem) models.MenuItem {
	it.Parent = nil
	if it.Children == nil {
		it.Children = []models.MenuItem{}
	}
	return it
}

func cloneNodes(nodes []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(nodes))
	copy(out, nodes)
	return out
}
