// Package hierarchy turns the flat, parent-referencing MenuItem rows into
// ordered forests. Nothing here touches storage.
package hierarchy

import (
	"menu-app/models"
	"menu-app/types"
)

// Build links items into a forest. Items keep their input order inside every
// sibling list, so callers that want display order pass rows sorted by order.
//
// An item whose parent is missing from the set becomes a root. When maxDepth is
// positive, nodes on level maxDepth (roots are level 1) are returned with an
// empty children slice. Rows caught in a stored parent cycle never hang off a
// root and are left out.
func Build(items []models.MenuItem, maxDepth int) []models.MenuItem {
	index := make(map[types.SnowflakeID]int, len(items))
	for i, it := range items {
		if _, dup := index[it.ID]; dup {
			continue
		}
		index[it.ID] = i
	}

	children := make(map[types.SnowflakeID][]int, len(items))
	roots := make([]int, 0)
	for i, it := range items {
		if index[it.ID] != i {
			continue
		}
		if it.ParentID != nil {
			if _, ok := index[*it.ParentID]; ok {
				children[*it.ParentID] = append(children[*it.ParentID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	forest := make([]models.MenuItem, 0, len(roots))
	for _, i := range roots {
		forest = append(forest, materialize(items, children, i, 1, maxDepth))
	}
	return forest
}

func materialize(items []models.MenuItem, children map[types.SnowflakeID][]int, i, level, maxDepth int) models.MenuItem {
	node := items[i]
	node.Parent = nil
	node.Children = []models.MenuItem{}
	if maxDepth > 0 && level >= maxDepth {
		return node
	}
	for _, c := range children[node.ID] {
		node.Children = append(node.Children, materialize(items, children, c, level+1, maxDepth))
	}
	return node
}

// Flatten walks the forest in pre-order and returns every node with its
// children stripped.
func Flatten(forest []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(forest))
	var walk func(nodes []models.MenuItem)
	walk = func(nodes []models.MenuItem) {
		for _, n := range nodes {
			kids := n.Children
			n.Children = nil
			out = append(out, n)
			walk(kids)
		}
	}
	walk(forest)
	return out
}

// Find returns the node with the given id at any depth, or nil.
func Find(forest []models.MenuItem, id types.SnowflakeID) *models.MenuItem {
	for i := range forest {
		if forest[i].ID == id {
			return &forest[i]
		}
		if found := Find(forest[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Depth returns the number of levels in the forest.
func Depth(forest []models.MenuItem) int {
	max := 0
	for _, n := range forest {
		if d := 1 + Depth(n.Children); d > max {
			max = d
		}
	}
	return max
}
