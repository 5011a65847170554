package client

import (
	"sort"
	"strings"
	"testing"

	"menu-app/hierarchy"
	"menu-app/models"
	"menu-app/types"

	"github.com/stretchr/testify/require"
)

func node(id int64, parent int64, order int, title string) models.MenuItem {
	it := models.MenuItem{ID: types.SnowflakeID(id), Title: title, Order: order, MenuID: 1, IsActive: true}
	if parent != 0 {
		it.ParentID = types.SnowflakeID(parent).Ptr()
	}
	return it
}

// render prints a forest as "Title[child,child]" so shapes compare as strings.
func render(forest []models.MenuItem) string {
	parts := make([]string, 0, len(forest))
	for _, n := range forest {
		s := n.Title
		if len(n.Children) > 0 {
			s += "[" + render(n.Children) + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

func build(flat []models.MenuItem) []models.MenuItem {
	sorted := append([]models.MenuItem(nil), flat...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order == sorted[j].Order {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Order < sorted[j].Order
	})
	return hierarchy.Build(sorted, 0)
}

func sampleFlat() []models.MenuItem {
	return []models.MenuItem{
		node(1, 0, 0, "Root"),
		node(2, 0, 1, "Home"),
		node(3, 2, 0, "About"),
		node(4, 3, 0, "Team"),
		node(5, 0, 2, "Blog"),
	}
}

func TestInsertItem(t *testing.T) {
	forest := build(sampleFlat())

	root := InsertItem(forest, node(6, 0, 3, "Shop"), nil)
	require.Equal(t, "Root,Home[About[Team]],Blog,Shop", render(root))

	deep := InsertItem(forest, node(7, 4, 0, "Alice"), types.SnowflakeID(4).Ptr())
	require.Equal(t, "Root,Home[About[Team[Alice]]],Blog", render(deep))
	require.NotNil(t, hierarchy.Find(deep, 7).Children)

	unknown := InsertItem(forest, node(8, 99, 0, "Lost"), types.SnowflakeID(99).Ptr())
	require.Equal(t, render(forest), render(unknown))

	// The input forest is left as it was.
	require.Equal(t, "Root,Home[About[Team]],Blog", render(forest))
}

func TestInsertItem_SharesUntouchedBranches(t *testing.T) {
	forest := build(sampleFlat())

	out := InsertItem(forest, node(6, 5, 0, "Post"), types.SnowflakeID(5).Ptr())

	require.Equal(t, "Root,Home[About[Team]],Blog[Post]", render(out))
	require.Same(t, &forest[1].Children[0], &out[1].Children[0])
}

func TestRemoveItem_AnyDepth(t *testing.T) {
	forest := build(sampleFlat())

	require.Equal(t, "Root,Home[About],Blog", render(RemoveItem(forest, 4)))
	require.Equal(t, "Root,Home,Blog", render(RemoveItem(forest, 3)))
	require.Equal(t, "Root,Home[About[Team]]", render(RemoveItem(forest, 5)))
	require.Equal(t, render(forest), render(RemoveItem(forest, 42)))
}

func TestReplaceItem_KeepsChildren(t *testing.T) {
	forest := build(sampleFlat())
	updated := node(3, 2, 0, "About us")
	updated.Children = []models.MenuItem{}

	out := ReplaceItem(forest, updated)

	require.Equal(t, "Root,Home[About us[Team]],Blog", render(out))
	require.Equal(t, "Root,Home[About[Team]],Blog", render(forest))
}

func TestReplaceSubtree_SubstitutesChildren(t *testing.T) {
	forest := build(sampleFlat())
	updated := node(3, 2, 0, "About")

	out := ReplaceSubtree(forest, updated)

	require.Equal(t, "Root,Home[About],Blog", render(out))
}

func TestMoveItem(t *testing.T) {
	forest := build(sampleFlat())

	moved := MoveItem(forest, node(3, 5, 0, "About"))
	require.Equal(t, "Root,Home,Blog[About[Team]]", render(moved))

	top := MoveItem(forest, node(4, 0, 3, "Team"))
	require.Equal(t, "Root,Home[About],Blog,Team", render(top))

	same := MoveItem(forest, node(2, 0, 1, "Start"))
	require.Equal(t, "Root,Start[About[Team]],Blog", render(same))

	cycle := MoveItem(forest, node(2, 4, 0, "Home"))
	require.Equal(t, render(forest), render(cycle))
}

func TestMoveItem_HonorsOrder(t *testing.T) {
	forest := build(sampleFlat())

	last := MoveItem(forest, node(1, 0, 5, "Root"))
	require.Equal(t, "Home[About[Team]],Blog,Root", render(last))

	first := MoveItem(forest, node(4, 0, 0, "Team"))
	require.Equal(t, "Root,Team,Home[About],Blog", render(first))
}

func TestApplyOrder(t *testing.T) {
	forest := build(sampleFlat())

	out := ApplyOrder(forest, []models.MenuItem{node(5, 0, 0, "Blog"), node(1, 0, 1, "Root"), node(2, 0, 2, "Home")})

	require.Equal(t, "Blog,Root,Home[About[Team]]", render(out))
	require.Equal(t, 0, out[0].Order)
}

// Patching a fetched forest must give the same shape as rebuilding it from the
// equally mutated rows.
func TestPatchesMatchRebuild(t *testing.T) {
	flat := sampleFlat()
	forest := build(flat)

	added := node(6, 3, 1, "Careers")
	forest = InsertItem(forest, added, added.ParentID)
	flat = append(flat, added)

	forest = RemoveItem(forest, 5)
	flat = withoutID(flat, 5)

	renamed := node(2, 0, 1, "Start")
	forest = ReplaceItem(forest, renamed)
	flat = withID(flat, renamed)

	resorted := node(1, 0, 5, "Root")
	forest = MoveItem(forest, resorted)
	flat = withID(flat, resorted)

	moved := node(4, 0, 1, "Team")
	forest = MoveItem(forest, moved)
	flat = withID(flat, moved)

	require.Equal(t, render(build(flat)), render(forest))
	require.ElementsMatch(t, ids(hierarchy.Flatten(build(flat))), ids(hierarchy.Flatten(forest)))
}

func withID(flat []models.MenuItem, updated models.MenuItem) []models.MenuItem {
	out := append([]models.MenuItem(nil), flat...)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

func withoutID(flat []models.MenuItem, id types.SnowflakeID) []models.MenuItem {
	out := flat[:0:0]
	for _, it := range flat {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func ids(items []models.MenuItem) []types.SnowflakeID {
	out := make([]types.SnowflakeID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
