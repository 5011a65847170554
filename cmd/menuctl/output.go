package main

import (
	"fmt"
	"io"
	"strings"

	"menu-app/models"
	"menu-app/types"

	"github.com/pkg/errors"
)

func parseID(what, raw string) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", what, raw)
	}
	return id, nil
}

func printMenu(w io.Writer, menu *models.Menu) {
	fmt.Fprint(w, renderMenu(menu))
}

func renderMenu(menu *models.Menu) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", menu.Name, menu.ID)
	writeItems(&b, menu.Items, 1)
	return b.String()
}

func writeItems(b *strings.Builder, items []models.MenuItem, level int) {
	for _, it := range items {
		b.WriteString(strings.Repeat("  ", level))
		fmt.Fprintf(b, "- %s [%s]", it.Title, it.ID)
		if it.URL != "" {
			fmt.Fprintf(b, " %s", it.URL)
		}
		if !it.IsActive {
			b.WriteString(" (inactive)")
		}
		b.WriteByte('\n')
		writeItems(b, it.Children, level+1)
	}
}
