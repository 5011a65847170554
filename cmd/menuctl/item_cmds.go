package main

import (
	"fmt"

	"menu-app/client"
	"menu-app/types"

	"github.com/spf13/cobra"
)

type addOptions struct {
	Parent      string
	URL         string
	Icon        string
	Description string
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var add addOptions

	cmd := &cobra.Command{
		Use:   "add <menu-id> <title>",
		Short: "Append an item to a menu",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			menuID, err := parseID("menu id", args[0])
			if err != nil {
				return err
			}
			req := client.CreateMenuItemRequest{
				Title:       args[1],
				Description: add.Description,
				URL:         add.URL,
				Icon:        add.Icon,
				MenuID:      menuID,
			}
			if add.Parent != "" {
				parentID, err := parseID("--parent", add.Parent)
				if err != nil {
					return err
				}
				req.ParentID = &parentID
			}

			item, err := opts.client().CreateMenuItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q at order %d\n", item.ID, item.Title, item.Order)
			return nil
		},
	}
	cmd.Flags().StringVar(&add.Parent, "parent", "", "parent item id, top level when empty")
	cmd.Flags().StringVar(&add.URL, "url", "", "item link")
	cmd.Flags().StringVar(&add.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&add.Description, "description", "", "item description")
	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Delete an item without children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item id", args[0])
			if err != nil {
				return err
			}
			if err := opts.client().DeleteMenuItem(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newReorderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <menu-id> <item-id>...",
		Short: "Give sibling items the orders 0..n-1 in the listed sequence",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			menuID, err := parseID("menu id", args[0])
			if err != nil {
				return err
			}
			ids := make([]types.SnowflakeID, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseID("item id", arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			items, err := opts.client().ReorderMenuItems(cmd.Context(), menuID, ids)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\n", it.Order, it.ID, it.Title)
			}
			return nil
		},
	}
}
