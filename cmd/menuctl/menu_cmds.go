package main

import (
	"fmt"
	"io"
	"time"

	"menu-app/client"
	"menu-app/config"
	"menu-app/models"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database=%s cache=%s\n", status["database"], status["cache"])
			return nil
		},
	}
}

func newMenusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menus",
		Short: "List menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menus, err := opts.client().ListMenus(cmd.Context())
			if err != nil {
				return err
			}
			printMenus(cmd.OutOrStdout(), menus)
			return nil
		},
	}
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree <menu-id>",
		Short: "Print the item tree of a menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("menu id", args[0])
			if err != nil {
				return err
			}
			if depth < 0 {
				return fmt.Errorf("--depth must not be negative")
			}
			menu, err := opts.client().GetMenuHierarchy(cmd.Context(), id, depth)
			if err != nil {
				return err
			}
			printMenu(cmd.OutOrStdout(), menu)
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "levels to print, 0 for the whole tree")
	return cmd
}

// watch keeps a client store in sync with the server and prints the tree
// whenever it changes.
func newWatchCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <menu-id>",
		Short: "Poll a menu and print its tree on every change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("menu id", args[0])
			if err != nil {
				return err
			}
			log := config.NewLogger(opts.LogLevel)
			store := client.NewStore(opts.client(), log)
			out := cmd.OutOrStdout()

			var last string
			unsubscribe := store.Subscribe(func(st client.State) {
				if st.Loading || st.CurrentMenu == nil {
					return
				}
				rendered := renderMenu(st.CurrentMenu)
				if rendered == last {
					return
				}
				last = rendered
				fmt.Fprint(out, rendered)
			})
			defer unsubscribe()

			if _, err := store.FetchMenu(cmd.Context(), id); err != nil {
				return err
			}
			poller := client.NewPoller(store, interval, log)
			poller.Enable()
			poller.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultPollInterval, "poll interval")
	return cmd
}

func printMenus(w io.Writer, menus []models.Menu) {
	for _, m := range menus {
		fmt.Fprintf(w, "%s\t%s\t%d top-level items\n", m.ID, m.Name, len(m.Items))
	}
}
