package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menu-app/client"
	"menu-app/config"

	"github.com/spf13/cobra"
)

const apiEnvVar = "MENU_API_URL"

type rootOptions struct {
	APIURL   string
	Timeout  time.Duration
	LogLevel string
}

func (o *rootOptions) client() *client.Client {
	log := config.NewLogger(o.LogLevel)
	log.SetOutput(os.Stderr)
	return client.New(o.APIURL, client.WithTimeout(o.Timeout), client.WithLogger(log))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "menuctl",
		Short:         "Inspect and edit menus through the menu API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv(apiEnvVar)
	if defaultURL == "" {
		defaultURL = "http://localhost:9000/api/v1"
	}
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", defaultURL, "menu API base URL (env "+apiEnvVar+")")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level for client diagnostics")

	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newMenusCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newRmCmd(opts))
	cmd.AddCommand(newReorderCmd(opts))
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for lookups of missing menus or items and 1 otherwise.
func exitCode(err error) int {
	if client.IsNotFound(err) {
		return 2
	}
	return 1
}
