package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"menu-app/config"
	"menu-app/migration"
	"menu-app/server"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	EnvFiles []string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "menu-app",
		Short:         "Hierarchical menu management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "env files to load before the process environment (default .env)")

	cmd.AddCommand(newServeCmd(&opts))
	cmd.AddCommand(newMigrateCmd(&opts))
	cmd.AddCommand(newSeedCmd(&opts))
	return cmd
}

func load(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(opts.EnvFiles...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg.LogLevel), nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load(opts)
			if err != nil {
				return err
			}
			srv, err := server.New(cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close()

			if err := srv.Seed(cmd.Context()); err != nil {
				return errors.Wrap(err, "seed default menu")
			}
			return srv.Listen(cmd.Context())
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and migrate the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load(opts)
			if err != nil {
				return err
			}
			db, err := server.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "get sql.DB")
			}
			defer sqlDB.Close()

			if err := migration.Migrate(db); err != nil {
				return errors.Wrap(err, "auto migrate")
			}
			log.WithField("database", cfg.DB.Name).Info("schema migrated")
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default menu on an empty store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load(opts)
			if err != nil {
				return err
			}
			cfg.SeedDefault = true
			srv, err := server.New(cfg, log)
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Seed(cmd.Context())
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
