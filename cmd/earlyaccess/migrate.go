package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
	"github.com/dropDatabas3/earlyaccess/internal/registration/store/pg"
	migrations "github.com/dropDatabas3/earlyaccess/migrations/postgres"
)

func newMigrateCmd(o *rootOpts) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:       "migrate up|down [steps]",
		Short:     "Aplica o revierte las migraciones de PostgreSQL",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := pg.Direction(args[0])
			if dir != pg.Up && dir != pg.Down {
				return fmt.Errorf("unknown action %q. Use: up | down [steps]", args[0])
			}
			steps := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 0 {
					return fmt.Errorf("invalid steps %q", args[1])
				}
				steps = n
			}

			if dryRun {
				files, err := pg.ListMigrations(migrations.FS, migrations.Dir, dir)
				if err != nil {
					return err
				}
				if steps > 0 && steps < len(files) {
					files = files[:steps]
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}

			cfg, err := o.load()
			if err != nil {
				return err
			}
			if cfg.Storage.DSN == "" {
				return fmt.Errorf("STORAGE_DSN is required for migrate")
			}
			ctx := logger.ToContext(cmd.Context(), logger.L())
			s, err := pg.Connect(ctx, pg.Config{DSN: cfg.Storage.DSN, MaxOpenConns: 2})
			if err != nil {
				return err
			}
			defer s.Close()

			applied, err := pg.Migrate(ctx, s.Pool(), migrations.FS, migrations.Dir, dir, steps)
			for _, f := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", f)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Sólo lista los archivos que se aplicarían")
	return cmd
}
