package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

type migrationRunner interface {
	Up() error
	Down(steps int) error
	Status() (postgres.MigrationStatus, error)
	Close() error
}

// openMigrator connects to the history database. Swapped in tests.
var openMigrator = func(ctx context.Context, cfg postgres.Config, log logging.Logger) (migrationRunner, func(), error) {
	conn, err := postgres.NewConnection(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	m, err := postgres.NewMigrator(ctx, conn.DB(), log)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return m, func() {
		_ = m.Close()
		_ = conn.Close()
	}, nil
}

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the submission history schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrationRunner) error {
			if steps <= 0 {
				return errors.InvalidParam("--steps must be positive")
			}
			if err := m.Down(steps); err != nil {
				return err
			}
			return printStatus(cmd, m)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m migrationRunner) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printStatus(cmd, m)
			}),
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(printStatus),
		},
	)
	return cmd
}

func withMigrator(run func(cmd *cobra.Command, m migrationRunner) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		dbCfg := cliCtx.Config.Database
		if dbCfg.Host == "" {
			return errors.InvalidParam("database.host is not configured")
		}
		ctx, cancel := cliCtx.withTimeout(cmd.Context())
		defer cancel()

		m, closeFn, err := openMigrator(ctx, dbCfg, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer closeFn()
		return run(cmd, m)
	}
}

func printStatus(cmd *cobra.Command, m migrationRunner) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	return PrintResult(cmd, status, func(w io.Writer) {
		dirty := ""
		if status.Dirty {
			dirty = " (dirty)"
		}
		fmt.Fprintf(w, "schema version %d%s\n", status.Version, dirty)
	})
}
