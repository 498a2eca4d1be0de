package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/domain/mhchem"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

type verdictStore interface {
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// openVerdictStore connects to the verdict cache. Swapped in tests.
var openVerdictStore = func(ctx context.Context, cfg redis.Config, log logging.Logger) (verdictStore, func(), error) {
	client, err := redis.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewRedisCache(client, log), func() { _ = client.Close() }, nil
}

type cacheResult struct {
	Removed int64  `json:"removed"`
	Key     string `json:"key,omitempty"`
}

func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached verdicts",
	}

	var target, test string
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Forget the cached verdict for one target and answer",
		Args:  cobra.NoArgs,
		RunE: withVerdictStore(func(ctx context.Context, cmd *cobra.Command, store verdictStore) error {
			if target == "" || test == "" {
				return errors.InvalidParam("--target and --test are required")
			}
			key, err := verdictKey(target, test)
			if err != nil {
				return err
			}
			if err := store.Delete(ctx, key); err != nil {
				return err
			}
			return printCacheResult(cmd, &cacheResult{Removed: 1, Key: key})
		}),
	}
	drop.Flags().StringVar(&target, "target", "", "expected statement")
	drop.Flags().StringVar(&test, "test", "", "answer to forget")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "purge",
			Short: "Remove every cached verdict",
			Args:  cobra.NoArgs,
			RunE: withVerdictStore(func(ctx context.Context, cmd *cobra.Command, store verdictStore) error {
				n, err := store.DeleteByPrefix(ctx, checker.VerdictKeyPrefix)
				if err != nil {
					return err
				}
				return printCacheResult(cmd, &cacheResult{Removed: n})
			}),
		},
		drop,
	)
	return cmd
}

// verdictKey parses both statements the way Check does, so the key matches
// the one the service cached.
func verdictKey(target, test string) (string, error) {
	t, err := mhchem.Parse(target)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeChemParseFailed, "target cannot be parsed")
	}
	a, err := mhchem.Parse(test)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeChemParseFailed, "answer cannot be parsed")
	}
	return checker.VerdictKey(t, a), nil
}

func withVerdictStore(run func(ctx context.Context, cmd *cobra.Command, store verdictStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cliCtx, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		if !cliCtx.Config.Redis.Enabled {
			return errors.InvalidParam("redis is not enabled")
		}
		ctx, cancel := cliCtx.withTimeout(cmd.Context())
		defer cancel()

		store, closeFn, err := openVerdictStore(ctx, cliCtx.Config.Redis, cliCtx.Logger)
		if err != nil {
			return err
		}
		defer closeFn()
		return run(ctx, cmd, store)
	}
}

func printCacheResult(cmd *cobra.Command, r *cacheResult) error {
	return PrintResult(cmd, r, func(w io.Writer) {
		if r.Key != "" {
			fmt.Fprintf(w, "dropped %s\n", r.Key)
			return
		}
		fmt.Fprintf(w, "removed %d cached verdicts\n", r.Removed)
	})
}
