package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/config"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext is attached to the command context by the root pre-run hook.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      checker.Service
	OutputFormat string
	Timeout      time.Duration
}

type cliContextKey struct{}

// NewRootCommand builds the chemcheck command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemcheck",
		Short: "Parse, balance and compare mhchem formulas and equations",
		Long: "chemcheck reads chemistry written in mhchem notation, reports whether\n" +
			"equations conserve atoms, charge, mass number and atomic number, balances\n" +
			"them, and grades an answer against an expected statement.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")

	cmd.AddCommand(
		NewParseCmd(),
		NewCheckCmd(),
		NewBalanceCmd(),
		NewBatchCmd(),
		NewMigrateCmd(),
		NewCacheCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json":
	default:
		return errors.InvalidParam("unsupported output format").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), opts.LogLevel, "console")

	svc := checker.NewService(checker.Config{
		MaxInputLength:   cfg.Checker.MaxInputLength,
		MaxBatchSize:     cfg.Checker.MaxBatchSize,
		BatchConcurrency: cfg.Checker.BatchConcurrency,
		Source:           "chemcheck-cli",
	}, logger)

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, cliContextKey{}, cliCtx))
	return nil
}

func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLI context not initialized")
	}
	return cliCtx, nil
}

// withTimeout derives the per-command deadline from --timeout.
func (c *CLIContext) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// Execute runs the root command and returns the process exit code.
// Rejected answers exit with 1, other failures with 2.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ErrRejected) {
			return 1
		}
		PrintError(root, err)
		return 2
	}
	return 0
}

func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// readInput returns arg, or stdin when arg is "-".
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidParam, "failed to read stdin")
	}
	return strings.TrimSpace(string(data)), nil
}
