package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemCheck/pkg/errors"
	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

// ErrRejected is returned by check when the answer was graded and rejected.
// The verdict itself has already been printed.
var ErrRejected = errors.New(errors.ErrCodeValidation, "answer rejected")

func NewParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <formula|->",
		Short: "Parse a formula or equation and report its composition and balance",
		Example: `  chemcheck parse "Fe^{3+} + e^{-} -> Fe^{2+}"
  echo "^{238}_{92}U -> ^{234}_{90}Th + \alphaparticle" | chemcheck parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			view, err := cliCtx.Service.Parse(ctx, text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, view, func(w io.Writer) { writeStatement(w, view) })
		},
	}
}

func NewCheckCmd() *cobra.Command {
	var target, test string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Grade an answer against the expected formula or equation",
		Long: "check compares --test against --target and prints the verdict. The exit\n" +
			"status is 0 when the answer is accepted and 1 when it is rejected.",
		Example: `  chemcheck check --target "2H2 + O2 -> 2H2O" --test "O2 + 2H2 -> 2H2O"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			result, err := cliCtx.Service.Check(ctx, &types.CheckRequest{Target: target, Test: test})
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, result, func(w io.Writer) { writeVerdict(w, result) }); err != nil {
				return err
			}
			if !result.Accepted {
				return ErrRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "expected formula or equation (required)")
	cmd.Flags().StringVar(&test, "test", "", "submitted answer (required)")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func NewBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "balance <equation|->",
		Short:   "Find the smallest integer coefficients that balance an equation",
		Example: `  chemcheck balance "Al + O2 -> Al2O3"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			view, err := cliCtx.Service.Balance(ctx, text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, view, func(w io.Writer) { writeBalance(w, view) })
		},
	}
}

func NewBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file.json|->",
		Short: "Grade many answers from a JSON file",
		Long: "batch reads either a JSON array of {\"target\",\"test\"} objects or an\n" +
			"object with an \"items\" array, grades every item and prints a summary.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			req, err := readBatch(cmd, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			view, err := cliCtx.Service.CheckBatch(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, view, func(w io.Writer) { writeBatch(w, view) })
		},
	}
}

func readBatch(cmd *cobra.Command, path string) (*types.BatchCheckRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read batch input")
	}

	var items []types.CheckRequest
	if err := json.Unmarshal(data, &items); err == nil {
		return &types.BatchCheckRequest{Items: items}, nil
	}
	var req types.BatchCheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "batch input is not valid JSON")
	}
	return &req, nil
}
