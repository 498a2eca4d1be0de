package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	types "github.com/turtacn/ChemCheck/pkg/types/chem"
)

// PrintResult writes data as indented JSON or through the text renderer.
func PrintResult(cmd *cobra.Command, data interface{}, text func(w io.Writer)) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || cliCtx.OutputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), data)
	}
	text(cmd.OutOrStdout())
	return nil
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func yesNo(ok bool) string {
	if ok {
		return color.GreenString("yes")
	}
	return color.RedString("no")
}

func verdictLabel(accepted bool) string {
	if accepted {
		return color.New(color.FgGreen, color.Bold).Sprint("ACCEPTED")
	}
	return color.New(color.FgRed, color.Bold).Sprint("REJECTED")
}

func writeStatement(w io.Writer, v *types.StatementView) {
	fmt.Fprintf(w, "kind:       %s\n", v.Kind)
	fmt.Fprintf(w, "normalized: %s\n", v.Normalized)
	if v.Rendered != v.Normalized {
		fmt.Fprintf(w, "rendered:   %s\n", v.Rendered)
	}
	if v.Arrow != "" {
		fmt.Fprintf(w, "arrow:      %s\n", v.Arrow)
	}

	if v.Expression != nil {
		writeSide(w, "expression", v.Expression)
	}
	if v.Left != nil {
		writeSide(w, "left", v.Left)
	}
	if v.Right != nil {
		writeSide(w, "right", v.Right)
	}

	if b := v.Balance; b != nil {
		fmt.Fprintf(w, "balanced:   %s\n", yesNo(b.Balanced))
		for _, flag := range []struct {
			name string
			val  *bool
		}{
			{"atoms", b.Atoms},
			{"charge", b.Charge},
			{"mass number", b.MassNumber},
			{"atomic number", b.AtomicNumber},
			{"valid Z", b.ValidAtomicNumbers},
		} {
			if flag.val != nil {
				fmt.Fprintf(w, "  %-14s %s\n", flag.name+":", yesNo(*flag.val))
			}
		}
	}

	for _, issue := range v.Issues {
		where := ""
		if issue.Side != "" {
			where = issue.Side + " "
		}
		fmt.Fprintf(w, "%s %sterm %d at offset %d: %q %s\n",
			color.YellowString("issue:"), where, issue.Index+1, issue.Offset, issue.Text, issue.Message)
	}
}

func writeSide(w io.Writer, name string, s *types.SideView) {
	fmt.Fprintf(w, "%s: %s\n", name, s.Text)
	headers := []string{"TERM", "COEF", "SPECIES", "STATE", "CHARGE", "ATOMS"}
	rows := make([][]string, 0, len(s.Terms))
	for _, t := range s.Terms {
		if t.Error {
			rows = append(rows, []string{t.Text, "", color.RedString("error"), "", "", ""})
			continue
		}
		rows = append(rows, []string{
			t.Text, strconv.Itoa(t.Coefficient), t.Species, t.State, t.Charge, formatAtoms(t.Atoms),
		})
	}
	fmt.Fprint(w, indent(FormatTable(headers, rows), "  "))

	fmt.Fprintf(w, "  total charge %s, atoms %s", s.Charge, formatAtoms(s.Atoms))
	if s.MassNumber != nil && s.AtomicNumber != nil {
		fmt.Fprintf(w, ", A=%d Z=%d", *s.MassNumber, *s.AtomicNumber)
	}
	fmt.Fprintln(w)
}

func formatAtoms(atoms map[string]string) string {
	if len(atoms) == 0 {
		return "-"
	}
	symbols := make([]string, 0, len(atoms))
	for sym := range atoms {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	parts := make([]string, len(symbols))
	for i, sym := range symbols {
		parts[i] = sym + ":" + atoms[sym]
	}
	return strings.Join(parts, " ")
}

func writeVerdict(w io.Writer, r *types.CheckResultView) {
	fmt.Fprintf(w, "%s  %s\n", verdictLabel(r.Accepted), r.Message)
	fmt.Fprintf(w, "reason: %s\n", r.Reason)
	if len(r.WrongTerms) > 0 {
		fmt.Fprintf(w, "wrong terms: %s\n", color.RedString(strings.Join(r.WrongTerms, ", ")))
	}
}

func writeBalance(w io.Writer, b *types.BalanceView) {
	if b.WasBalanced {
		fmt.Fprintf(w, "%s (already balanced)\n", b.Balanced)
		return
	}
	fmt.Fprintln(w, color.GreenString(b.Balanced))
}

func writeBatch(w io.Writer, b *types.BatchView) {
	headers := []string{"#", "VERDICT", "REASON", "TEST"}
	rows := make([][]string, 0, len(b.Items))
	for _, item := range b.Items {
		row := []string{strconv.Itoa(item.Index + 1)}
		switch {
		case item.Error != nil:
			row = append(row, color.YellowString("ERROR"), item.Error.Message, "")
		case item.Result != nil:
			row = append(row, verdictLabel(item.Result.Accepted), item.Result.Reason, item.Result.Test)
		}
		rows = append(rows, row)
	}
	fmt.Fprint(w, FormatTable(headers, rows))
	fmt.Fprintf(w, "\n%d total, %d accepted, %d rejected, %d failed\n", b.Total, b.Accepted, b.Rejected, b.Failed)
	if b.ReportKey != "" {
		fmt.Fprintf(w, "report: %s\n", b.ReportKey)
	}
}

// FormatTable renders rows under headers. Short rows are padded with
// empty cells.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.Header(headers)
	for _, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		_ = table.Append(cells)
	}
	_ = table.Render()
	return buf.String()
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l != "" {
			sb.WriteString(prefix)
			sb.WriteString(l)
		}
	}
	return sb.String()
}
